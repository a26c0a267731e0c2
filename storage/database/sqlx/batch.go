package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core/batch"
)

type batchRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Subject   string    `db:"subject"`
	Grade     string    `db:"grade"`
	Timing    string    `db:"timing"`
	TeacherID string    `db:"teacher_id"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r batchRow) toBatch() batch.Batch {
	return batch.Batch{
		ID:        r.ID,
		Name:      r.Name,
		Subject:   r.Subject,
		Grade:     r.Grade,
		Timing:    r.Timing,
		TeacherID: r.TeacherID,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type batchRepository struct {
	db *sqlx.DB
}

var _ batch.Repository = (*batchRepository)(nil) // interface compliance check

func NewBatchRepository(db *sqlx.DB) *batchRepository {
	return &batchRepository{db: db}
}

func (repo batchRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return batch.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo batchRepository) CreateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	b.ID = uuid.New().String()
	query := `
		INSERT INTO batches (id, name, subject, grade, timing, teacher_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, query,
		b.ID, b.Name, b.Subject, b.Grade, b.Timing, b.TeacherID, b.IsActive, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return batch.Batch{}, errors.Wrap(err, "inserting batch")
	}
	return b, nil
}

func (repo batchRepository) GetBatchByID(ctx context.Context, id string) (batch.Batch, error) {
	var row batchRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM batches WHERE id = $1`, id); err != nil {
		return batch.Batch{}, repo.trapNoRowsErr(err, "finding batch by id")
	}
	return row.toBatch(), nil
}

func (repo batchRepository) QueryBatches(ctx context.Context, filter batch.QueryFilter) ([]batch.Batch, int, error) {
	where := " WHERE TRUE"
	args := make([]interface{}, 0, 4)
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		where += " AND teacher_id = $" + itoa(len(args))
	}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		where += " AND subject = $" + itoa(len(args))
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM batches"+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting batches")
	}

	args = append(args, filter.Limit)
	limitPos := itoa(len(args))
	args = append(args, filter.Offset())
	offsetPos := itoa(len(args))

	var rows []batchRow
	query := "SELECT * FROM batches" + where + " ORDER BY created_at DESC LIMIT $" + limitPos + " OFFSET $" + offsetPos
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "querying batches")
	}

	batches := make([]batch.Batch, 0, len(rows))
	for _, r := range rows {
		batches = append(batches, r.toBatch())
	}
	return batches, total, nil
}

func (repo batchRepository) BatchesExist(ctx context.Context, ids []string) (bool, error) {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	var count int
	query := `SELECT COUNT(*) FROM batches WHERE id = ANY($1)`
	if err := repo.db.GetContext(ctx, &count, query, pq.Array(unique)); err != nil {
		return false, errors.Wrap(err, "checking batches")
	}
	return count == len(unique), nil
}

func (repo batchRepository) UpdateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	query := `
		UPDATE batches
		SET name = $2, subject = $3, grade = $4, timing = $5, teacher_id = $6, is_active = $7, updated_at = $8
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		b.ID, b.Name, b.Subject, b.Grade, b.Timing, b.TeacherID, b.IsActive, b.UpdatedAt,
	)
	if err != nil {
		return batch.Batch{}, errors.Wrap(err, "updating batch")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return batch.Batch{}, batch.ErrNotFound
	}
	return b, nil
}

func (repo batchRepository) DeleteBatch(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM batches WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting batch")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return batch.ErrNotFound
	}
	return nil
}
