package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core/student"
)

type studentRow struct {
	ID             string         `db:"id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	PasswordHash   []byte         `db:"password_hash"`
	Phone          string         `db:"phone"`
	Address        string         `db:"address"`
	Grade          string         `db:"grade"`
	BatchIDs       pq.StringArray `db:"batch_ids"`
	EnrollmentDate time.Time      `db:"enrollment_date"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Phone:          r.Phone,
		Address:        r.Address,
		Grade:          r.Grade,
		BatchIDs:       r.BatchIDs,
		EnrollmentDate: r.EnrollmentDate,
		IsActive:       r.IsActive,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo studentRepository) CheckEmailUniqueness(ctx context.Context, email string) error {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE email = $1`, email); err != nil {
		return errors.Wrap(err, "checking student email uniqueness")
	}
	if count > 0 {
		return student.ErrEmailExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = uuid.New().String()
	query := `
		INSERT INTO students (
			id, name, email, password_hash, phone, address, grade, batch_ids,
			enrollment_date, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := repo.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Email, s.PasswordHash, s.Phone, s.Address, s.Grade,
		pq.Array(s.BatchIDs), s.EnrollmentDate, s.IsActive, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM students WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by id")
	}
	return row.toStudent(), nil
}

func (repo studentRepository) QueryStudentsByBatch(ctx context.Context, batchID string) ([]student.Student, error) {
	var rows []studentRow
	query := `SELECT * FROM students WHERE $1 = ANY(batch_ids) AND is_active ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, query, batchID); err != nil {
		return nil, errors.Wrap(err, "querying students by batch")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.toStudent())
	}
	return students, nil
}

func (repo studentRepository) UpdateStudentBatches(ctx context.Context, id string, batchIDs []string) (student.Student, error) {
	query := `
		UPDATE students
		SET batch_ids = $2, updated_at = $3
		WHERE id = $1
		RETURNING *`
	var row studentRow
	err := repo.db.GetContext(ctx, &row, query, id, pq.Array(batchIDs), time.Now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "updating student batches")
	}
	return row.toStudent(), nil
}
