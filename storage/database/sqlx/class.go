package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core/class"
)

// JSONB column wrappers. Attendance, materials and homework live as jsonb
// documents; homework is nullable.

type attendanceJSON []class.AttendanceEntry

func (a attendanceJSON) Value() (driver.Value, error) {
	if a == nil {
		a = attendanceJSON{}
	}
	return json.Marshal(a)
}

func (a *attendanceJSON) Scan(src interface{}) error {
	return scanJSON(src, a)
}

type materialsJSON []class.Material

func (m materialsJSON) Value() (driver.Value, error) {
	if m == nil {
		m = materialsJSON{}
	}
	return json.Marshal(m)
}

func (m *materialsJSON) Scan(src interface{}) error {
	return scanJSON(src, m)
}

type homeworkJSON struct {
	Homework *class.Homework
}

func (h homeworkJSON) Value() (driver.Value, error) {
	if h.Homework == nil {
		return nil, nil
	}
	return json.Marshal(h.Homework)
}

func (h *homeworkJSON) Scan(src interface{}) error {
	if src == nil {
		h.Homework = nil
		return nil
	}
	return scanJSON(src, &h.Homework)
}

func scanJSON(src, dst interface{}) error {
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, dst)
	case string:
		return json.Unmarshal([]byte(data), dst)
	}
	return errors.Errorf("unsupported jsonb source type %T", src)
}

type classRow struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	BatchID       string         `db:"batch_id"`
	TeacherID     string         `db:"teacher_id"`
	Subject       string         `db:"subject"`
	ScheduledDate time.Time      `db:"scheduled_date"`
	StartTime     string         `db:"start_time"`
	EndTime       string         `db:"end_time"`
	Duration      int            `db:"duration"`
	Venue         string         `db:"venue"`
	MeetingLink   string         `db:"meeting_link"`
	Topics        pq.StringArray `db:"topics"`
	Status        string         `db:"status"`
	Attendance    attendanceJSON `db:"attendance"`
	Materials     materialsJSON  `db:"materials"`
	Homework      homeworkJSON   `db:"homework"`
	IsActive      bool           `db:"is_active"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r classRow) toClass() class.Class {
	return class.Class{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		BatchID:       r.BatchID,
		TeacherID:     r.TeacherID,
		Subject:       r.Subject,
		ScheduledDate: r.ScheduledDate,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Duration:      r.Duration,
		Venue:         r.Venue,
		MeetingLink:   r.MeetingLink,
		Topics:        r.Topics,
		Status:        class.Status(r.Status),
		Attendance:    r.Attendance,
		Materials:     r.Materials,
		Homework:      r.Homework.Homework,
		IsActive:      r.IsActive,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	c.ID = uuid.New().String()
	query := `
		INSERT INTO classes (
			id, title, description, batch_id, teacher_id, subject, scheduled_date,
			start_time, end_time, duration, venue, meeting_link, topics, status,
			attendance, materials, homework, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20
		)`
	_, err := repo.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Description, c.BatchID, c.TeacherID, c.Subject, c.ScheduledDate,
		c.StartTime, c.EndTime, c.Duration, c.Venue, c.MeetingLink, pq.Array(c.Topics), c.Status,
		attendanceJSON(c.Attendance), materialsJSON(c.Materials), homeworkJSON{c.Homework},
		c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return c, nil
}

func (repo classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	var row classRow
	query := `SELECT * FROM classes WHERE id = $1 AND is_active`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "finding class by id")
	}
	return row.toClass(), nil
}

func (repo classRepository) QueryClasses(ctx context.Context, filter class.QueryFilter) ([]class.Class, error) {
	where := " WHERE is_active"
	args := make([]interface{}, 0, 5)
	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		where += " AND batch_id = $" + itoa(len(args))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		where += " AND teacher_id = $" + itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += " AND status = $" + itoa(len(args))
	}
	if !filter.StartDate.IsZero() {
		args = append(args, filter.StartDate)
		where += " AND scheduled_date >= $" + itoa(len(args))
	}
	if !filter.EndDate.IsZero() {
		args = append(args, filter.EndDate)
		where += " AND scheduled_date <= $" + itoa(len(args))
	}

	var rows []classRow
	query := "SELECT * FROM classes" + where + " ORDER BY scheduled_date, start_time"
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return toClasses(rows), nil
}

func (repo classRepository) QueryUpcomingClasses(ctx context.Context, filter class.QueryFilter, limit int) ([]class.Class, error) {
	where := " WHERE is_active AND status IN ('scheduled', 'ongoing') AND scheduled_date >= $1"
	args := []interface{}{time.Now().UTC()}
	if filter.BatchID != "" {
		args = append(args, filter.BatchID)
		where += " AND batch_id = $" + itoa(len(args))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		where += " AND teacher_id = $" + itoa(len(args))
	}
	args = append(args, limit)

	var rows []classRow
	query := "SELECT * FROM classes" + where + " ORDER BY scheduled_date, start_time LIMIT $" + itoa(len(args))
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying upcoming classes")
	}
	return toClasses(rows), nil
}

func (repo classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	query := `
		UPDATE classes
		SET title = $2, description = $3, subject = $4, scheduled_date = $5,
			start_time = $6, end_time = $7, duration = $8, venue = $9,
			meeting_link = $10, topics = $11, status = $12, attendance = $13,
			materials = $14, homework = $15, updated_at = $16
		WHERE id = $1 AND is_active`
	res, err := repo.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Description, c.Subject, c.ScheduledDate,
		c.StartTime, c.EndTime, c.Duration, c.Venue,
		c.MeetingLink, pq.Array(c.Topics), c.Status, attendanceJSON(c.Attendance),
		materialsJSON(c.Materials), homeworkJSON{c.Homework}, c.UpdatedAt,
	)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return c, nil
}

func (repo classRepository) SetClassActive(ctx context.Context, id string, active bool) (class.Class, error) {
	query := `
		UPDATE classes
		SET is_active = $2, updated_at = $3
		WHERE id = $1
		RETURNING *`
	var row classRow
	if err := repo.db.GetContext(ctx, &row, query, id, active, time.Now().UTC()); err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "setting class active flag")
	}
	return row.toClass(), nil
}

func toClasses(rows []classRow) []class.Class {
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toClass())
	}
	return classes
}
