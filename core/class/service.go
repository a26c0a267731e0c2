package class

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/batch"
	"github.com/tutorbase/backend/core/user"
)

var (
	ErrNotFound        = errors.New("class not found")
	ErrTeacherNotFound = errors.New("teacher not found or invalid role")
	ErrEmptyRoster     = errors.New("attendance data is required")
	ErrEmptyMaterials  = errors.New("materials data is required")
)

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class) (Class, error)
		// GetClassByID only returns active (non soft-deleted) classes.
		GetClassByID(ctx context.Context, id string) (Class, error)
		// QueryClasses returns active classes matching the filter, ordered by
		// scheduled date then start time, ascending.
		QueryClasses(ctx context.Context, filter QueryFilter) ([]Class, error)
		// QueryUpcomingClasses returns active scheduled/ongoing classes from
		// now on, soonest first, at most limit.
		QueryUpcomingClasses(ctx context.Context, filter QueryFilter, limit int) ([]Class, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		// SetClassActive flips the soft-delete flag.
		SetClassActive(ctx context.Context, id string, active bool) (Class, error)
	}

	Service struct {
		repo    Repository
		batches batch.Repository
		users   user.Repository
	}
)

func NewService(repo Repository, batchRepo batch.Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, batches: batchRepo, users: usrRepo}
}

// Create schedules a session. The batch must exist and the teacher must be an
// existing identity holding the teacher role; both absences surface as
// not-found, matching the lookup they failed.
func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	if _, err := svc.batches.GetBatchByID(ctx, nc.BatchID); err != nil {
		return Class{}, err
	}
	usr, err := svc.users.GetUserByID(ctx, nc.TeacherID)
	if err != nil {
		if err == user.ErrNotFound {
			return Class{}, ErrTeacherNotFound
		}
		return Class{}, errors.Wrap(err, "finding teacher")
	}
	if !usr.IsTeacher() {
		return Class{}, ErrTeacherNotFound
	}

	now := time.Now().UTC()
	c := Class{
		Title:         nc.Title,
		Description:   nc.Description,
		BatchID:       nc.BatchID,
		TeacherID:     nc.TeacherID,
		Subject:       nc.Subject,
		ScheduledDate: nc.ScheduledDate,
		StartTime:     nc.StartTime,
		EndTime:       nc.EndTime,
		Duration:      nc.Duration,
		Venue:         nc.Venue,
		MeetingLink:   nc.MeetingLink,
		Topics:        nc.Topics,
		Status:        StatusScheduled,
		Attendance:    []AttendanceEntry{},
		Materials:     []Material{},
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return svc.repo.CreateClass(ctx, c)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *Service) ByBatch(ctx context.Context, batchID string, filter QueryFilter) ([]Class, error) {
	filter.BatchID = batchID
	return svc.repo.QueryClasses(ctx, filter)
}

func (svc *Service) ByTeacher(ctx context.Context, teacherID string, filter QueryFilter) ([]Class, error) {
	filter.TeacherID = teacherID
	return svc.repo.QueryClasses(ctx, filter)
}

func (svc *Service) Upcoming(ctx context.Context, filter QueryFilter, limit int) ([]Class, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return svc.repo.QueryUpcomingClasses(ctx, filter, limit)
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	orig, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Title != "" {
		orig.Title = uc.Title
	}
	if uc.Description != nil {
		orig.Description = *uc.Description
	}
	if uc.Subject != "" {
		orig.Subject = uc.Subject
	}
	if uc.ScheduledDate != nil {
		orig.ScheduledDate = *uc.ScheduledDate
	}
	if uc.StartTime != "" {
		orig.StartTime = uc.StartTime
	}
	if uc.EndTime != "" {
		orig.EndTime = uc.EndTime
	}
	if uc.Duration > 0 {
		orig.Duration = uc.Duration
	}
	if uc.Venue != nil {
		orig.Venue = *uc.Venue
	}
	if uc.MeetingLink != nil {
		orig.MeetingLink = *uc.MeetingLink
	}
	if uc.Topics != nil {
		orig.Topics = uc.Topics
	}
	if uc.Status != "" {
		orig.Status = uc.Status
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, orig)
}

// Delete soft-deletes the class.
func (svc *Service) Delete(ctx context.Context, id string) (Class, error) {
	return svc.repo.SetClassActive(ctx, id, false)
}

// MarkAttendance replaces the roster wholesale with the submitted set. The
// whole operation fails on the first invalid entry; no partial write occurs.
func (svc *Service) MarkAttendance(ctx context.Context, classID string, marks []AttendanceMark, markedBy string) (Class, error) {
	if len(marks) == 0 {
		return Class{}, core.NewValidationError(ErrEmptyRoster)
	}
	c, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Class{}, err
	}
	for _, m := range marks {
		if !m.Status.Valid() {
			return Class{}, core.NewValidationError(
				errors.Errorf("invalid attendance status: %s", m.Status),
				core.FieldError{Field: "status", Error: "invalid attendance status: " + string(m.Status)},
			)
		}
	}

	now := time.Now().UTC()
	roster := make([]AttendanceEntry, 0, len(marks))
	for _, m := range marks {
		roster = append(roster, AttendanceEntry{
			StudentID: m.StudentID,
			Status:    m.Status,
			MarkedBy:  markedBy,
			MarkedAt:  now,
			Notes:     m.Notes,
		})
	}
	c.Attendance = roster
	c.UpdatedAt = now
	return svc.repo.UpdateClass(ctx, c)
}

// AddMaterials appends to the class's materials list.
func (svc *Service) AddMaterials(ctx context.Context, classID string, materials []NewMaterial) (Class, error) {
	if len(materials) == 0 {
		return Class{}, core.NewValidationError(ErrEmptyMaterials)
	}
	c, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Class{}, err
	}
	for _, m := range materials {
		if !m.Type.Valid() {
			return Class{}, core.NewValidationError(
				errors.Errorf("invalid material type: %s", m.Type),
				core.FieldError{Field: "type", Error: "invalid material type: " + string(m.Type)},
			)
		}
	}

	now := time.Now().UTC()
	for _, m := range materials {
		c.Materials = append(c.Materials, Material{
			Title:      m.Title,
			Type:       m.Type,
			URL:        m.URL,
			UploadedAt: now,
		})
	}
	c.UpdatedAt = now
	return svc.repo.UpdateClass(ctx, c)
}

// SetHomework merges field-by-field: absent fields keep their current values.
func (svc *Service) SetHomework(ctx context.Context, classID string, uh UpdateHomework) (Class, error) {
	c, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Class{}, err
	}

	hw := Homework{}
	if c.Homework != nil {
		hw = *c.Homework
	}
	if uh.Description != "" {
		hw.Description = uh.Description
	}
	if uh.DueDate != nil {
		hw.DueDate = *uh.DueDate
	}
	if uh.Attachments != nil {
		hw.Attachments = uh.Attachments
	}
	c.Homework = &hw
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, c)
}

// GetStats aggregates attendance counts by status and materials by type.
// The attendance rate counts present and late marks, as a percentage of the
// roster, rounded to two decimals.
func (svc *Service) GetStats(ctx context.Context, classID string) (Stats, error) {
	c, err := svc.repo.GetClassByID(ctx, classID)
	if err != nil {
		return Stats{}, err
	}

	att := AttendanceStats{Total: len(c.Attendance)}
	for _, entry := range c.Attendance {
		switch entry.Status {
		case AttendancePresent:
			att.Present++
		case AttendanceAbsent:
			att.Absent++
		case AttendanceLate:
			att.Late++
		case AttendanceExcused:
			att.Excused++
		}
	}
	if att.Total > 0 {
		rate := float64(att.Present+att.Late) / float64(att.Total) * 100
		att.AttendanceRate = math.Round(rate*100) / 100
	}

	mat := MaterialStats{
		Total: len(c.Materials),
		ByType: map[MaterialType]int{
			MaterialDocument:   0,
			MaterialVideo:      0,
			MaterialLink:       0,
			MaterialAssignment: 0,
		},
	}
	for _, m := range c.Materials {
		mat.ByType[m.Type]++
	}

	stats := Stats{
		ClassInfo: ClassInfo{
			ID:            c.ID,
			Title:         c.Title,
			ScheduledDate: c.ScheduledDate,
			Status:        c.Status,
		},
		Attendance:  att,
		Materials:   mat,
		HasHomework: c.Homework != nil && c.Homework.Description != "",
	}
	if c.Homework != nil && !c.Homework.DueDate.IsZero() {
		due := c.Homework.DueDate
		stats.HomeworkDueDate = &due
	}
	return stats, nil
}
