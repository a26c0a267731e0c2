package batch

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/user"
)

var ErrNotFound = errors.New("batch not found")

type (
	Repository interface {
		CreateBatch(ctx context.Context, b Batch) (Batch, error)
		GetBatchByID(ctx context.Context, id string) (Batch, error)
		// QueryBatches returns a page of batches ordered by creation time,
		// newest first, along with the unpaginated total.
		QueryBatches(ctx context.Context, filter QueryFilter) ([]Batch, int, error)
		BatchesExist(ctx context.Context, ids []string) (bool, error)
		UpdateBatch(ctx context.Context, b Batch) (Batch, error)
		DeleteBatch(ctx context.Context, id string) error
	}

	Service struct {
		repo  Repository
		users user.Repository
	}
)

func NewService(repo Repository, usrRepo user.Repository) *Service {
	return &Service{repo: repo, users: usrRepo}
}

// checkTeacher verifies the assigned teacher exists, holds the teacher role
// and is active.
func (svc *Service) checkTeacher(ctx context.Context, id string) error {
	usr, err := svc.users.GetUserByID(ctx, id)
	if err != nil && err != user.ErrNotFound {
		return errors.Wrap(err, "finding assigned teacher")
	}
	if err == user.ErrNotFound || !usr.IsTeacher() || !usr.IsActive {
		return core.NewValidationError(
			errors.New("assigned teacher does not exist or is not a teacher"),
			core.FieldError{Field: "teacherId", Error: "assigned teacher does not exist or is not a teacher"},
		)
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nb NewBatch) (Batch, error) {
	if err := svc.checkTeacher(ctx, nb.TeacherID); err != nil {
		return Batch{}, err
	}
	now := time.Now().UTC()
	b := Batch{
		Name:      nb.Name,
		Subject:   nb.Subject,
		Grade:     nb.Grade,
		Timing:    nb.Timing,
		TeacherID: nb.TeacherID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateBatch(ctx, b)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Batch, error) {
	return svc.repo.GetBatchByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Batch, int, error) {
	filter.Normalize()
	return svc.repo.QueryBatches(ctx, filter)
}

// ByTeacher pages through the batches assigned to one teacher.
func (svc *Service) ByTeacher(ctx context.Context, teacherID string, page, limit int) ([]Batch, int, error) {
	filter := QueryFilter{TeacherID: teacherID, Page: page, Limit: limit}
	filter.Normalize()
	return svc.repo.QueryBatches(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id string, ub UpdateBatch) (Batch, error) {
	orig, err := svc.repo.GetBatchByID(ctx, id)
	if err != nil {
		return Batch{}, err
	}
	if ub.Name != "" {
		orig.Name = ub.Name
	}
	if ub.Subject != "" {
		orig.Subject = ub.Subject
	}
	if ub.Grade != "" {
		orig.Grade = ub.Grade
	}
	if ub.Timing != "" {
		orig.Timing = ub.Timing
	}
	if ub.TeacherID != "" && ub.TeacherID != orig.TeacherID {
		if err = svc.checkTeacher(ctx, ub.TeacherID); err != nil {
			return Batch{}, err
		}
		orig.TeacherID = ub.TeacherID
	}
	orig.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateBatch(ctx, orig)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteBatch(ctx, id)
}
