package student

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/tutorbase/backend/core"
	"github.com/tutorbase/backend/core/batch"
)

var (
	ErrNotFound     = errors.New("student not found")
	ErrNotInBatch   = errors.New("student is not enrolled in this batch")
	ErrNoBatches    = errors.New("at least one batch is required")
	ErrUnknownBatch = errors.New("one or more batch ids do not exist")
	ErrEmailExists  = errors.New("a student with this email already exists")
)

// Provenance markers for cacheable lookups.
const (
	SourceStore = "db"
	SourceCache = "cache"
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// QueryStudentsByBatch returns active students enrolled in the batch.
		QueryStudentsByBatch(ctx context.Context, batchID string) ([]Student, error)
		UpdateStudentBatches(ctx context.Context, id string, batchIDs []string) (Student, error)
	}

	Service struct {
		repo     Repository
		batches  batch.Repository
		cache    core.Cache
		cacheTTL time.Duration
	}
)

// NewService wires the student domain. cache may be nil, in which case every
// lookup goes straight to the store.
func NewService(repo Repository, batchRepo batch.Repository, cache core.Cache, cacheTTL time.Duration) *Service {
	return &Service{repo: repo, batches: batchRepo, cache: cache, cacheTTL: cacheTTL}
}

func studentKey(id string) string       { return "students:id:" + id }
func batchStudentsKey(id string) string { return "students:batch:" + id }

// Create validates the batch membership list before any insert: the list must
// be non-empty and every referenced batch must exist.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if len(ns.BatchIDs) == 0 {
		return Student{}, core.NewValidationError(ErrNoBatches,
			core.FieldError{Field: "batchIds", Error: ErrNoBatches.Error()})
	}
	ok, err := svc.batches.BatchesExist(ctx, ns.BatchIDs)
	if err != nil {
		return Student{}, errors.Wrap(err, "checking batches")
	}
	if !ok {
		return Student{}, core.NewValidationError(ErrUnknownBatch,
			core.FieldError{Field: "batchIds", Error: ErrUnknownBatch.Error()})
	}
	if err = svc.repo.CheckEmailUniqueness(ctx, ns.Email); err != nil {
		if err == ErrEmailExists {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Student{}, err
	}

	now := time.Now().UTC()
	enrolled := ns.EnrollmentDate
	if enrolled.IsZero() {
		enrolled = now
	}
	s := Student{
		Name:           ns.Name,
		Email:          ns.Email,
		Phone:          ns.Phone,
		Address:        ns.Address,
		Grade:          ns.Grade,
		BatchIDs:       ns.BatchIDs,
		EnrollmentDate: enrolled,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err = s.SetPassword(ns.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}
	s, err = svc.repo.CreateStudent(ctx, s)
	if err != nil {
		return Student{}, err
	}
	svc.invalidate(ctx, s)
	return s, nil
}

// GetByID is a read-through lookup: the cache is consulted first and
// populated on a miss. The returned source marker distinguishes provenance.
func (svc *Service) GetByID(ctx context.Context, id string) (Student, string, error) {
	var s Student
	if svc.cacheGet(ctx, studentKey(id), &s) {
		return s, SourceCache, nil
	}
	s, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, "", err
	}
	svc.cacheSet(ctx, studentKey(id), s)
	return s, SourceStore, nil
}

// ByBatch returns the batch's active students, read through the cache.
// The batch itself must exist.
func (svc *Service) ByBatch(ctx context.Context, batchID string) (batch.Batch, []Student, string, error) {
	b, err := svc.batches.GetBatchByID(ctx, batchID)
	if err != nil {
		return batch.Batch{}, nil, "", err
	}

	var students []Student
	if svc.cacheGet(ctx, batchStudentsKey(batchID), &students) {
		return b, students, SourceCache, nil
	}
	students, err = svc.repo.QueryStudentsByBatch(ctx, batchID)
	if err != nil {
		return batch.Batch{}, nil, "", err
	}
	svc.cacheSet(ctx, batchStudentsKey(batchID), students)
	return b, students, SourceStore, nil
}

// RemoveFromBatch drops one membership. Removing a student from a batch they
// are not enrolled in is a validation error.
func (svc *Service) RemoveFromBatch(ctx context.Context, studentID, batchID string) (Student, error) {
	s, err := svc.repo.GetStudentByID(ctx, studentID)
	if err != nil {
		return Student{}, err
	}
	if !s.InBatch(batchID) {
		return Student{}, core.NewValidationError(ErrNotInBatch,
			core.FieldError{Field: "batchId", Error: ErrNotInBatch.Error()})
	}
	remaining := make([]string, 0, len(s.BatchIDs)-1)
	for _, id := range s.BatchIDs {
		if id != batchID {
			remaining = append(remaining, id)
		}
	}
	s, err = svc.repo.UpdateStudentBatches(ctx, studentID, remaining)
	if err != nil {
		return Student{}, err
	}
	// purge the dropped batch's entry too
	svc.invalidate(ctx, s, batchID)
	return s, nil
}

// cache helpers; cache faults are deliberately non-fatal, reads fall back to
// the store and writes are best-effort.

func (svc *Service) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if svc.cache == nil {
		return false
	}
	data, err := svc.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

func (svc *Service) cacheSet(ctx context.Context, key string, val interface{}) {
	if svc.cache == nil {
		return
	}
	if data, err := json.Marshal(val); err == nil {
		_ = svc.cache.Set(ctx, key, data, svc.cacheTTL)
	}
}

// invalidate purges the student's own entry and every affected per-batch
// listing after a write.
func (svc *Service) invalidate(ctx context.Context, s Student, extraBatchIDs ...string) {
	if svc.cache == nil {
		return
	}
	keys := []string{studentKey(s.ID)}
	for _, id := range s.BatchIDs {
		keys = append(keys, batchStudentsKey(id))
	}
	for _, id := range extraBatchIDs {
		keys = append(keys, batchStudentsKey(id))
	}
	_ = svc.cache.Delete(ctx, keys...)
}
