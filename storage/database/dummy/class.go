package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tutorbase/backend/core/class"
)

type classRepository struct {
	db *classTable
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = uuid.New().String()
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id string) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok && c.IsActive {
		return *c, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) QueryClasses(ctx context.Context, filter class.QueryFilter) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]class.Class, 0)
	for _, c := range repo.db.table {
		if matches(*c, filter) {
			classes = append(classes, *c)
		}
	}
	sortSchedule(classes)
	return classes, nil
}

func (repo *classRepository) QueryUpcomingClasses(ctx context.Context, filter class.QueryFilter, limit int) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	now := time.Now().UTC()
	classes := make([]class.Class, 0)
	for _, c := range repo.db.table {
		if !matches(*c, filter) {
			continue
		}
		if c.Status != class.StatusScheduled && c.Status != class.StatusOngoing {
			continue
		}
		if c.ScheduledDate.Before(now) {
			continue
		}
		classes = append(classes, *c)
	}
	sortSchedule(classes)
	if len(classes) > limit {
		classes = classes[:limit]
	}
	return classes, nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if orig, ok := repo.db.table[c.ID]; !ok || !orig.IsActive {
		return class.Class{}, class.ErrNotFound
	}
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *classRepository) SetClassActive(ctx context.Context, id string, active bool) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c, ok := repo.db.table[id]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	c.IsActive = active
	c.UpdatedAt = time.Now().UTC()
	return *c, nil
}

func matches(c class.Class, filter class.QueryFilter) bool {
	if !c.IsActive {
		return false
	}
	if filter.BatchID != "" && c.BatchID != filter.BatchID {
		return false
	}
	if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
		return false
	}
	if filter.Status != "" && c.Status != filter.Status {
		return false
	}
	if !filter.StartDate.IsZero() && c.ScheduledDate.Before(filter.StartDate) {
		return false
	}
	if !filter.EndDate.IsZero() && c.ScheduledDate.After(filter.EndDate) {
		return false
	}
	return true
}

func sortSchedule(classes []class.Class) {
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].ScheduledDate.Equal(classes[j].ScheduledDate) {
			return classes[i].StartTime < classes[j].StartTime
		}
		return classes[i].ScheduledDate.Before(classes[j].ScheduledDate)
	})
}
