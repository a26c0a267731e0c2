package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/tutorbase/backend/core/batch"
)

type batchRepository struct {
	db *batchTable
}

var _ batch.Repository = (*batchRepository)(nil) // interface compliance check

func NewBatchRepository(db *DB) batch.Repository {
	return &batchRepository{db: db.batch}
}

func (repo *batchRepository) query() []batch.Batch {
	batches := make([]batch.Batch, 0, len(repo.db.table))
	for _, b := range repo.db.table {
		batches = append(batches, *b)
	}
	return batches
}

func (repo *batchRepository) CreateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	b.ID = uuid.New().String()
	repo.db.table[b.ID] = &b
	return b, nil
}

func (repo *batchRepository) GetBatchByID(ctx context.Context, id string) (batch.Batch, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if b, ok := repo.db.table[id]; ok {
		return *b, nil
	}
	return batch.Batch{}, batch.ErrNotFound
}

func (repo *batchRepository) QueryBatches(ctx context.Context, filter batch.QueryFilter) ([]batch.Batch, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	matched := make([]batch.Batch, 0)
	for _, b := range repo.query() {
		if filter.TeacherID != "" && b.TeacherID != filter.TeacherID {
			continue
		}
		if filter.Subject != "" && b.Subject != filter.Subject {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (repo *batchRepository) BatchesExist(ctx context.Context, ids []string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, id := range ids {
		if _, ok := repo.db.table[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (repo *batchRepository) UpdateBatch(ctx context.Context, b batch.Batch) (batch.Batch, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[b.ID]; !ok {
		return batch.Batch{}, batch.ErrNotFound
	}
	repo.db.table[b.ID] = &b
	return b, nil
}

func (repo *batchRepository) DeleteBatch(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return batch.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
