package activity

import (
	"context"
	"sync"
)

// MemoryRepo keeps records in process memory. It backs tests and seeded demo data.
type MemoryRepo struct {
	mu      sync.Mutex
	records []Record
}

func NewMemoryRepo(seed ...Record) *MemoryRepo {
	r := &MemoryRepo{}
	r.records = append(r.records, seed...)
	return r
}

func (r *MemoryRepo) Append(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

// List returns a copy, newest appended first.
func (r *MemoryRepo) List(_ context.Context) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
