package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
	"github.com/shubhamr/rawmat/pkg/domain/repositories"
)

// RecordStore provides an in-memory job record store. It is safe for
// concurrent use and mainly serves tests and embedding scenarios.
type RecordStore struct {
	mu      sync.RWMutex
	records []*entities.JobRecord
	index   map[entities.JobNumber]int
}

// NewRecordStore creates an empty in-memory record store
func NewRecordStore() *RecordStore {
	return &RecordStore{
		index: make(map[entities.JobNumber]int),
	}
}

// Verify interface compliance
var _ repositories.RecordStore = (*RecordStore)(nil)

// ReadAll returns a snapshot of every record in append order
func (s *RecordStore) ReadAll(ctx context.Context) ([]*entities.JobRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*entities.JobRecord, len(s.records))
	for i, record := range s.records {
		records[i] = record.Clone()
	}
	return records, nil
}

// Append adds one record, rejecting duplicate job numbers
func (s *RecordStore) Append(ctx context.Context, record *entities.JobRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[record.JobNumber]; exists {
		return fmt.Errorf("job number %s: %w", record.JobNumber, repositories.ErrDuplicateJobNumber)
	}

	s.index[record.JobNumber] = len(s.records)
	s.records = append(s.records, record.Clone())
	return nil
}
