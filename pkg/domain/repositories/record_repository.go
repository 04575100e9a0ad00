package repositories

import (
	"context"
	"errors"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
)

// ErrDuplicateJobNumber is returned by Append when the record's job
// number already exists in the store. It is the concurrency safety
// net for the number generator's retry loop.
var ErrDuplicateJobNumber = errors.New("duplicate job number")

// RecordStore provides access to persisted job records. Records are
// append only: a record is never mutated or renumbered once written.
//
// Implementations must keep append atomic: after any error the store
// reads back exactly as it did before the call. Any handle on the
// backing store is held only for the duration of a single call.
type RecordStore interface {
	// ReadAll returns a snapshot of every record in append order
	ReadAll(ctx context.Context) ([]*entities.JobRecord, error)

	// Append durably adds one record, failing with
	// ErrDuplicateJobNumber if its job number is already taken
	Append(ctx context.Context, record *entities.JobRecord) error
}
