package entities

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JobNumber is the unique identifier of a persisted job record,
// formatted as "<fiscal year>_<zero padded sequence>", e.g. "25-26_0000042"
type JobNumber string

// Parse splits a job number into its fiscal year and sequence parts
func (n JobNumber) Parse() (fiscalYear string, sequence int64, err error) {
	parts := strings.SplitN(string(n), "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", 0, fmt.Errorf("malformed job number: %q", n)
	}

	sequence, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed job number sequence in %q: %w", n, err)
	}
	if sequence <= 0 {
		return "", 0, fmt.Errorf("job number sequence must be positive in %q", n)
	}

	return parts[0], sequence, nil
}

// JobRecord is one persisted estimation: the assigned number, the
// input parameters, the computed layout and BOM, and the creation
// time. Records are immutable once appended; corrections are
// recorded as new records under fresh numbers.
type JobRecord struct {
	JobNumber  JobNumber
	Parameters JobParameters
	Layout     WebLayout
	Lines      []BOMLine
	CreatedAt  time.Time
}

// NewJobRecord creates a validated JobRecord
func NewJobRecord(number JobNumber, params JobParameters, layout WebLayout, lines []BOMLine, createdAt time.Time) (*JobRecord, error) {
	if string(number) == "" {
		return nil, fmt.Errorf("job number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("job record must carry at least one BOM line")
	}
	if createdAt.IsZero() {
		return nil, fmt.Errorf("creation time cannot be zero")
	}

	record := &JobRecord{
		JobNumber:  number,
		Parameters: params,
		Layout:     layout,
		CreatedAt:  createdAt,
	}
	record.Parameters.Colors = params.CloneColors()
	record.Lines = make([]BOMLine, len(lines))
	copy(record.Lines, lines)

	return record, nil
}

// Clone returns a deep copy so callers cannot mutate stored records
func (r *JobRecord) Clone() *JobRecord {
	clone := *r
	clone.Parameters.Colors = r.Parameters.CloneColors()
	clone.Lines = make([]BOMLine, len(r.Lines))
	copy(clone.Lines, r.Lines)
	return &clone
}
