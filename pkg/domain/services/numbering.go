package services

import (
	"fmt"
	"time"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
)

// DefaultSequenceWidth is the zero padding applied to job number sequences
const DefaultSequenceWidth = 7

// NumberFormat configures how job numbers are rendered. The fiscal
// year prefix and sequence semantics are fixed; only the padding
// width is a formatting choice.
type NumberFormat struct {
	SequenceWidth int
}

func (f NumberFormat) width() int {
	if f.SequenceWidth <= 0 {
		return DefaultSequenceWidth
	}
	return f.SequenceWidth
}

// Format renders a job number for a fiscal year and sequence
func (f NumberFormat) Format(fiscalYear string, sequence int64) entities.JobNumber {
	return entities.JobNumber(fmt.Sprintf("%s_%0*d", fiscalYear, f.width(), sequence))
}

// FiscalYear returns the Indian fiscal year of t as "YY-YY"; the
// fiscal year starts on April 1st.
func FiscalYear(t time.Time) string {
	year := t.Year()
	if t.Month() < time.April {
		year--
	}
	return fmt.Sprintf("%02d-%02d", year%100, (year+1)%100)
}

// NextJobNumber derives the successor of the highest sequence already
// recorded for the current fiscal year. An empty store, or a store
// whose records all belong to earlier fiscal years, starts at 1.
// Records whose numbers do not parse under this scheme are skipped;
// the store's duplicate check still guards them.
func NextJobNumber(records []*entities.JobRecord, now time.Time, format NumberFormat) entities.JobNumber {
	fiscalYear := FiscalYear(now)

	var maxSequence int64
	for _, record := range records {
		recordYear, sequence, err := record.JobNumber.Parse()
		if err != nil || recordYear != fiscalYear {
			continue
		}
		if sequence > maxSequence {
			maxSequence = sequence
		}
	}

	return format.Format(fiscalYear, maxSequence+1)
}
