package services

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
)

// ValidationCode classifies why a job parameter set was rejected
type ValidationCode int

const (
	UnknownJobType ValidationCode = iota
	OutOfRange
	MissingField
	TypeMismatch
)

// String method for ValidationCode enum
func (c ValidationCode) String() string {
	switch c {
	case UnknownJobType:
		return "UnknownJobType"
	case OutOfRange:
		return "OutOfRange"
	case MissingField:
		return "MissingField"
	case TypeMismatch:
		return "TypeMismatch"
	default:
		return "Unknown"
	}
}

// ValidationError describes a rejected input field. It is always a
// user input defect: the caller can correct the field and retry.
type ValidationError struct {
	Code  ValidationCode
	Field string
	Value string
	Min   string
	Max   string
}

// Error method for the error interface
func (e *ValidationError) Error() string {
	switch e.Code {
	case UnknownJobType:
		return fmt.Sprintf("unknown job type: %s", e.Value)
	case OutOfRange:
		if e.Max == "" {
			return fmt.Sprintf("%s out of range: %s (must be at least %s)", e.Field, e.Value, e.Min)
		}
		return fmt.Sprintf("%s out of range: %s (allowed: %s to %s)", e.Field, e.Value, e.Min, e.Max)
	case MissingField:
		return fmt.Sprintf("missing required field: %s", e.Field)
	case TypeMismatch:
		return fmt.Sprintf("%s has the wrong form: %s", e.Field, e.Value)
	default:
		return fmt.Sprintf("invalid field: %s", e.Field)
	}
}

// NewOutOfRange creates an OutOfRange validation error
func NewOutOfRange(field, value, min, max string) *ValidationError {
	return &ValidationError{Code: OutOfRange, Field: field, Value: value, Min: min, Max: max}
}

// NewMissingField creates a MissingField validation error
func NewMissingField(field string) *ValidationError {
	return &ValidationError{Code: MissingField, Field: field}
}

// NewTypeMismatch creates a TypeMismatch validation error
func NewTypeMismatch(field, value string) *ValidationError {
	return &ValidationError{Code: TypeMismatch, Field: field, Value: value}
}

// ParseDecimalField parses a raw string into a decimal, reporting a
// TypeMismatch validation error on failure. Used at the input boundary
// where parameters arrive as text.
func ParseDecimalField(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, NewMissingField(field)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, NewTypeMismatch(field, raw)
	}
	return value, nil
}

var (
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	mobilePattern = regexp.MustCompile(`^(?:\+91|0)?[789]\d{9}$`)
)

// Validator checks job parameters against the configured ranges
// before any estimation runs. Validation is a pure predicate: it
// never mutates the input and has no side effects.
type Validator struct {
	ranges *entities.RangeTable
}

// NewValidator creates a validator over the given range table
func NewValidator(ranges *entities.RangeTable) *Validator {
	return &Validator{ranges: ranges}
}

// Validate accepts or rejects a parameter set. The returned error is
// always a *ValidationError when non-nil.
func (v *Validator) Validate(params entities.JobParameters) error {
	known := false
	for _, jt := range entities.JobTypes() {
		if jt == params.JobType {
			known = true
			break
		}
	}
	if !known {
		return &ValidationError{Code: UnknownJobType, Value: fmt.Sprintf("%d", int(params.JobType))}
	}

	ranges := v.ranges.For(params.JobType)

	if params.CustomerName == "" {
		return NewMissingField("customer name")
	}
	if len(params.CustomerName) > ranges.MaxNameChars {
		return NewOutOfRange("customer name length", fmt.Sprintf("%d", len(params.CustomerName)),
			"1", fmt.Sprintf("%d", ranges.MaxNameChars))
	}
	if len(params.JobName) > ranges.MaxNameChars {
		return NewOutOfRange("job name length", fmt.Sprintf("%d", len(params.JobName)),
			"0", fmt.Sprintf("%d", ranges.MaxNameChars))
	}
	if params.CustomerEmail == "" {
		return NewMissingField("customer email")
	}
	if !emailPattern.MatchString(params.CustomerEmail) {
		return NewTypeMismatch("customer email", params.CustomerEmail)
	}
	if params.CustomerMobile == "" {
		return NewMissingField("customer mobile")
	}
	if !mobilePattern.MatchString(params.CustomerMobile) {
		return NewTypeMismatch("customer mobile", params.CustomerMobile)
	}

	if err := checkRange("width", params.WidthIn, ranges.WidthMinIn, ranges.WidthMaxIn); err != nil {
		return err
	}
	if err := checkRange("bottom", params.BottomIn, ranges.BottomMinIn, ranges.BottomMaxIn); err != nil {
		return err
	}
	if err := checkRange("height", params.HeightIn, ranges.HeightMinIn, ranges.HeightMaxIn); err != nil {
		return err
	}
	if err := checkRange("gsm", params.GSM, ranges.GSMMin, ranges.GSMMax); err != nil {
		return err
	}
	if params.Quantity < ranges.MinQuantity {
		return NewOutOfRange("quantity", fmt.Sprintf("%d", params.Quantity),
			fmt.Sprintf("%d", ranges.MinQuantity), "")
	}

	if len(params.Colors) > ranges.MaxColors {
		return NewOutOfRange("colors", fmt.Sprintf("%d", len(params.Colors)),
			"0", fmt.Sprintf("%d", ranges.MaxColors))
	}
	for i, color := range params.Colors {
		if color == "" {
			return NewMissingField(fmt.Sprintf("color %d", i+1))
		}
	}

	return nil
}

func checkRange(field string, value, min, max decimal.Decimal) error {
	if value.LessThan(min) || value.GreaterThan(max) {
		return NewOutOfRange(field, value.String(), min.String(), max.String())
	}
	return nil
}
