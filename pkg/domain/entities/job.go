package entities

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// JobType represents the kind of paper bag being estimated
type JobType int

const (
	SOS JobType = iota
	CarryBag
	VBottom
	ThumbCut
	SquareCut
)

// String method for JobType enum
func (j JobType) String() string {
	switch j {
	case SOS:
		return "SOS"
	case CarryBag:
		return "Carry Bag"
	case VBottom:
		return "V-Bottom"
	case ThumbCut:
		return "Thumb Cut"
	case SquareCut:
		return "Square Cut"
	default:
		return "Unknown"
	}
}

// ParseJobType converts a string into a JobType
func ParseJobType(s string) (JobType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sos":
		return SOS, nil
	case "carry bag", "carrybag", "carry-bag":
		return CarryBag, nil
	case "v-bottom", "vbottom":
		return VBottom, nil
	case "thumb cut", "thumbcut", "thumb-cut":
		return ThumbCut, nil
	case "square cut", "squarecut", "square-cut":
		return SquareCut, nil
	default:
		return SOS, fmt.Errorf("unknown job type: %q (expected: SOS, Carry Bag, V-Bottom, Thumb Cut, or Square Cut)", s)
	}
}

// JobTypes lists every recognized job type in display order
func JobTypes() []JobType {
	return []JobType{SOS, CarryBag, VBottom, ThumbCut, SquareCut}
}

// JobParameters is the immutable input of one estimation request.
// Dimensions are in inches, GSM is paper grammage, Quantity is the
// number of bags. Colors carries one entry per printed color; an
// empty slice means an unprinted job.
type JobParameters struct {
	JobType        JobType
	JobName        string
	CustomerName   string
	CustomerEmail  string
	CustomerMobile string
	WidthIn        decimal.Decimal
	BottomIn       decimal.Decimal
	HeightIn       decimal.Decimal
	GSM            decimal.Decimal
	Quantity       int64
	Colors         []string
}

// CloneColors returns a defensive copy of the color list
func (p JobParameters) CloneColors() []string {
	if p.Colors == nil {
		return nil
	}
	colors := make([]string, len(p.Colors))
	copy(colors, p.Colors)
	return colors
}

// Printed reports whether the job carries any printing
func (p JobParameters) Printed() bool {
	return len(p.Colors) > 0
}
