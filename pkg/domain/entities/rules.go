package entities

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// RollSnapToleranceMM is how far below the required web width a paper
// roll may fall and still be chosen over the next wider roll.
var RollSnapToleranceMM = decimal.NewFromInt(5)

// MachineTable holds the cylinder circumferences and paper roll widths
// (both in millimeters) available on the shop floor. Both lists are
// kept sorted ascending.
type MachineTable struct {
	Cylinders  []decimal.Decimal
	PaperRolls []decimal.Decimal
}

// NewMachineTable creates a validated, sorted MachineTable
func NewMachineTable(cylinders, paperRolls []decimal.Decimal) (*MachineTable, error) {
	if len(cylinders) == 0 {
		return nil, fmt.Errorf("machine table must list at least one cylinder")
	}
	if len(paperRolls) == 0 {
		return nil, fmt.Errorf("machine table must list at least one paper roll")
	}
	for _, c := range cylinders {
		if !c.IsPositive() {
			return nil, fmt.Errorf("cylinder size must be positive, got %s", c)
		}
	}
	for _, r := range paperRolls {
		if !r.IsPositive() {
			return nil, fmt.Errorf("paper roll size must be positive, got %s", r)
		}
	}

	table := &MachineTable{
		Cylinders:  make([]decimal.Decimal, len(cylinders)),
		PaperRolls: make([]decimal.Decimal, len(paperRolls)),
	}
	copy(table.Cylinders, cylinders)
	copy(table.PaperRolls, paperRolls)
	sort.Slice(table.Cylinders, func(i, j int) bool {
		return table.Cylinders[i].LessThan(table.Cylinders[j])
	})
	sort.Slice(table.PaperRolls, func(i, j int) bool {
		return table.PaperRolls[i].LessThan(table.PaperRolls[j])
	})

	return table, nil
}

// NearestCylinder returns the available cylinder closest to the
// required web height. Ties resolve to the smaller cylinder.
func (m *MachineTable) NearestCylinder(webHeightMM decimal.Decimal) decimal.Decimal {
	best := m.Cylinders[0]
	bestDist := best.Sub(webHeightMM).Abs()
	for _, c := range m.Cylinders[1:] {
		dist := c.Sub(webHeightMM).Abs()
		if dist.LessThan(bestDist) {
			best = c
			bestDist = dist
		}
	}
	return best
}

// SelectPaperRoll picks the roll for a required web width: the widest
// roll not exceeding the width when it falls within
// RollSnapToleranceMM, otherwise the narrowest roll above the width.
// An error means no roll can cover the web.
func (m *MachineTable) SelectPaperRoll(webWidthMM decimal.Decimal) (decimal.Decimal, error) {
	var smaller, bigger *decimal.Decimal
	for i := range m.PaperRolls {
		roll := m.PaperRolls[i]
		if roll.LessThanOrEqual(webWidthMM) {
			smaller = &m.PaperRolls[i]
		} else if bigger == nil {
			bigger = &m.PaperRolls[i]
		}
	}

	switch {
	case smaller != nil && webWidthMM.Sub(*smaller).LessThanOrEqual(RollSnapToleranceMM):
		return *smaller, nil
	case bigger != nil:
		return *bigger, nil
	default:
		return decimal.Zero, fmt.Errorf("no paper roll covers web width %s mm (widest available: %s mm)",
			webWidthMM, m.PaperRolls[len(m.PaperRolls)-1])
	}
}

// RuleBasis selects the consumption formula of a material rule
type RuleBasis int

const (
	// BasisPaper divides the finish weight by (1 - factor), the
	// factor being the wastage fraction of the paper run
	BasisPaper RuleBasis = iota
	// BasisCoverage multiplies the finish weight by the factor
	BasisCoverage
)

// String method for RuleBasis enum
func (b RuleBasis) String() string {
	switch b {
	case BasisPaper:
		return "Paper"
	case BasisCoverage:
		return "Coverage"
	default:
		return "Unknown"
	}
}

// ParseRuleBasis converts a string into a RuleBasis
func ParseRuleBasis(s string) (RuleBasis, error) {
	switch s {
	case "Paper", "paper":
		return BasisPaper, nil
	case "Coverage", "coverage":
		return BasisCoverage, nil
	default:
		return BasisPaper, fmt.Errorf("invalid rule basis: %q (expected: Paper or Coverage)", s)
	}
}

// MaterialRule maps a material category to its consumption formula.
// JobTypes empty means the rule applies to every job type.
type MaterialRule struct {
	Material         Material
	Basis            RuleBasis
	Factor           decimal.Decimal
	Unit             string
	Precision        int32
	Position         int
	RequiresPrinting bool
	JobTypes         []JobType
}

// AppliesTo reports whether the rule matches the given parameters
func (r MaterialRule) AppliesTo(params JobParameters) bool {
	if r.RequiresPrinting && !params.Printed() {
		return false
	}
	if len(r.JobTypes) == 0 {
		return true
	}
	for _, jt := range r.JobTypes {
		if jt == params.JobType {
			return true
		}
	}
	return false
}

// DefaultMaterialRules returns the standard bag consumption rules:
// paper with a 6% wastage allowance, side glue at 1%, bottom glue at
// 2.5% and ink at 1% of the finish weight, ink only on printed jobs.
func DefaultMaterialRules() []MaterialRule {
	return []MaterialRule{
		{
			Material:  MaterialPaper,
			Basis:     BasisPaper,
			Factor:    decimal.RequireFromString("0.06"),
			Unit:      "kg",
			Precision: 2,
			Position:  1,
		},
		{
			Material:  MaterialSideGlue,
			Basis:     BasisCoverage,
			Factor:    decimal.RequireFromString("0.01"),
			Unit:      "kg",
			Precision: 2,
			Position:  2,
		},
		{
			Material:  MaterialBottomGlue,
			Basis:     BasisCoverage,
			Factor:    decimal.RequireFromString("0.025"),
			Unit:      "kg",
			Precision: 2,
			Position:  3,
		},
		{
			Material:         MaterialInk,
			Basis:            BasisCoverage,
			Factor:           decimal.RequireFromString("0.01"),
			Unit:             "kg",
			Precision:        2,
			Position:         4,
			RequiresPrinting: true,
		},
	}
}

// ValidationRanges declares the inclusive bounds accepted for the
// numeric job parameters, plus the string field limits
type ValidationRanges struct {
	WidthMinIn   decimal.Decimal
	WidthMaxIn   decimal.Decimal
	BottomMinIn  decimal.Decimal
	BottomMaxIn  decimal.Decimal
	HeightMinIn  decimal.Decimal
	HeightMaxIn  decimal.Decimal
	GSMMin       decimal.Decimal
	GSMMax       decimal.Decimal
	MinQuantity  int64
	MaxColors    int
	MaxNameChars int
}

// DefaultValidationRanges returns the standard bag machine limits
func DefaultValidationRanges() ValidationRanges {
	return ValidationRanges{
		WidthMinIn:   decimal.RequireFromString("5.25"),
		WidthMaxIn:   decimal.RequireFromString("13.00"),
		BottomMinIn:  decimal.RequireFromString("2.50"),
		BottomMaxIn:  decimal.RequireFromString("7.00"),
		HeightMinIn:  decimal.RequireFromString("6.75"),
		HeightMaxIn:  decimal.RequireFromString("17.75"),
		GSMMin:       decimal.NewFromInt(55),
		GSMMax:       decimal.NewFromInt(150),
		MinQuantity:  10000,
		MaxColors:    6,
		MaxNameChars: 75,
	}
}

// RangeTable holds per-job-type validation ranges with a shared default
type RangeTable struct {
	Default   ValidationRanges
	Overrides map[JobType]ValidationRanges
}

// NewRangeTable creates a RangeTable around the given default ranges
func NewRangeTable(defaults ValidationRanges) *RangeTable {
	return &RangeTable{
		Default:   defaults,
		Overrides: make(map[JobType]ValidationRanges),
	}
}

// For returns the ranges that apply to a job type
func (t *RangeTable) For(jobType JobType) ValidationRanges {
	if ranges, ok := t.Overrides[jobType]; ok {
		return ranges
	}
	return t.Default
}
