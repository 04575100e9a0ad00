package services

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
)

var (
	inchMM     = decimal.RequireFromString("25.4")
	mmSqPerM2  = decimal.NewFromInt(1000000)
	gramsPerKG = decimal.NewFromInt(1000)
	one        = decimal.NewFromInt(1)
	two        = decimal.NewFromInt(2)
)

// NoRuleMatchError reports that the rules or machine tables cannot
// resolve an estimate for validated input. This is an internal
// consistency defect, not a retryable condition.
type NoRuleMatchError struct {
	JobType entities.JobType
	Reason  string
}

// Error method for the error interface
func (e *NoRuleMatchError) Error() string {
	return fmt.Sprintf("no rule match for job type %s: %s", e.JobType, e.Reason)
}

// Estimator computes the bill of materials for validated job
// parameters. Estimation is deterministic: the same parameters
// against the same tables always produce the same BOM lines in the
// same order.
type Estimator struct {
	machines *entities.MachineTable
	rules    []entities.MaterialRule
}

// NewEstimator creates an estimator over the given machine and rules
// tables. The rules table must name each material at most once.
func NewEstimator(machines *entities.MachineTable, rules []entities.MaterialRule) (*Estimator, error) {
	if machines == nil {
		return nil, fmt.Errorf("machine table is required")
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("rules table must carry at least one rule")
	}

	seen := make(map[entities.Material]bool, len(rules))
	sorted := make([]entities.MaterialRule, len(rules))
	copy(sorted, rules)
	for _, rule := range sorted {
		if seen[rule.Material] {
			return nil, fmt.Errorf("ambiguous rules table: material %s appears more than once", rule.Material)
		}
		seen[rule.Material] = true
		if rule.Factor.IsNegative() {
			return nil, fmt.Errorf("rule factor for %s cannot be negative, got %s", rule.Material, rule.Factor)
		}
		if rule.Basis == entities.BasisPaper && rule.Factor.GreaterThanOrEqual(one) {
			return nil, fmt.Errorf("wastage fraction for %s must be below 1, got %s", rule.Material, rule.Factor)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	return &Estimator{machines: machines, rules: sorted}, nil
}

// Estimate computes the web layout and BOM for validated parameters
func (e *Estimator) Estimate(params entities.JobParameters) (entities.WebLayout, []entities.BOMLine, error) {
	// Web height: bag height plus half the bottom gusset plus a
	// 1 inch working allowance. Web width: the full wrap of the bag
	// (two faces plus two gussets) plus 1 inch for the side seam.
	webHeightMM := params.HeightIn.
		Add(params.BottomIn.Div(two)).
		Add(one).
		Mul(inchMM)
	webWidthMM := params.WidthIn.
		Add(params.BottomIn).
		Mul(two).
		Add(one).
		Mul(inchMM)

	cylinder := e.machines.NearestCylinder(webHeightMM)
	roll, err := e.machines.SelectPaperRoll(webWidthMM)
	if err != nil {
		return entities.WebLayout{}, nil, &NoRuleMatchError{JobType: params.JobType, Reason: err.Error()}
	}

	// One bag consumes a cylinder-by-roll panel of paper.
	unitWeightG := cylinder.Mul(roll).Div(mmSqPerM2).Mul(params.GSM)
	finishWeightKG := unitWeightG.Mul(decimal.NewFromInt(params.Quantity)).Div(gramsPerKG)

	layout := entities.WebLayout{
		WebHeightMM:    webHeightMM.Round(2),
		WebWidthMM:     webWidthMM.Round(2),
		CylinderMM:     cylinder,
		PaperRollMM:    roll,
		UnitWeightG:    unitWeightG.Round(2),
		FinishWeightKG: finishWeightKG.Round(2),
	}

	var lines []entities.BOMLine
	for _, rule := range e.rules {
		if !rule.AppliesTo(params) {
			continue
		}

		var quantity decimal.Decimal
		switch rule.Basis {
		case entities.BasisPaper:
			quantity = finishWeightKG.Div(one.Sub(rule.Factor))
		case entities.BasisCoverage:
			quantity = finishWeightKG.Mul(rule.Factor)
		default:
			return entities.WebLayout{}, nil, &NoRuleMatchError{
				JobType: params.JobType,
				Reason:  fmt.Sprintf("rule for %s has unknown basis", rule.Material),
			}
		}

		line, err := entities.NewBOMLine(rule.Material, quantity.Round(rule.Precision), rule.Unit, rule.Position)
		if err != nil {
			return entities.WebLayout{}, nil, fmt.Errorf("building BOM line for %s: %w", rule.Material, err)
		}
		lines = append(lines, *line)
	}

	if len(lines) == 0 {
		return entities.WebLayout{}, nil, &NoRuleMatchError{
			JobType: params.JobType,
			Reason:  "no applicable material rule",
		}
	}

	// rules are position sorted at construction; lines inherit that order
	return layout, lines, nil
}
