package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Material identifies a raw material category
type Material string

// Material categories consumed by a bag job
const (
	MaterialPaper      Material = "Paper"
	MaterialSideGlue   Material = "Side Glue"
	MaterialBottomGlue Material = "Bottom Glue"
	MaterialInk        Material = "Ink"
)

// BOMLine represents a single line in a Bill of Materials
type BOMLine struct {
	Material Material
	Quantity decimal.Decimal
	Unit     string
	Position int
}

// NewBOMLine creates a validated BOMLine
func NewBOMLine(material Material, quantity decimal.Decimal, unit string, position int) (*BOMLine, error) {
	if string(material) == "" {
		return nil, fmt.Errorf("material cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}
	if unit == "" {
		return nil, fmt.Errorf("unit cannot be empty")
	}
	if position <= 0 {
		return nil, fmt.Errorf("position must be positive, got %d", position)
	}

	return &BOMLine{
		Material: material,
		Quantity: quantity,
		Unit:     unit,
		Position: position,
	}, nil
}

// WebLayout captures the sheet geometry and machine selection an
// estimate was computed from. All lengths are in millimeters,
// UnitWeightG is grams per bag, FinishWeightKG is the finished
// paper weight of the whole run before wastage allowance.
type WebLayout struct {
	WebHeightMM    decimal.Decimal
	WebWidthMM     decimal.Decimal
	CylinderMM     decimal.Decimal
	PaperRollMM    decimal.Decimal
	UnitWeightG    decimal.Decimal
	FinishWeightKG decimal.Decimal
}
