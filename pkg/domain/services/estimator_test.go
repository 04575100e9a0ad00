package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamr/rawmat/pkg/domain/entities"
)

func decimals(t *testing.T, values ...string) []decimal.Decimal {
	t.Helper()
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func testEstimator(t *testing.T) *Estimator {
	t.Helper()
	machines, err := entities.NewMachineTable(
		decimals(t, "350", "400", "450"),
		decimals(t, "700", "760", "790", "800"),
	)
	require.NoError(t, err)

	estimator, err := NewEstimator(machines, entities.DefaultMaterialRules())
	require.NoError(t, err)
	return estimator
}

func TestEstimator_Estimate(t *testing.T) {
	estimator := testEstimator(t)
	params := validParams()

	layout, lines, err := estimator.Estimate(params)
	require.NoError(t, err)

	// (12 + 5/2 + 1) in and (2*(10+5) + 1) in, converted to mm.
	assert.True(t, layout.WebHeightMM.Equal(decimal.RequireFromString("393.7")),
		"web height: %s", layout.WebHeightMM)
	assert.True(t, layout.WebWidthMM.Equal(decimal.RequireFromString("787.4")),
		"web width: %s", layout.WebWidthMM)
	assert.True(t, layout.CylinderMM.Equal(decimal.NewFromInt(400)),
		"cylinder: %s", layout.CylinderMM)
	assert.True(t, layout.PaperRollMM.Equal(decimal.NewFromInt(790)),
		"paper roll: %s", layout.PaperRollMM)
	assert.True(t, layout.UnitWeightG.Equal(decimal.RequireFromString("31.6")),
		"unit weight: %s", layout.UnitWeightG)
	assert.True(t, layout.FinishWeightKG.Equal(decimal.NewFromInt(316)),
		"finish weight: %s", layout.FinishWeightKG)

	require.Len(t, lines, 4)
	expected := []struct {
		material entities.Material
		quantity string
	}{
		{entities.MaterialPaper, "336.17"},
		{entities.MaterialSideGlue, "3.16"},
		{entities.MaterialBottomGlue, "7.9"},
		{entities.MaterialInk, "3.16"},
	}
	for i, want := range expected {
		assert.Equal(t, want.material, lines[i].Material)
		assert.True(t, lines[i].Quantity.Equal(decimal.RequireFromString(want.quantity)),
			"%s quantity: %s", want.material, lines[i].Quantity)
		assert.Equal(t, "kg", lines[i].Unit)
		assert.Equal(t, i+1, lines[i].Position)
	}
}

func TestEstimator_Estimate_Deterministic(t *testing.T) {
	estimator := testEstimator(t)
	params := validParams()

	layoutA, linesA, err := estimator.Estimate(params)
	require.NoError(t, err)
	layoutB, linesB, err := estimator.Estimate(params)
	require.NoError(t, err)

	assert.True(t, layoutA.FinishWeightKG.Equal(layoutB.FinishWeightKG))
	require.Equal(t, len(linesA), len(linesB))
	for i := range linesA {
		assert.Equal(t, linesA[i].Material, linesB[i].Material)
		assert.True(t, linesA[i].Quantity.Equal(linesB[i].Quantity))
	}
}

func TestEstimator_Estimate_UnprintedJobSkipsInk(t *testing.T) {
	estimator := testEstimator(t)
	params := validParams()
	params.Colors = nil

	_, lines, err := estimator.Estimate(params)
	require.NoError(t, err)

	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.NotEqual(t, entities.MaterialInk, line.Material)
	}
}

func TestEstimator_Estimate_NoFittingRoll(t *testing.T) {
	machines, err := entities.NewMachineTable(
		decimals(t, "350", "400", "450"),
		decimals(t, "500"),
	)
	require.NoError(t, err)
	estimator, err := NewEstimator(machines, entities.DefaultMaterialRules())
	require.NoError(t, err)

	_, _, err = estimator.Estimate(validParams())
	var noMatch *NoRuleMatchError
	require.ErrorAs(t, err, &noMatch)
	assert.Equal(t, entities.SOS, noMatch.JobType)
}

func TestEstimator_Estimate_RulesOrderedByPosition(t *testing.T) {
	machines, err := entities.NewMachineTable(
		decimals(t, "350", "400", "450"),
		decimals(t, "700", "760", "790", "800"),
	)
	require.NoError(t, err)

	// Deliberately shuffled input rules; output must follow positions.
	rules := entities.DefaultMaterialRules()
	for i, j := 0, len(rules)-1; i < j; i, j = i+1, j-1 {
		rules[i], rules[j] = rules[j], rules[i]
	}
	estimator, err := NewEstimator(machines, rules)
	require.NoError(t, err)

	_, lines, err := estimator.Estimate(validParams())
	require.NoError(t, err)
	for i := 1; i < len(lines); i++ {
		assert.Less(t, lines[i-1].Position, lines[i].Position)
	}
}

func TestNewEstimator_RejectsBadTables(t *testing.T) {
	machines, err := entities.NewMachineTable(
		decimals(t, "400"),
		decimals(t, "790"),
	)
	require.NoError(t, err)

	t.Run("nil_machine_table", func(t *testing.T) {
		_, err := NewEstimator(nil, entities.DefaultMaterialRules())
		assert.Error(t, err)
	})

	t.Run("empty_rules", func(t *testing.T) {
		_, err := NewEstimator(machines, nil)
		assert.Error(t, err)
	})

	t.Run("duplicate_material", func(t *testing.T) {
		rules := entities.DefaultMaterialRules()
		rules = append(rules, rules[0])
		_, err := NewEstimator(machines, rules)
		assert.Error(t, err)
	})

	t.Run("wastage_fraction_at_one", func(t *testing.T) {
		rules := entities.DefaultMaterialRules()
		rules[0].Factor = decimal.NewFromInt(1)
		_, err := NewEstimator(machines, rules)
		assert.Error(t, err)
	})
}
