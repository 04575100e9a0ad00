package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testMachineTable(t *testing.T) *MachineTable {
	t.Helper()
	table, err := NewMachineTable(
		[]decimal.Decimal{dec("450"), dec("350"), dec("400")},
		[]decimal.Decimal{dec("800"), dec("700"), dec("790"), dec("760")},
	)
	require.NoError(t, err)
	return table
}

func TestNewMachineTable(t *testing.T) {
	table := testMachineTable(t)

	// Lists are sorted regardless of input order
	assert.True(t, table.Cylinders[0].Equal(dec("350")))
	assert.True(t, table.Cylinders[2].Equal(dec("450")))
	assert.True(t, table.PaperRolls[0].Equal(dec("700")))
	assert.True(t, table.PaperRolls[3].Equal(dec("800")))

	_, err := NewMachineTable(nil, []decimal.Decimal{dec("700")})
	assert.Error(t, err, "empty cylinder list must be rejected")

	_, err = NewMachineTable([]decimal.Decimal{dec("350")}, nil)
	assert.Error(t, err, "empty roll list must be rejected")

	_, err = NewMachineTable([]decimal.Decimal{dec("-1")}, []decimal.Decimal{dec("700")})
	assert.Error(t, err, "non-positive sizes must be rejected")
}

func TestMachineTable_NearestCylinder(t *testing.T) {
	table := testMachineTable(t)

	tests := []struct {
		name      string
		webHeight string
		expected  string
	}{
		{name: "closest_above", webHeight: "393.7", expected: "400"},
		{name: "closest_below", webHeight: "360", expected: "350"},
		{name: "exact_match", webHeight: "450", expected: "450"},
		{name: "tie_prefers_smaller", webHeight: "375", expected: "350"},
		{name: "below_smallest", webHeight: "100", expected: "350"},
		{name: "above_largest", webHeight: "900", expected: "450"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chosen := table.NearestCylinder(dec(tt.webHeight))
			assert.True(t, chosen.Equal(dec(tt.expected)),
				"expected %s, got %s", tt.expected, chosen)
		})
	}
}

func TestMachineTable_SelectPaperRoll(t *testing.T) {
	table := testMachineTable(t)

	tests := []struct {
		name     string
		webWidth string
		expected string
		wantErr  bool
	}{
		{name: "smaller_within_tolerance", webWidth: "763", expected: "760"},
		{name: "exactly_at_tolerance", webWidth: "765", expected: "760"},
		{name: "beyond_tolerance_takes_bigger", webWidth: "787.4", expected: "790"},
		{name: "exact_match", webWidth: "700", expected: "700"},
		{name: "below_smallest_takes_smallest", webWidth: "650", expected: "700"},
		{name: "wider_than_widest", webWidth: "900", wantErr: true},
		{name: "widest_within_tolerance", webWidth: "804", expected: "800"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chosen, err := table.SelectPaperRoll(dec(tt.webWidth))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, chosen.Equal(dec(tt.expected)),
				"expected %s, got %s", tt.expected, chosen)
		})
	}
}

func TestDefaultMaterialRules(t *testing.T) {
	rules := DefaultMaterialRules()
	require.Len(t, rules, 4)

	seen := make(map[Material]bool)
	for _, rule := range rules {
		assert.False(t, seen[rule.Material], "material %s listed twice", rule.Material)
		seen[rule.Material] = true
	}

	assert.Equal(t, MaterialPaper, rules[0].Material)
	assert.Equal(t, BasisPaper, rules[0].Basis)
	assert.True(t, rules[3].RequiresPrinting, "ink requires printing")
}

func TestMaterialRule_AppliesTo(t *testing.T) {
	inkRule := MaterialRule{Material: MaterialInk, RequiresPrinting: true}
	assert.False(t, inkRule.AppliesTo(JobParameters{JobType: SOS}))
	assert.True(t, inkRule.AppliesTo(JobParameters{JobType: SOS, Colors: []string{"Red"}}))

	scopedRule := MaterialRule{Material: "Handle Rope", JobTypes: []JobType{CarryBag}}
	assert.True(t, scopedRule.AppliesTo(JobParameters{JobType: CarryBag}))
	assert.False(t, scopedRule.AppliesTo(JobParameters{JobType: SOS}))
}

func TestRangeTable_For(t *testing.T) {
	table := NewRangeTable(DefaultValidationRanges())

	assert.Equal(t, int64(10000), table.For(SOS).MinQuantity)

	override := DefaultValidationRanges()
	override.MinQuantity = 5000
	table.Overrides[CarryBag] = override

	assert.Equal(t, int64(5000), table.For(CarryBag).MinQuantity)
	assert.Equal(t, int64(10000), table.For(SOS).MinQuantity)
}
