package domain

import (
	"math"
	"testing"

	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name  string
		cost  float64
		rules *PricingRules
		want  int64
	}{
		{"no rules floors cost", 99.9, nil, 99},
		{"no rules negative cost", -5, nil, 0},
		{"percent", 100, &PricingRules{Strategy: StrategyPercent, Percent: ptr(20)}, 120},
		{"percent floors", 49.99, &PricingRules{Strategy: StrategyPercent, Percent: ptr(20)}, 59},
		{"fixed", 100, &PricingRules{Strategy: StrategyFixed, Fixed: ptr(30)}, 130},
		{"hybrid fixed wins", 100, &PricingRules{Strategy: StrategyHybrid, Percent: ptr(10), Fixed: ptr(50)}, 150},
		{"hybrid percent wins", 1000, &PricingRules{Strategy: StrategyHybrid, Percent: ptr(10), Fixed: ptr(50)}, 1100},
		{"min margin raises", 100, &PricingRules{Strategy: StrategyPercent, Percent: ptr(10), MinMargin: ptr(50)}, 150},
		{"min margin never lowers", 100, &PricingRules{Strategy: StrategyPercent, Percent: ptr(80), MinMargin: ptr(50)}, 180},
		{"round to nearest", 103, &PricingRules{Strategy: StrategyFixed, Fixed: ptr(0), RoundTo: ptr(50)}, 100},
		{"round half up", 125, &PricingRules{Strategy: StrategyFixed, Fixed: ptr(0), RoundTo: ptr(50)}, 150},
		{"round to zero ignored", 103, &PricingRules{Strategy: StrategyFixed, Fixed: ptr(0), RoundTo: ptr(0)}, 103},
		{"psychological", 100, &PricingRules{Strategy: StrategyFixed, Fixed: ptr(0), Psychological: true}, 99},
		{"psychological after rounding", 103, &PricingRules{Strategy: StrategyFixed, Fixed: ptr(0), RoundTo: ptr(50), Psychological: true}, 99},
		{"psychological clamps at zero", 0.5, &PricingRules{Strategy: StrategyFixed, Psychological: true}, 0},
		{"negative percent clamped", 100, &PricingRules{Strategy: StrategyPercent, Percent: ptr(-50)}, 100},
		{"negative fixed clamped", 100, &PricingRules{Strategy: StrategyFixed, Fixed: ptr(-30)}, 100},
		{"unknown strategy adds nothing", 100, &PricingRules{Strategy: "bogus", Percent: ptr(10)}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePrice(tt.cost, tt.rules))
		})
	}
}

func TestComputePricePercentMatchesFloor(t *testing.T) {
	rules := &PricingRules{Strategy: StrategyPercent, Percent: ptr(20)}
	for _, cost := range []int64{0, 1, 7, 13, 99, 250, 1001} {
		assert.Equal(t, cost*12/10, ComputePrice(float64(cost), rules), "cost %d", cost)
	}
}

func TestComputePriceNeverNegative(t *testing.T) {
	values := []float64{-100, -1, 0, 0.4, 1, 17.5, 1000}
	strategies := []PricingStrategy{StrategyPercent, StrategyFixed, StrategyHybrid, ""}

	for _, cost := range []float64{0, 0.3, 1, 9.99, 500} {
		for _, s := range strategies {
			for _, v := range values {
				for _, psych := range []bool{false, true} {
					rules := &PricingRules{
						Strategy:      s,
						Percent:       ptr(v),
						Fixed:         ptr(v),
						MinMargin:     ptr(v),
						RoundTo:       ptr(v),
						Psychological: psych,
					}
					assert.GreaterOrEqual(t, ComputePrice(cost, rules), int64(0))
				}
			}
		}
	}
}

func TestPricingRulesValidate(t *testing.T) {
	require.NoError(t, (*PricingRules)(nil).Validate())
	require.NoError(t, (&PricingRules{Strategy: StrategyHybrid, Percent: ptr(15), Fixed: ptr(5)}).Validate())

	invalid := []*PricingRules{
		{Strategy: ""},
		{Strategy: "markup"},
		{Strategy: StrategyPercent, Percent: ptr(101)},
		{Strategy: StrategyFixed, Fixed: ptr(math.Inf(1))},
	}
	for _, r := range invalid {
		err := r.Validate()
		require.ErrorIs(t, err, e.ErrInvalidPricingRules)
		require.ErrorIs(t, err, e.ErrValidation)
	}
}

func TestPricingRulesValidateClampsNegatives(t *testing.T) {
	r := &PricingRules{
		Strategy:  StrategyHybrid,
		Percent:   ptr(-1),
		Fixed:     ptr(-3),
		MinMargin: ptr(-3),
		RoundTo:   ptr(-10),
	}
	require.NoError(t, r.Validate())

	assert.Equal(t, 0.0, *r.Percent)
	assert.Equal(t, 0.0, *r.Fixed)
	assert.Equal(t, 0.0, *r.MinMargin)
	assert.Equal(t, 0.0, *r.RoundTo)
	assert.Equal(t, int64(100), ComputePrice(100, r))
}
