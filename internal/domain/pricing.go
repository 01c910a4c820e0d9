package domain

import (
	"fmt"
	"math"

	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/shopspring/decimal"
)

// PricingStrategy определяет способ расчёта наценки
type PricingStrategy string

const (
	StrategyPercent PricingStrategy = "percent"
	StrategyFixed   PricingStrategy = "fixed"
	StrategyHybrid  PricingStrategy = "hybrid"
)

// PricingRules — правила наценки, передаваемые с каждым вызовом импорта.
type PricingRules struct {
	Strategy      PricingStrategy `json:"strategy"`
	Percent       *float64        `json:"percent,omitempty"`
	Fixed         *float64        `json:"fixed,omitempty"`
	MinMargin     *float64        `json:"minMargin,omitempty"`
	RoundTo       *float64        `json:"roundTo,omitempty"`
	Psychological bool            `json:"psychological,omitempty"`
}

// Validate проверяет правила на границе API: отклоняет неизвестную стратегию и процент больше 100.
// Отрицательные percent, fixed, minMargin и roundTo не ошибка: они приводятся к нулю на месте.
func (r *PricingRules) Validate() error {
	if r == nil {
		return nil
	}

	switch r.Strategy {
	case StrategyPercent, StrategyFixed, StrategyHybrid:
	default:
		return fmt.Errorf("%w: unknown strategy %q", e.ErrInvalidPricingRules, r.Strategy)
	}

	for _, v := range []*float64{r.Percent, r.Fixed, r.MinMargin, r.RoundTo} {
		if v != nil && !isFinite(*v) {
			return fmt.Errorf("%w: values must be finite numbers", e.ErrInvalidPricingRules)
		}
	}
	if r.Percent != nil && *r.Percent > 100 {
		return fmt.Errorf("%w: percent must not exceed 100", e.ErrInvalidPricingRules)
	}

	clampNegative(r.Percent)
	clampNegative(r.Fixed)
	clampNegative(r.MinMargin)
	clampNegative(r.RoundTo)

	return nil
}

func clampNegative(v *float64) {
	if v != nil && *v < 0 {
		*v = 0
	}
}

// ComputePrice переводит закупочную цену в итоговую цену каталога по правилам наценки.
// Порядок: наценка по стратегии, нижняя граница minMargin, округление до roundTo,
// затем психологическая цена (floor - 1). Результат всегда целый и неотрицательный.
func ComputePrice(cost float64, rules *PricingRules) int64 {
	base := nonNegative(cost)
	if rules == nil {
		return floorNonNegative(base)
	}

	margin := rules.margin(base)
	if rules.MinMargin != nil {
		if floor := nonNegative(*rules.MinMargin); margin.LessThan(floor) {
			margin = floor
		}
	}

	price := base.Add(margin)

	if rules.RoundTo != nil && isFinite(*rules.RoundTo) && *rules.RoundTo > 0 {
		step := decimal.NewFromFloat(*rules.RoundTo)
		// Round(0) округляет половину от нуля, для неотрицательной цены это half-up
		price = price.Div(step).Round(0).Mul(step)
	}

	if rules.Psychological {
		price = price.Floor().Sub(decimal.NewFromInt(1))
	}

	return floorNonNegative(price)
}

func (r *PricingRules) margin(cost decimal.Decimal) decimal.Decimal {
	percentMargin := func() decimal.Decimal {
		if r.Percent == nil {
			return decimal.Zero
		}
		return cost.Mul(nonNegative(*r.Percent)).Div(decimal.NewFromInt(100))
	}
	fixedMargin := func() decimal.Decimal {
		if r.Fixed == nil {
			return decimal.Zero
		}
		return nonNegative(*r.Fixed)
	}

	switch r.Strategy {
	case StrategyPercent:
		return percentMargin()
	case StrategyFixed:
		return fixedMargin()
	case StrategyHybrid:
		return decimal.Max(percentMargin(), fixedMargin())
	default:
		return decimal.Zero
	}
}

func nonNegative(v float64) decimal.Decimal {
	if !isFinite(v) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func floorNonNegative(d decimal.Decimal) int64 {
	if d.IsNegative() {
		return 0
	}
	return d.Floor().IntPart()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
