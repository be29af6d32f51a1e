package seasonality

import (
	"time"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

// Context carries everything one multiplier evaluation depends on.
type Context struct {
	CountryCode   string
	Category      entities.Category
	WarehouseCode string
	TierWeight    float64
	SKU           string
	Kind          entities.MovementKind
	Day           time.Time
}

// Stage is one pure transform in the multiplier pipeline.
type Stage func(ctx Context, signal float64) float64

// Engine evaluates the multiplier as an ordered pipeline of stages:
// seasonal base, weekday pattern, warehouse tier, then any anomaly
// stages gated by their time-window predicates.
type Engine struct {
	stages []Stage
}

// NewEngine builds the pipeline. A nil plan yields the baseline signal.
func NewEngine(anomalies *AnomalyPlan) *Engine {
	stages := []Stage{
		func(ctx Context, s float64) float64 {
			return s * SeasonalMultiplier(ctx.CountryCode, ctx.Category, ctx.Day)
		},
		func(ctx Context, s float64) float64 {
			return s * WeekdayMultiplier(ctx.Kind, ctx.Day)
		},
		func(ctx Context, s float64) float64 {
			if ctx.TierWeight > 0 {
				return s * ctx.TierWeight
			}
			return s
		},
	}
	if anomalies != nil {
		stages = append(stages, anomalies.stages()...)
	}
	return &Engine{stages: stages}
}

// Multiplier runs the pipeline over a unit signal and clamps the result
// to a nonnegative floor. Zero means zero transactions for the scope,
// never an error.
func (e *Engine) Multiplier(ctx Context) float64 {
	signal := 1.0
	for _, stage := range e.stages {
		signal = stage(ctx, signal)
	}
	return max(0, signal)
}

// stages returns the anomaly transforms, each a no-op outside its window.
func (p *AnomalyPlan) stages() []Stage {
	return []Stage{
		// Demand spike multiplies the outbound signal.
		func(ctx Context, s float64) float64 {
			if (ctx.Kind == entities.KindOutbound || ctx.Kind == entities.KindSale) && p.IsSpikeDay(ctx.Day) {
				return s * spikeMultiplier
			}
			return s
		},
		// Shrinkage elevates GOOD→DAMAGED volume at one warehouse.
		func(ctx Context, s float64) float64 {
			if ctx.Kind == entities.KindDamage && p.InShrinkWindow(ctx.WarehouseCode, ctx.Day) {
				return s * shrinkageMultiplier
			}
			return s
		},
		// Stockout pressure: outbound up, inbound suppressed, per SKU.
		func(ctx Context, s float64) float64 {
			if !p.UnderStockoutPressure(ctx.SKU, ctx.Day) {
				return s
			}
			switch ctx.Kind {
			case entities.KindOutbound, entities.KindSale:
				return s * stockoutOutboundFactor
			case entities.KindInbound, entities.KindPurchase:
				return s * stockoutInboundFactor
			}
			return s
		},
	}
}
