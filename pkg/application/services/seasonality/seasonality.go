package seasonality

import (
	"math/rand"
	"time"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

// Season marks the start of one agricultural demand window within a year.
type Season struct {
	Name       string
	StartMonth time.Month
	StartDay   int
}

// countrySeasons holds two seasonal pulses per supported country.
var countrySeasons = map[string][]Season{
	"rw": {{Name: "A", StartMonth: time.February, StartDay: 10}, {Name: "B", StartMonth: time.September, StartDay: 10}},
	"ke": {{Name: "Long", StartMonth: time.March, StartDay: 15}, {Name: "Short", StartMonth: time.October, StartDay: 10}},
	"ug": {{Name: "1", StartMonth: time.March, StartDay: 15}, {Name: "2", StartMonth: time.September, StartDay: 10}},
}

// CategoryCurve shifts and scales the seasonal pulse per product category.
// Lag expresses that e.g. fertilizer demand trails seed demand.
type CategoryCurve struct {
	LagDays   int
	Amplitude float64
	RampDays  int
	PeakDays  int
	DecayDays int
}

var categoryCurves = map[entities.Category]CategoryCurve{
	entities.CategorySeeds:      {LagDays: 0, Amplitude: 2.2, RampDays: 14, PeakDays: 28, DecayDays: 14},
	entities.CategoryFertilizer: {LagDays: 18, Amplitude: 1.6, RampDays: 14, PeakDays: 28, DecayDays: 14},
	entities.CategoryPesticides: {LagDays: 35, Amplitude: 1.2, RampDays: 10, PeakDays: 28, DecayDays: 10},
	entities.CategoryTools:      {LagDays: 7, Amplitude: 0.35, RampDays: 10, PeakDays: 35, DecayDays: 10},
	entities.CategorySpareParts: {LagDays: 7, Amplitude: 0.30, RampDays: 10, PeakDays: 35, DecayDays: 10},
	entities.CategoryPackaging:  {LagDays: 75, Amplitude: 0.9, RampDays: 14, PeakDays: 28, DecayDays: 14},
}

// piecewisePulse ramps 0→1, holds the peak, then decays back to 0.
func piecewisePulse(daysSinceStart int, curve CategoryCurve) float64 {
	switch {
	case daysSinceStart < 0:
		return 0
	case daysSinceStart <= curve.RampDays:
		return float64(daysSinceStart) / float64(max(curve.RampDays, 1))
	case daysSinceStart <= curve.RampDays+curve.PeakDays:
		return 1
	case daysSinceStart <= curve.RampDays+curve.PeakDays+curve.DecayDays:
		t := daysSinceStart - curve.RampDays - curve.PeakDays
		return max(0, 1-float64(t)/float64(max(curve.DecayDays, 1)))
	default:
		return 0
	}
}

func seasonStart(s Season, year int) time.Time {
	return time.Date(year, s.StartMonth, s.StartDay, 0, 0, 0, 0, time.UTC)
}

// SeasonalMultiplier is the pure base signal: 1.0 plus the category's
// seasonal lift for the day. The previous year's seasons also contribute
// so January dates see the tail of the prior pulse.
func SeasonalMultiplier(countryCode string, category entities.Category, day time.Time) float64 {
	seasons, ok := countrySeasons[countryCode]
	if !ok {
		return 1
	}
	curve := categoryCurves[category]

	pulses := 0.0
	for _, s := range seasons {
		for _, start := range []time.Time{seasonStart(s, day.Year()), seasonStart(s, day.Year()-1)} {
			d := int(day.Sub(start).Hours()/24) - curve.LagDays
			pulses += piecewisePulse(d, curve)
		}
	}
	return 1 + curve.Amplitude*min(pulses, 1.25)
}

// WeekdayMultiplier applies the operational day-of-week pattern for a
// movement kind. Rest days suppress outbound and inbound volume.
func WeekdayMultiplier(kind entities.MovementKind, day time.Time) float64 {
	wd := day.Weekday()
	switch kind {
	case entities.KindOutbound, entities.KindSale:
		switch wd {
		case time.Sunday:
			return 0.15
		case time.Saturday:
			return 0.65
		default:
			return 1.0
		}
	case entities.KindInbound, entities.KindPurchase:
		if wd == time.Saturday || wd == time.Sunday {
			return 0.25
		}
		return 1.0
	case entities.KindInternal:
		switch wd {
		case time.Tuesday, time.Wednesday, time.Thursday:
			return 1.2
		case time.Sunday:
			return 0.4
		default:
			return 0.9
		}
	default:
		return 1.0
	}
}

// DemandIntensity is the small seeded noise on outbound demand so no two
// weeks look identical. Seasonal and weekday scaling is applied once, by
// the multiplier pipeline.
func DemandIntensity(rng *rand.Rand) float64 {
	return 0.9 + 0.2*rng.Float64()
}

// BoundedNormal draws a lightly bounded normal sample so outliers never
// dominate quantities.
func BoundedNormal(mean, stdev float64, rng *rand.Rand) float64 {
	val := rng.NormFloat64()*stdev + mean
	return max(0, min(val, mean+4*stdev))
}
