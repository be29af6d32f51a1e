package seasonality

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

const dayKeyFormat = "2006-01-02"

// AnomalyPlan holds the disruption windows chosen for one company's run.
// Planning draws only from the seeded RNG, so the same dataset key
// reproduces the identical plan.
type AnomalyPlan struct {
	Company string

	SpikeDays       map[string]bool
	ShrinkWarehouse string
	ShrinkDays      map[string]bool
	StockoutSKUs    map[string]bool
	StockoutDays    map[string]bool

	Events []entities.AnomalyEvent
}

// Anomaly tuning knobs.
const (
	spikeMultiplier         = 2.5
	shrinkageMultiplier     = 6.0
	stockoutOutboundFactor  = 2.8
	stockoutInboundFactor   = 0.35
	stockoutWindowDays      = 10
	stockoutAffectedSKUs    = 4
	shrinkWindowMinDays     = 3
	shrinkWindowMaxDays     = 5
	spikeMinDays            = 1
	spikeMaxDays            = 3
)

// PlanAnomalies selects demand spikes, one shrinkage window, and a
// controlled stockout for the given day range. Every activation is
// recorded as an AnomalyEvent for reporting.
func PlanAnomalies(rng *rand.Rand, company string, days []time.Time, products []entities.Product, warehouses []entities.Warehouse) *AnomalyPlan {
	p := &AnomalyPlan{
		Company:      company,
		SpikeDays:    map[string]bool{},
		ShrinkDays:   map[string]bool{},
		StockoutSKUs: map[string]bool{},
		StockoutDays: map[string]bool{},
	}
	if len(days) == 0 {
		return p
	}

	p.planDemandSpikes(rng, days)
	p.planShrinkage(rng, days, warehouses)
	p.planStockout(rng, days, products)
	return p
}

func (p *AnomalyPlan) planDemandSpikes(rng *rand.Rand, days []time.Time) {
	n := min(len(days), spikeMinDays+rng.Intn(spikeMaxDays-spikeMinDays+1))
	for _, i := range rng.Perm(len(days))[:n] {
		d := days[i]
		p.SpikeDays[d.Format(dayKeyFormat)] = true
		p.Events = append(p.Events, entities.AnomalyEvent{
			Kind:    entities.AnomalyDemandSpike,
			Company: p.Company,
			Detail:  fmt.Sprintf("Demand spike multiplier %.1fx on %s", spikeMultiplier, d.Format(dayKeyFormat)),
			Start:   d,
			End:     d,
		})
	}
}

func (p *AnomalyPlan) planShrinkage(rng *rand.Rand, days []time.Time, warehouses []entities.Warehouse) {
	if len(warehouses) == 0 {
		return
	}
	wh := warehouses[rng.Intn(len(warehouses))]
	start := days[rng.Intn(len(days))]
	length := shrinkWindowMinDays + rng.Intn(shrinkWindowMaxDays-shrinkWindowMinDays+1)

	last := days[len(days)-1]
	end := start
	for i := 0; i < length; i++ {
		d := start.AddDate(0, 0, i)
		if d.After(last) {
			break
		}
		p.ShrinkDays[d.Format(dayKeyFormat)] = true
		end = d
	}
	if len(p.ShrinkDays) == 0 {
		return
	}
	p.ShrinkWarehouse = wh.Code
	p.Events = append(p.Events, entities.AnomalyEvent{
		Kind:    entities.AnomalyShrinkage,
		Company: p.Company,
		Detail:  fmt.Sprintf("Shrinkage event at %s for %d days starting %s", wh.Code, len(p.ShrinkDays), start.Format(dayKeyFormat)),
		Start:   start,
		End:     end,
	})
}

func (p *AnomalyPlan) planStockout(rng *rand.Rand, days []time.Time, products []entities.Product) {
	if len(products) == 0 {
		return
	}
	n := min(stockoutAffectedSKUs, len(products))
	affected := make([]string, 0, n)
	for _, i := range rng.Perm(len(products))[:n] {
		p.StockoutSKUs[products[i].SKU] = true
		affected = append(affected, products[i].SKU)
	}

	start := days[rng.Intn(len(days))]
	last := days[len(days)-1]
	end := start
	for i := 0; i < stockoutWindowDays; i++ {
		d := start.AddDate(0, 0, i)
		if d.After(last) {
			break
		}
		p.StockoutDays[d.Format(dayKeyFormat)] = true
		end = d
	}
	if len(p.StockoutDays) == 0 {
		return
	}
	p.Events = append(p.Events, entities.AnomalyEvent{
		Kind:    entities.AnomalyStockoutPressure,
		Company: p.Company,
		Detail:  fmt.Sprintf("Elevated outbound for SKUs %v for %d days from %s", affected, len(p.StockoutDays), start.Format(dayKeyFormat)),
		Start:   start,
		End:     end,
	})
}

// IsSpikeDay reports whether outbound demand spikes on the day.
func (p *AnomalyPlan) IsSpikeDay(day time.Time) bool {
	return p.SpikeDays[day.Format(dayKeyFormat)]
}

// InShrinkWindow reports whether the warehouse is inside its shrinkage
// window on the day.
func (p *AnomalyPlan) InShrinkWindow(warehouseCode string, day time.Time) bool {
	return warehouseCode == p.ShrinkWarehouse && p.ShrinkDays[day.Format(dayKeyFormat)]
}

// UnderStockoutPressure reports whether the SKU is squeezed on the day.
func (p *AnomalyPlan) UnderStockoutPressure(sku string, day time.Time) bool {
	return p.StockoutSKUs[sku] && p.StockoutDays[day.Format(dayKeyFormat)]
}

// RecordSupplierDelay appends a supplier-delay event; the delay itself is
// applied by the inbound generator shifting the receipt day.
func (p *AnomalyPlan) RecordSupplierDelay(warehouseCode string, planned time.Time, delayDays int) {
	p.Events = append(p.Events, entities.AnomalyEvent{
		Kind:    entities.AnomalySupplierDelay,
		Company: p.Company,
		Detail:  fmt.Sprintf("Inbound delayed %dd for %s originally %s", delayDays, warehouseCode, planned.Format(dayKeyFormat)),
		Start:   planned,
		End:     planned.AddDate(0, 0, delayDays),
	})
}
