package movement

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vsinha/stockseed/pkg/application/dto"
	"github.com/vsinha/stockseed/pkg/domain/entities"
)

const topN = 10

// Summarize aggregates the run outcome for the console report: counts by
// kind and result, the top outbound SKUs, and the SKUs closest to running
// dry at the trailing 30-day outbound rate.
func (g *Generator) Summarize() *dto.CompanySummary {
	g.mu.Lock()
	counts := make(map[string]int, len(g.counts))
	for k, v := range g.counts {
		counts[k] = v
	}
	failures := make([]dto.FailedOperation, len(g.failures))
	copy(failures, g.failures)
	g.mu.Unlock()

	return &dto.CompanySummary{
		Company:          g.cfg.Company.Name,
		Counts:           counts,
		TopOutboundSKUs:  g.topOutbound(),
		LowestDaysCover:  g.lowestDaysCover(),
		Anomalies:        g.cfg.Anomalies.Events,
		FailedOperations: failures,
	}
}

func (g *Generator) topOutbound() []dto.SKUQuantity {
	ranked := make([]dto.SKUQuantity, 0, len(g.outboundTotal))
	for sku, qty := range g.outboundTotal {
		ranked = append(ranked, dto.SKUQuantity{SKU: sku, Qty: qty})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Qty.Equal(ranked[j].Qty) {
			return ranked[i].Qty.GreaterThan(ranked[j].Qty)
		}
		return ranked[i].SKU < ranked[j].SKU
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// lowestDaysCover divides ending GOOD stock by the trailing 30-day
// outbound rate; SKUs with no recent outbound are not at risk and are
// left out.
func (g *Generator) lowestDaysCover() []dto.DaysOfCover {
	var goodLocs []int64
	for _, wh := range g.cfg.Company.Warehouses {
		goodLocs = append(goodLocs, g.cfg.Company.LocationsByRole(wh.Code, entities.RoleGood)...)
	}

	thirty := decimal.NewFromInt(30)
	var cover []dto.DaysOfCover
	for sku, recent := range g.recentOutbound {
		if !recent.IsPositive() {
			continue
		}
		rate := recent.Div(thirty)
		stock := g.ledger.SumLocations(sku, goodLocs)
		days, _ := stock.Div(rate).Float64()
		cover = append(cover, dto.DaysOfCover{SKU: sku, Days: days, Stock: stock, OutRate: rate})
	}
	sort.Slice(cover, func(i, j int) bool {
		if cover[i].Days != cover[j].Days {
			return cover[i].Days < cover[j].Days
		}
		return cover[i].SKU < cover[j].SKU
	})
	if len(cover) > topN {
		cover = cover[:topN]
	}
	return cover
}
