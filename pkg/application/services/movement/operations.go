package movement

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/stockseed/pkg/application/services/plan"
	"github.com/vsinha/stockseed/pkg/application/services/seasonality"
	"github.com/vsinha/stockseed/pkg/domain/entities"
	"github.com/vsinha/stockseed/pkg/domain/repositories"
)

// inboundQtyRange is the per-receipt quantity band by category.
func inboundQtyRange(cat entities.Category) (float64, float64) {
	switch cat {
	case entities.CategorySeeds, entities.CategoryFertilizer:
		return 150, 600
	case entities.CategoryPesticides:
		return 20, 80
	case entities.CategoryTools, entities.CategorySpareParts:
		return 5, 25
	default:
		return 30, 120
	}
}

// outboundBaseRate is the typical daily consumption per category before
// seasonality scaling.
func outboundBaseRate(cat entities.Category) float64 {
	switch cat {
	case entities.CategorySeeds:
		return 40
	case entities.CategoryFertilizer:
		return 35
	case entities.CategoryPesticides:
		return 8
	case entities.CategoryTools:
		return 3
	case entities.CategorySpareParts:
		return 2
	default:
		return 15
	}
}

// damageRateRange is the daily GOOD → DAMAGED fraction band by category.
func damageRateRange(cat entities.Category) (float64, float64) {
	switch cat {
	case entities.CategorySeeds, entities.CategoryFertilizer:
		return 0.001, 0.003
	case entities.CategoryPackaging:
		return 0.002, 0.008
	default:
		return 0.0005, 0.002
	}
}

// orderSizeMultiplier skews outbound lines between trickle, typical and
// bulk pickups.
func orderSizeMultiplier(rng *rand.Rand) float64 {
	roll := rng.Float64()
	switch {
	case roll < 0.25:
		return 0.5
	case roll < 0.90:
		return 1.0
	default:
		return 2.5
	}
}

// operation is one fully planned movement awaiting backend I/O. Ledger
// effects are already applied when an operation is built; the backend
// side is dispatched through the worker pool.
type operation struct {
	origin      string
	kind        entities.MovementKind
	day         time.Time
	scheduledAt time.Time
	profile     *warehouseProfile
	product     entities.Product
	qtyReq      decimal.Decimal
	qtyDone     decimal.Decimal
	srcLoc      int64
	dstLoc      int64
	pickingType int64
	note        string
}

// planWarehouseDay draws every operation for one warehouse-day from a
// day-scoped RNG, then hands the backend work to the pool. The fixed
// sub-generator order (pending legs, inbound, internal, damage,
// outbound) is part of the deterministic contract.
func (g *Generator) planWarehouseDay(ctx context.Context, pool *keyedPool, p *warehouseProfile, day time.Time, dayIndex int) {
	rng := rand.New(rand.NewSource(plan.StableSeed(fmt.Sprintf(
		"%s/day/%s/%s/%s", g.cfg.Run.DatasetKey, g.cfg.Company.CountryCode, p.wh.Code, day.Format("2006-01-02")))))

	g.emitPendingLegs(ctx, pool, p, day)
	g.planInbound(ctx, pool, p, day, dayIndex, rng)
	g.planInternal(ctx, pool, p, day, rng)
	g.planDamage(ctx, pool, p, day, rng)
	g.planOutbound(ctx, pool, p, day, rng)
}

func (g *Generator) planInbound(ctx context.Context, pool *keyedPool, p *warehouseProfile, day time.Time, dayIndex int, rng *rand.Rand) {
	if len(p.goodLocs) == 0 || dayIndex%p.receiptInterval != p.receiptOffset%p.receiptInterval {
		return
	}

	// No Sunday receipts; the goods land Monday instead.
	receiptDay := day
	if receiptDay.Weekday() == time.Sunday {
		receiptDay = receiptDay.AddDate(0, 0, 1)
	}
	if rng.Float64() < supplierDelayChance {
		delay := supplierDelayMinDays + rng.Intn(supplierDelayMaxDays-supplierDelayMinDays+1)
		receiptDay = receiptDay.AddDate(0, 0, delay)
		if g.cfg.Anomalies != nil {
			g.cfg.Anomalies.RecordSupplierDelay(p.wh.Code, day, delay)
		}
	}

	lines := min(3+rng.Intn(6), len(p.activeSKUs))
	for i := 0; i < lines; i++ {
		product := p.activeSKUs[rng.Intn(len(p.activeSKUs))]
		mult := g.engine.Multiplier(seasonality.Context{
			CountryCode:   g.cfg.Company.CountryCode,
			Category:      product.Category,
			WarehouseCode: p.wh.Code,
			TierWeight:    p.wh.Tier.Weight(),
			SKU:           product.SKU,
			Kind:          entities.KindInbound,
			Day:           day,
		})
		lo, hi := inboundQtyRange(product.Category)
		qty := decimal.NewFromFloat((lo + rng.Float64()*(hi-lo)) * mult).Round(2)
		if !qty.IsPositive() {
			continue
		}

		dest := p.goodLocs[rng.Intn(len(p.goodLocs))]
		note := ""
		if vendors := g.vendorFor[product.Category]; len(vendors) > 0 {
			note = vendors[rng.Intn(len(vendors))].Name
		}

		// Stock lands when the receipt day arrives: immediately for
		// on-time receipts, deferred for delayed or Sunday-shifted ones.
		if receiptDay.After(day) {
			g.pendingCredits[receiptDay.Format("2006-01-02")] = append(
				g.pendingCredits[receiptDay.Format("2006-01-02")],
				pendingCredit{locationID: dest, sku: product.SKU, qty: qty})
		} else {
			g.ledger.Add(dest, product.SKU, qty)
		}

		g.emit(ctx, pool, operation{
			origin:      g.nextOrigin(p, product.SKU, entities.KindInbound, day),
			kind:        entities.KindInbound,
			day:         day,
			scheduledAt: receiptDay,
			profile:     p,
			product:     product,
			qtyReq:      qty,
			qtyDone:     qty,
			srcLoc:      g.cfg.SupplierLocationID,
			dstLoc:      dest,
			pickingType: p.wh.PickingTypeIn,
			note:        note,
		})
	}
}

// planInternal stages stock GOOD → TRANSIT today and schedules the
// TRANSIT → GOOD leg for tomorrow, capped at 85% of availability.
func (g *Generator) planInternal(ctx context.Context, pool *keyedPool, p *warehouseProfile, day time.Time, rng *rand.Rand) {
	if len(p.goodLocs) < 2 || len(p.transitLocs) == 0 {
		return
	}
	mult := seasonality.WeekdayMultiplier(entities.KindInternal, day)
	if rng.Float64() >= 0.2*p.wh.Tier.Weight()*mult {
		return
	}

	moves := 1 + rng.Intn(2)
	for i := 0; i < moves; i++ {
		product := p.activeSKUs[rng.Intn(len(p.activeSKUs))]
		from := p.goodLocs[rng.Intn(len(p.goodLocs))]
		to := p.goodLocs[rng.Intn(len(p.goodLocs))]
		if to == from {
			continue
		}
		transit := p.transitLocs[rng.Intn(len(p.transitLocs))]

		available := g.ledger.Available(from, product.SKU)
		want := available.Mul(decimal.NewFromFloat(0.2 + rng.Float64()*0.4))
		capped := available.Mul(decimal.NewFromFloat(0.85))
		want = decimal.Min(want, capped).Round(2)
		granted := g.ledger.Transfer(from, transit, product.SKU, want)
		if !granted.IsPositive() {
			continue
		}

		g.emit(ctx, pool, operation{
			origin:      g.nextOrigin(p, product.SKU, entities.KindInternal, day),
			kind:        entities.KindInternal,
			day:         day,
			scheduledAt: day,
			profile:     p,
			product:     product,
			qtyReq:      want,
			qtyDone:     granted,
			srcLoc:      from,
			dstLoc:      transit,
			pickingType: p.wh.PickingTypeInternal,
			note:        "staging",
		})

		nextDay := day.AddDate(0, 0, 1)
		g.pendingLegs[nextDay.Format("2006-01-02")] = append(
			g.pendingLegs[nextDay.Format("2006-01-02")],
			pendingLeg{profile: p, product: product, fromLoc: transit, toLoc: to, qty: granted})
	}
}

// emitPendingLegs completes yesterday's staging transfers.
func (g *Generator) emitPendingLegs(ctx context.Context, pool *keyedPool, p *warehouseProfile, day time.Time) {
	key := day.Format("2006-01-02")
	legs := g.pendingLegs[key]
	remaining := legs[:0]
	for _, leg := range legs {
		if leg.profile != p {
			remaining = append(remaining, leg)
			continue
		}
		granted := g.ledger.Transfer(leg.fromLoc, leg.toLoc, leg.product.SKU, leg.qty)
		if !granted.IsPositive() {
			continue
		}
		g.emit(ctx, pool, operation{
			origin:      g.nextOrigin(p, leg.product.SKU, entities.KindInternal, day),
			kind:        entities.KindInternal,
			day:         day,
			scheduledAt: day,
			profile:     p,
			product:     leg.product,
			qtyReq:      leg.qty,
			qtyDone:     granted,
			srcLoc:      leg.fromLoc,
			dstLoc:      leg.toLoc,
			pickingType: p.wh.PickingTypeInternal,
			note:        "staging completion",
		})
	}
	if len(remaining) == 0 {
		delete(g.pendingLegs, key)
	} else {
		g.pendingLegs[key] = remaining
	}
}

func (g *Generator) planDamage(ctx context.Context, pool *keyedPool, p *warehouseProfile, day time.Time, rng *rand.Rand) {
	if len(p.goodLocs) == 0 || len(p.damagedLocs) == 0 {
		return
	}
	if rng.Float64() >= 0.15 {
		return
	}

	writeOffs := 1 + rng.Intn(2)
	for i := 0; i < writeOffs; i++ {
		product := p.activeSKUs[rng.Intn(len(p.activeSKUs))]
		from := p.goodLocs[rng.Intn(len(p.goodLocs))]
		available := g.ledger.Available(from, product.SKU)
		if !available.IsPositive() {
			continue
		}

		mult := g.engine.Multiplier(seasonality.Context{
			CountryCode:   g.cfg.Company.CountryCode,
			Category:      product.Category,
			WarehouseCode: p.wh.Code,
			TierWeight:    p.wh.Tier.Weight(),
			SKU:           product.SKU,
			Kind:          entities.KindDamage,
			Day:           day,
		})
		lo, hi := damageRateRange(product.Category)
		rate := (lo + rng.Float64()*(hi-lo)) * mult
		want := available.Mul(decimal.NewFromFloat(rate)).Round(2)
		to := p.damagedLocs[rng.Intn(len(p.damagedLocs))]
		granted := g.ledger.Transfer(from, to, product.SKU, want)
		if !granted.IsPositive() {
			continue
		}

		g.emit(ctx, pool, operation{
			origin:      g.nextOrigin(p, product.SKU, entities.KindDamage, day),
			kind:        entities.KindDamage,
			day:         day,
			scheduledAt: day,
			profile:     p,
			product:     product,
			qtyReq:      want,
			qtyDone:     granted,
			srcLoc:      from,
			dstLoc:      to,
			pickingType: p.wh.PickingTypeInternal,
			note:        "damage write-off",
		})
	}
}

func (g *Generator) planOutbound(ctx context.Context, pool *keyedPool, p *warehouseProfile, day time.Time, rng *rand.Rand) {
	if len(p.goodLocs) == 0 {
		return
	}
	if rng.Float64() >= min(0.85*p.wh.Tier.Weight(), 1.0) {
		return
	}

	lines := 1 + rng.Intn(4)
	for i := 0; i < lines; i++ {
		product := p.activeSKUs[rng.Intn(len(p.activeSKUs))]
		mult := g.engine.Multiplier(seasonality.Context{
			CountryCode:   g.cfg.Company.CountryCode,
			Category:      product.Category,
			WarehouseCode: p.wh.Code,
			TierWeight:    p.wh.Tier.Weight(),
			SKU:           product.SKU,
			Kind:          entities.KindOutbound,
			Day:           day,
		})
		intensity := seasonality.DemandIntensity(rng)
		want := decimal.NewFromFloat(
			outboundBaseRate(product.Category) * intensity * orderSizeMultiplier(rng) * mult).Round(2)
		if !want.IsPositive() {
			continue
		}

		// Partial fulfilment: ship what the shelf holds, never more.
		from := p.goodLocs[rng.Intn(len(p.goodLocs))]
		granted := g.ledger.Take(from, product.SKU, want)
		if !granted.IsPositive() {
			continue
		}
		g.trackOutbound(product.SKU, granted, day)

		g.emit(ctx, pool, operation{
			origin:      g.nextOrigin(p, product.SKU, entities.KindOutbound, day),
			kind:        entities.KindOutbound,
			day:         day,
			scheduledAt: day,
			profile:     p,
			product:     product,
			qtyReq:      want,
			qtyDone:     granted,
			srcLoc:      from,
			dstLoc:      g.cfg.CustomerLocationID,
			pickingType: p.wh.PickingTypeOut,
			note:        "field sale",
		})
	}
}

// emit records the operation's output rows synchronously, then hands the
// backend work to the pool keyed by warehouse+SKU so operations on one
// stock line stay ordered.
func (g *Generator) emit(ctx context.Context, pool *keyedPool, op operation) {
	company := g.cfg.Company
	g.pickings = append(g.pickings, entities.PickingRecord{
		Origin:           op.origin,
		DatasetKey:       g.cfg.Run.DatasetKey,
		Day:              op.day,
		Company:          company.Name,
		Warehouse:        op.profile.wh.Code,
		Kind:             op.kind,
		SKU:              op.product.SKU,
		ScheduledAt:      op.scheduledAt,
		SourceLocationID: op.srcLoc,
		DestLocationID:   op.dstLoc,
		Note:             op.note,
	})
	g.moves = append(g.moves, entities.MoveRecord{
		Origin:           op.origin,
		DatasetKey:       g.cfg.Run.DatasetKey,
		Day:              op.day,
		Company:          company.Name,
		Warehouse:        op.profile.wh.Code,
		Kind:             op.kind,
		SKU:              op.product.SKU,
		ProductName:      op.product.Name,
		Category:         op.product.Category,
		QtyRequested:     op.qtyReq,
		QtyDone:          op.qtyDone,
		UoM:              op.product.UoMName,
		SourceLocationID: op.srcLoc,
		DestLocationID:   op.dstLoc,
		Note:             op.note,
	})

	if g.cfg.Run.DryRun {
		g.recordResult(op.kind, entities.ResultCreated)
		return
	}
	pool.submit(op.profile.wh.Code+"/"+op.product.SKU, func() {
		g.execute(ctx, op)
	})
}

// execute performs the idempotency lookup, creation and state-machine
// walk for one operation. Failures are recorded and never abort the run.
func (g *Generator) execute(ctx context.Context, op operation) {
	existing, err := g.cfg.Backend.SearchRead(ctx, "stock.picking",
		[]repositories.Condition{repositories.Eq("origin", op.origin)},
		repositories.SearchOptions{Fields: []string{"id", "state"}, Limit: 1, CompanyID: g.cfg.Company.ID})
	if err != nil {
		g.recordFailure(op.kind, op.origin, fmt.Errorf("origin lookup failed: %w", err))
		return
	}
	if len(existing) > 0 {
		if state := existing[0].Str("state"); state != "done" {
			g.cfg.Run.Log().WithFields(map[string]any{
				"origin": op.origin, "state": state,
			}).Warn("existing record in unexpected state, skipping")
			g.recordResult(op.kind, entities.ResultSkipped)
			return
		}
		g.recordResult(op.kind, entities.ResultExisting)
		return
	}

	if err := g.createAndValidate(ctx, op); err != nil {
		g.recordFailure(op.kind, op.origin, err)
		return
	}
	g.recordResult(op.kind, entities.ResultCreated)
}

func (g *Generator) createAndValidate(ctx context.Context, op operation) error {
	companyID := g.cfg.Company.ID
	scheduled := op.scheduledAt.Format("2006-01-02") + " 08:00:00"

	pickingID, err := g.cfg.Backend.Create(ctx, "stock.picking", repositories.Record{
		"picking_type_id":  op.pickingType,
		"location_id":      op.srcLoc,
		"location_dest_id": op.dstLoc,
		"origin":           op.origin,
		"scheduled_date":   scheduled,
		"company_id":       companyID,
	}, companyID)
	if err != nil {
		return fmt.Errorf("picking create failed: %w", err)
	}

	qty, _ := op.qtyDone.Float64()
	if _, err := g.cfg.Backend.Create(ctx, "stock.move", repositories.Record{
		"name":             op.product.Name,
		"picking_id":       pickingID,
		"product_id":       op.product.VariantID,
		"product_uom":      op.product.UoMID,
		"product_uom_qty":  qty,
		"location_id":      op.srcLoc,
		"location_dest_id": op.dstLoc,
		"company_id":       companyID,
	}, companyID); err != nil {
		return fmt.Errorf("move create failed: %w", err)
	}

	for _, method := range []string{"action_confirm", "action_assign", "button_validate"} {
		if _, err := g.cfg.Backend.Invoke(ctx, "stock.picking", method, []int64{pickingID}, nil, companyID); err != nil {
			return fmt.Errorf("%s failed: %w", method, err)
		}
	}

	// Backdate completion into the historical day.
	done := op.scheduledAt.Format("2006-01-02") + " 16:30:00"
	if err := g.cfg.Backend.Write(ctx, "stock.picking", []int64{pickingID},
		repositories.Record{"date_done": done}, companyID); err != nil {
		return fmt.Errorf("backdating failed: %w", err)
	}
	return nil
}
