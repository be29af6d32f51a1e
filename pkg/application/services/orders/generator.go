// Package orders replays the window as purchase and sales order
// documents instead of raw stock movements: each order is created,
// confirmed, and later marked received or delivered once its seeded
// lead time elapses. A deadline-ordered queue drains the due
// receipts/deliveries at every day boundary and flushes at window end.
package orders

import (
	"container/heap"
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/stockseed/pkg/application/dto"
	"github.com/vsinha/stockseed/pkg/application/services/plan"
	"github.com/vsinha/stockseed/pkg/application/services/seasonality"
	"github.com/vsinha/stockseed/pkg/domain/entities"
	"github.com/vsinha/stockseed/pkg/domain/repositories"
)

const (
	purchaseChancePerDay = 0.4

	poLeadMinDays = 1
	poLeadMaxDays = 7
	poDelayChance = 0.1
	poDelayExtra  = 15

	soLeadMaxDays = 3

	scrapChancePerDay = 0.5
	scrapQtyMax       = 14
)

// Config wires an order generator to one company's master data and run.
type Config struct {
	Backend  repositories.InventoryBackend
	Run      dto.RunContext
	Company  *entities.Company
	Products []entities.Product
	Vendors  []entities.Vendor
	Scale    entities.Scale

	Anomalies *seasonality.AnomalyPlan
}

// Generator emits one company's order history for a date range.
type Generator struct {
	cfg    Config
	engine *seasonality.Engine
	queue  actionQueue
	seq    map[string]int

	mu       sync.Mutex
	pickings []entities.PickingRecord
	moves    []entities.MoveRecord
	counts   map[string]int
	failures []dto.FailedOperation
}

// NewGenerator builds an order generator.
func NewGenerator(cfg Config) *Generator {
	g := &Generator{
		cfg:    cfg,
		engine: seasonality.NewEngine(cfg.Anomalies),
		seq:    make(map[string]int),
		counts: make(map[string]int),
	}
	heap.Init(&g.queue)
	return g
}

// Pickings returns every emitted order document record.
func (g *Generator) Pickings() []entities.PickingRecord {
	return g.pickings
}

// Moves returns every emitted order line record.
func (g *Generator) Moves() []entities.MoveRecord {
	return g.moves
}

// Run replays the window day by day, then flushes deferred receipts and
// deliveries whose lead times reach past the window end.
func (g *Generator) Run(ctx context.Context, window plan.DateRange) error {
	log := g.cfg.Run.Log().WithField("company", g.cfg.Company.Name)
	log.WithFields(logrus.Fields{
		"from": window.Start.Format("2006-01-02"),
		"to":   window.End.Format("2006-01-02"),
	}).Info("generating orders")

	for _, day := range window.Days() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run aborted at %s: %w", day.Format("2006-01-02"), err)
		}

		g.drainDue(ctx, day)
		rng := rand.New(rand.NewSource(plan.StableSeed(fmt.Sprintf(
			"%s/orders/%s/%s", g.cfg.Run.DatasetKey, g.cfg.Company.CountryCode, day.Format("2006-01-02")))))
		g.planPurchases(ctx, day, rng)
		g.planSales(ctx, day, rng)
		g.planShrinkage(ctx, day, rng)
	}

	g.drainDue(ctx, time.Time{})
	return nil
}

// planPurchases raises at most a handful of purchase orders per day,
// suppressed entirely inside stockout (purchasing-halt) windows.
func (g *Generator) planPurchases(ctx context.Context, day time.Time, rng *rand.Rand) {
	if rng.Float64() >= purchaseChancePerDay || len(g.cfg.Vendors) == 0 {
		return
	}

	wh := g.cfg.Company.Warehouses[rng.Intn(len(g.cfg.Company.Warehouses))]
	product := g.cfg.Products[rng.Intn(len(g.cfg.Products))]
	if g.cfg.Anomalies.UnderStockoutPressure(product.SKU, day) {
		g.record(entities.KindPurchase, entities.ResultSkipped)
		g.cfg.Run.Log().WithField("sku", product.SKU).Warn("purchasing halted under stockout pressure")
		return
	}

	vendor := g.vendorFor(product.Category, rng)
	lead := poLeadMinDays + rng.Intn(poLeadMaxDays-poLeadMinDays+1)
	if rng.Float64() < poDelayChance {
		lead += poDelayExtra
		g.cfg.Anomalies.RecordSupplierDelay(wh.Code, day, poDelayExtra)
	}

	mult := g.multiplier(product, wh, entities.KindPurchase, day)
	qty := decimal.NewFromFloat((50 + rng.Float64()*250) * mult).Round(2)
	if !qty.IsPositive() {
		return
	}

	origin := g.nextOrigin(wh.Code, product.SKU, entities.KindPurchase, day)
	g.emitOrder(ctx, orderDoc{
		origin:   origin,
		kind:     entities.KindPurchase,
		model:    "purchase.order",
		line:     "purchase.order.line",
		confirm:  "button_confirm",
		complete: "button_done",
		day:      day,
		due:      day.AddDate(0, 0, lead),
		wh:       wh,
		product:  product,
		qty:      qty,
		partner:  vendor.ID,
		note:     vendor.Name,
	})
}

// planSales raises the scale-dependent daily sales order volume.
func (g *Generator) planSales(ctx context.Context, day time.Time, rng *rand.Rand) {
	volume := g.cfg.Scale.DailyOrderVolume()
	for i := 0; i < volume; i++ {
		wh := g.cfg.Company.Warehouses[rng.Intn(len(g.cfg.Company.Warehouses))]
		product := g.cfg.Products[rng.Intn(len(g.cfg.Products))]

		mult := g.multiplier(product, wh, entities.KindSale, day)
		qty := decimal.NewFromFloat((1 + rng.Float64()*20) * mult).Round(2)
		if !qty.IsPositive() {
			continue
		}

		origin := g.nextOrigin(wh.Code, product.SKU, entities.KindSale, day)
		g.emitOrder(ctx, orderDoc{
			origin:   origin,
			kind:     entities.KindSale,
			model:    "sale.order",
			line:     "sale.order.line",
			confirm:  "action_confirm",
			complete: "action_done",
			day:      day,
			due:      day.AddDate(0, 0, rng.Intn(soLeadMaxDays+1)),
			wh:       wh,
			product:  product,
			qty:      qty,
			partner:  g.cfg.Company.CustomerID,
			note:     "field sale order",
		})
	}
}

// planShrinkage writes off stock as scrap documents while a warehouse
// sits inside its shrinkage window.
func (g *Generator) planShrinkage(ctx context.Context, day time.Time, rng *rand.Rand) {
	if g.cfg.Anomalies == nil {
		return
	}
	for _, wh := range g.cfg.Company.Warehouses {
		if !g.cfg.Anomalies.InShrinkWindow(wh.Code, day) {
			continue
		}
		if rng.Float64() >= scrapChancePerDay {
			continue
		}
		product := g.cfg.Products[rng.Intn(len(g.cfg.Products))]
		qty := decimal.NewFromFloat(1 + rng.Float64()*scrapQtyMax).Round(2)

		var loc int64
		if good := g.cfg.Company.LocationsByRole(wh.Code, entities.RoleGood); len(good) > 0 {
			loc = good[rng.Intn(len(good))]
		}
		g.emitScrap(ctx, day, wh, product, qty, loc)
	}
}

// emitScrap creates and validates one backdated stock.scrap document.
func (g *Generator) emitScrap(ctx context.Context, day time.Time, wh entities.Warehouse, product entities.Product, qty decimal.Decimal, locationID int64) {
	company := g.cfg.Company
	origin := g.nextOrigin(wh.Code, product.SKU, entities.KindDamage, day)

	g.pickings = append(g.pickings, entities.PickingRecord{
		Origin:      origin,
		DatasetKey:  g.cfg.Run.DatasetKey,
		Day:         day,
		Company:     company.Name,
		Warehouse:   wh.Code,
		Kind:        entities.KindDamage,
		SKU:         product.SKU,
		ScheduledAt: day,
		Note:        "shrinkage scrap",
	})
	g.moves = append(g.moves, entities.MoveRecord{
		Origin:       origin,
		DatasetKey:   g.cfg.Run.DatasetKey,
		Day:          day,
		Company:      company.Name,
		Warehouse:    wh.Code,
		Kind:         entities.KindDamage,
		SKU:          product.SKU,
		ProductName:  product.Name,
		Category:     product.Category,
		QtyRequested: qty,
		QtyDone:      qty,
		UoM:          product.UoMName,
		Note:         "shrinkage scrap",
	})

	if g.cfg.Run.DryRun {
		g.record(entities.KindDamage, entities.ResultCreated)
		return
	}

	existing, err := g.cfg.Backend.SearchRead(ctx, "stock.scrap",
		[]repositories.Condition{repositories.Eq("origin", origin)},
		repositories.SearchOptions{Fields: []string{"id", "state"}, Limit: 1, CompanyID: company.ID})
	if err != nil {
		g.fail(entities.KindDamage, origin, fmt.Errorf("origin lookup failed: %w", err))
		return
	}
	if len(existing) > 0 {
		g.record(entities.KindDamage, entities.ResultExisting)
		return
	}

	scrapQty, _ := qty.Float64()
	id, err := g.cfg.Backend.Create(ctx, "stock.scrap", repositories.Record{
		"product_id":     product.VariantID,
		"scrap_qty":      scrapQty,
		"product_uom_id": product.UoMID,
		"location_id":    locationID,
		"origin":         origin,
		"company_id":     company.ID,
	}, company.ID)
	if err != nil {
		g.fail(entities.KindDamage, origin, fmt.Errorf("scrap create failed: %w", err))
		return
	}
	if _, err := g.cfg.Backend.Invoke(ctx, "stock.scrap", "action_validate", []int64{id}, nil, company.ID); err != nil {
		g.fail(entities.KindDamage, origin, fmt.Errorf("action_validate failed: %w", err))
		return
	}
	if err := g.cfg.Backend.Write(ctx, "stock.scrap", []int64{id},
		repositories.Record{"date_done": day.Format("2006-01-02") + " 16:30:00"}, company.ID); err != nil {
		g.fail(entities.KindDamage, origin, fmt.Errorf("scrap backdate failed: %w", err))
		return
	}
	g.record(entities.KindDamage, entities.ResultCreated)
}

func (g *Generator) multiplier(product entities.Product, wh entities.Warehouse, kind entities.MovementKind, day time.Time) float64 {
	return g.engine.Multiplier(seasonality.Context{
		CountryCode:   g.cfg.Company.CountryCode,
		Category:      product.Category,
		WarehouseCode: wh.Code,
		TierWeight:    wh.Tier.Weight(),
		SKU:           product.SKU,
		Kind:          kind,
		Day:           day,
	})
}

func (g *Generator) vendorFor(cat entities.Category, rng *rand.Rand) entities.Vendor {
	var pool []entities.Vendor
	for _, v := range g.cfg.Vendors {
		for _, c := range v.Categories {
			if c == cat {
				pool = append(pool, v)
				break
			}
		}
	}
	if len(pool) == 0 {
		pool = g.cfg.Vendors
	}
	return pool[rng.Intn(len(pool))]
}

// orderDoc is one fully planned order awaiting backend I/O.
type orderDoc struct {
	origin   string
	kind     entities.MovementKind
	model    string
	line     string
	confirm  string
	complete string
	day      time.Time
	due      time.Time
	wh       entities.Warehouse
	product  entities.Product
	qty      decimal.Decimal
	partner  int64
	note     string
}

// emitOrder records the output rows, performs the idempotency lookup,
// creates and confirms the document, and queues its completion.
func (g *Generator) emitOrder(ctx context.Context, doc orderDoc) {
	company := g.cfg.Company
	g.pickings = append(g.pickings, entities.PickingRecord{
		Origin:      doc.origin,
		DatasetKey:  g.cfg.Run.DatasetKey,
		Day:         doc.day,
		Company:     company.Name,
		Warehouse:   doc.wh.Code,
		Kind:        doc.kind,
		SKU:         doc.product.SKU,
		ScheduledAt: doc.due,
		Note:        doc.note,
	})
	g.moves = append(g.moves, entities.MoveRecord{
		Origin:       doc.origin,
		DatasetKey:   g.cfg.Run.DatasetKey,
		Day:          doc.day,
		Company:      company.Name,
		Warehouse:    doc.wh.Code,
		Kind:         doc.kind,
		SKU:          doc.product.SKU,
		ProductName:  doc.product.Name,
		Category:     doc.product.Category,
		QtyRequested: doc.qty,
		QtyDone:      doc.qty,
		UoM:          doc.product.UoMName,
		Note:         doc.note,
	})

	if g.cfg.Run.DryRun {
		g.record(doc.kind, entities.ResultCreated)
		return
	}

	existing, err := g.cfg.Backend.SearchRead(ctx, doc.model,
		[]repositories.Condition{repositories.Eq("origin", doc.origin)},
		repositories.SearchOptions{Fields: []string{"id", "state"}, Limit: 1, CompanyID: company.ID})
	if err != nil {
		g.fail(doc.kind, doc.origin, fmt.Errorf("origin lookup failed: %w", err))
		return
	}
	if len(existing) > 0 {
		g.record(doc.kind, entities.ResultExisting)
		return
	}

	id, err := g.createAndConfirm(ctx, doc)
	if err != nil {
		g.fail(doc.kind, doc.origin, err)
		return
	}
	g.record(doc.kind, entities.ResultCreated)
	g.queue.add(pendingAction{
		due:    doc.due,
		model:  doc.model,
		method: doc.complete,
		id:     id,
		origin: doc.origin,
		kind:   doc.kind,
	})
}

func (g *Generator) createAndConfirm(ctx context.Context, doc orderDoc) (int64, error) {
	company := g.cfg.Company
	orderDate := doc.day.Format("2006-01-02") + " 08:00:00"

	id, err := g.cfg.Backend.Create(ctx, doc.model, repositories.Record{
		"partner_id": doc.partner,
		"origin":     doc.origin,
		"date_order": orderDate,
		"company_id": company.ID,
	}, company.ID)
	if err != nil {
		return 0, fmt.Errorf("order create failed: %w", err)
	}

	qty, _ := doc.qty.Float64()
	lineValues := repositories.Record{
		"order_id":   id,
		"product_id": doc.product.VariantID,
		"name":       doc.product.Name,
		"company_id": company.ID,
	}
	if doc.kind == entities.KindPurchase {
		lineValues["product_qty"] = qty
		lineValues["date_planned"] = doc.due.Format("2006-01-02") + " 08:00:00"
	} else {
		lineValues["product_uom_qty"] = qty
	}
	if _, err := g.cfg.Backend.Create(ctx, doc.line, lineValues, company.ID); err != nil {
		return 0, fmt.Errorf("order line create failed: %w", err)
	}

	if _, err := g.cfg.Backend.Invoke(ctx, doc.model, doc.confirm, []int64{id}, nil, company.ID); err != nil {
		return 0, fmt.Errorf("%s failed: %w", doc.confirm, err)
	}
	return id, nil
}

// drainDue completes every receipt/delivery due on or before the day.
func (g *Generator) drainDue(ctx context.Context, day time.Time) {
	for _, a := range g.queue.dueBy(day) {
		if _, err := g.cfg.Backend.Invoke(ctx, a.model, a.method, []int64{a.id}, nil, g.cfg.Company.ID); err != nil {
			g.fail(a.kind, a.origin, fmt.Errorf("%s failed: %w", a.method, err))
		}
	}
}

func (g *Generator) nextOrigin(warehouseCode, sku string, kind entities.MovementKind, day time.Time) string {
	base := fmt.Sprintf("%s/%s/%s/%s", warehouseCode, sku, kind, day.Format("2006-01-02"))
	seq := g.seq[base]
	g.seq[base]++
	return entities.BuildOrigin(g.cfg.Run.DatasetKey, g.cfg.Company.CountryCode, warehouseCode, sku, kind, day, seq)
}

func (g *Generator) record(kind entities.MovementKind, result entities.OperationResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts[string(kind)+":"+result.String()]++
}

func (g *Generator) fail(kind entities.MovementKind, origin string, err error) {
	g.mu.Lock()
	g.counts[string(kind)+":"+entities.ResultFailed.String()]++
	g.failures = append(g.failures, dto.FailedOperation{Origin: origin, Reason: err.Error()})
	g.mu.Unlock()
	g.cfg.Run.Log().WithField("origin", origin).WithError(err).Warn("order operation failed")
}

// Summarize aggregates the order run outcome.
func (g *Generator) Summarize() *dto.CompanySummary {
	g.mu.Lock()
	defer g.mu.Unlock()
	counts := make(map[string]int, len(g.counts))
	for k, v := range g.counts {
		counts[k] = v
	}
	failures := make([]dto.FailedOperation, len(g.failures))
	copy(failures, g.failures)

	return &dto.CompanySummary{
		Company:          g.cfg.Company.Name,
		Counts:           counts,
		Anomalies:        g.cfg.Anomalies.Events,
		FailedOperations: failures,
	}
}
