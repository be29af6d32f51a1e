// Package movement replays the day-by-day inventory history of one
// company: inbound receipts, internal staging transfers, damage
// write-offs and outbound consumption, each emitted as an idempotent
// operation against the inventory backend. Planning is strictly
// sequential in day order; only the backend I/O for one day fans out
// over a keyed worker pool.
package movement

import (
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
	defaultWorkers = 4
	minActiveSKUs  = 12

	// Supplier delays hit roughly one receipt in ten, shifting it
	// 3 to 10 days out.
	supplierDelayChance  = 0.1
	supplierDelayMinDays = 3
	supplierDelayMaxDays = 10
)

// Config wires a Generator to one company's master data and run.
type Config struct {
	Backend   repositories.InventoryBackend
	Run       dto.RunContext
	Company   *entities.Company
	Products  []entities.Product
	Vendors   []entities.Vendor
	Anomalies *seasonality.AnomalyPlan

	// SupplierLocationID and CustomerLocationID are the external
	// counterpart locations receipts come from and deliveries go to.
	SupplierLocationID int64
	CustomerLocationID int64

	// Workers bounds same-day backend concurrency; 0 means default.
	Workers int
}

// warehouseProfile is the seeded per-warehouse behavior for one run.
type warehouseProfile struct {
	wh          entities.Warehouse
	activeSKUs  []entities.Product
	goodLocs    []int64
	transitLocs []int64
	damagedLocs []int64

	// Receipts arrive every receiptInterval days, phase-shifted by
	// receiptOffset, approximating 2-6 receipts per month scaled by tier.
	receiptInterval int
	receiptOffset   int
}

// pendingCredit is stock that arrives on a future day (delayed receipts,
// second legs of internal transfers).
type pendingCredit struct {
	locationID int64
	sku        string
	qty        decimal.Decimal
}

// pendingLeg is the TRANSIT → GOOD half of an internal transfer, emitted
// the day after its first leg.
type pendingLeg struct {
	profile *warehouseProfile
	product entities.Product
	fromLoc int64
	toLoc   int64
	qty     decimal.Decimal
}

// Generator emits one company's movement history for a date range.
type Generator struct {
	cfg       Config
	engine    *seasonality.Engine
	ledger    *StockLedger
	bySKU     map[string]entities.Product
	vendorFor map[entities.Category][]entities.Vendor

	pendingCredits map[string][]pendingCredit
	pendingLegs    map[string][]pendingLeg
	seq            map[string]int

	mu       sync.Mutex
	pickings []entities.PickingRecord
	moves    []entities.MoveRecord
	counts   map[string]int
	failures []dto.FailedOperation

	outboundTotal  map[string]decimal.Decimal
	recentOutbound map[string]decimal.Decimal
	recentCutoff   time.Time
}

// NewGenerator builds a generator over an empty ledger.
func NewGenerator(cfg Config) *Generator {
	if cfg.Workers == 0 {
		cfg.Workers = defaultWorkers
	}
	g := &Generator{
		cfg:            cfg,
		engine:         seasonality.NewEngine(cfg.Anomalies),
		ledger:         NewLedger(),
		bySKU:          make(map[string]entities.Product, len(cfg.Products)),
		vendorFor:      make(map[entities.Category][]entities.Vendor),
		pendingCredits: make(map[string][]pendingCredit),
		pendingLegs:    make(map[string][]pendingLeg),
		seq:            make(map[string]int),
		counts:         make(map[string]int),
		outboundTotal:  make(map[string]decimal.Decimal),
		recentOutbound: make(map[string]decimal.Decimal),
	}
	for _, p := range cfg.Products {
		g.bySKU[p.SKU] = p
	}
	for _, v := range cfg.Vendors {
		for _, cat := range v.Categories {
			g.vendorFor[cat] = append(g.vendorFor[cat], v)
		}
	}
	return g
}

// Ledger exposes the stock ledger for reporting.
func (g *Generator) Ledger() *StockLedger {
	return g.ledger
}

// Pickings returns every emitted picking record in emission order.
func (g *Generator) Pickings() []entities.PickingRecord {
	return g.pickings
}

// Moves returns every emitted move record in emission order.
func (g *Generator) Moves() []entities.MoveRecord {
	return g.moves
}

// Run replays the window day by day. Cancellation is honored between
// day iterations; a cancelled run leaves created records intact and
// resumable under the same dataset key.
func (g *Generator) Run(ctx context.Context, window plan.DateRange) error {
	profiles := g.buildProfiles()
	g.seedOpeningStock(profiles)
	g.recentCutoff = window.End.AddDate(0, 0, -30)

	pool := newKeyedPool(g.cfg.Workers)
	defer pool.close()

	log := g.cfg.Run.Log().WithField("company", g.cfg.Company.Name)
	log.WithFields(logrus.Fields{
		"from": window.Start.Format("2006-01-02"),
		"to":   window.End.Format("2006-01-02"),
	}).Info("generating movements")

	for i, day := range window.Days() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run aborted at %s: %w", day.Format("2006-01-02"), err)
		}

		g.applyPendingCredits(day)
		for _, p := range profiles {
			g.planWarehouseDay(ctx, pool, p, day, i)
		}
		pool.drain()
	}
	return nil
}

// buildProfiles derives each warehouse's active SKU set and receipt
// cadence from the dataset-key-seeded RNG.
func (g *Generator) buildProfiles() []*warehouseProfile {
	company := g.cfg.Company
	profiles := make([]*warehouseProfile, 0, len(company.Warehouses))
	for i := range company.Warehouses {
		wh := company.Warehouses[i]
		rng := rand.New(rand.NewSource(plan.StableSeed(fmt.Sprintf(
			"%s/profile/%s/%s", g.cfg.Run.DatasetKey, company.CountryCode, wh.Code))))

		n := max(minActiveSKUs, int(wh.Tier.ActiveShare()*float64(len(g.cfg.Products))))
		n = min(n, len(g.cfg.Products))
		active := make([]entities.Product, 0, n)
		for _, idx := range rng.Perm(len(g.cfg.Products))[:n] {
			active = append(active, g.cfg.Products[idx])
		}

		receiptsPerMonth := float64(2+rng.Intn(5)) * wh.Tier.Weight()
		interval := min(max(int(26/receiptsPerMonth), 1), 21)

		profiles = append(profiles, &warehouseProfile{
			wh:              wh,
			activeSKUs:      active,
			goodLocs:        company.LocationsByRole(wh.Code, entities.RoleGood),
			transitLocs:     company.LocationsByRole(wh.Code, entities.RoleTransit),
			damagedLocs:     company.LocationsByRole(wh.Code, entities.RoleDamaged),
			receiptInterval: interval,
			receiptOffset:   rng.Intn(interval),
		})
	}
	return profiles
}

// seedOpeningStock places a deterministic opening quantity of each
// active SKU on the shelf so the first days of the window are not all
// stockouts. Opening stock lives only in the ledger; it models the
// on-hand state that precedes the window.
func (g *Generator) seedOpeningStock(profiles []*warehouseProfile) {
	for _, p := range profiles {
		if len(p.goodLocs) == 0 {
			continue
		}
		rng := rand.New(rand.NewSource(plan.StableSeed(fmt.Sprintf(
			"%s/opening/%s/%s", g.cfg.Run.DatasetKey, g.cfg.Company.CountryCode, p.wh.Code))))
		for _, product := range p.activeSKUs {
			lo, hi := inboundQtyRange(product.Category)
			qty := decimal.NewFromFloat((lo + rng.Float64()*(hi-lo)) * 2).Round(2)
			loc := p.goodLocs[rng.Intn(len(p.goodLocs))]
			g.ledger.Add(loc, product.SKU, qty)
		}
	}
}

func (g *Generator) applyPendingCredits(day time.Time) {
	key := day.Format("2006-01-02")
	for _, c := range g.pendingCredits[key] {
		g.ledger.Add(c.locationID, c.sku, c.qty)
	}
	delete(g.pendingCredits, key)
}

// nextOrigin hands out the sequence-disambiguated idempotency key for
// one (warehouse, SKU, kind, day) tuple.
func (g *Generator) nextOrigin(wh *warehouseProfile, sku string, kind entities.MovementKind, day time.Time) string {
	base := fmt.Sprintf("%s/%s/%s/%s", wh.wh.Code, sku, kind, day.Format("2006-01-02"))
	seq := g.seq[base]
	g.seq[base]++
	return entities.BuildOrigin(g.cfg.Run.DatasetKey, g.cfg.Company.CountryCode, wh.wh.Code, sku, kind, day, seq)
}

func (g *Generator) recordResult(kind entities.MovementKind, result entities.OperationResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counts[string(kind)+":"+result.String()]++
}

func (g *Generator) recordFailure(kind entities.MovementKind, origin string, err error) {
	g.mu.Lock()
	g.counts[string(kind)+":"+entities.ResultFailed.String()]++
	g.failures = append(g.failures, dto.FailedOperation{Origin: origin, Reason: err.Error()})
	g.mu.Unlock()
	g.cfg.Run.Log().WithField("origin", origin).WithError(err).Warn("operation failed")
}

func (g *Generator) trackOutbound(sku string, qty decimal.Decimal, day time.Time) {
	g.outboundTotal[sku] = g.outboundTotal[sku].Add(qty)
	if !day.Before(g.recentCutoff) {
		g.recentOutbound[sku] = g.recentOutbound[sku].Add(qty)
	}
}
