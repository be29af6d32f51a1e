package commands

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/stockseed/pkg/application/dto"
	"github.com/vsinha/stockseed/pkg/application/services/masterdata"
	"github.com/vsinha/stockseed/pkg/application/services/movement"
	"github.com/vsinha/stockseed/pkg/application/services/orders"
	"github.com/vsinha/stockseed/pkg/application/services/plan"
	"github.com/vsinha/stockseed/pkg/application/services/seasonality"
	"github.com/vsinha/stockseed/pkg/domain/entities"
	"github.com/vsinha/stockseed/pkg/domain/repositories"
	"github.com/vsinha/stockseed/pkg/infrastructure/backend/memory"
	"github.com/vsinha/stockseed/pkg/infrastructure/backend/odoo"
	"github.com/vsinha/stockseed/pkg/interfaces/cli/output"
)

// countryNames maps the supported country codes to company names.
var countryNames = map[string]string{
	"rw": "Rwanda",
	"ug": "Uganda",
	"ke": "Kenya",
}

// Config holds configuration for the seed command
type Config struct {
	Days          int
	Scale         string
	Countries     string
	Orders        bool
	OrdersOnly    bool
	MovementsOnly bool
	FullGeo       bool
	DryRun        bool
	OutputDir     string
	EndDate       string

	BaseURL  string
	Database string
	Username string
	Password string

	Verbose bool
	Help    bool
}

// SeedCommand handles the main seeding execution logic
type SeedCommand struct {
	config Config
	log    *logrus.Logger
}

// NewSeedCommand creates a new seed command with the given configuration
func NewSeedCommand(config Config) *SeedCommand {
	log := logrus.New()
	if config.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return &SeedCommand{
		config: config,
		log:    log,
	}
}

// Execute runs the seed command
func (c *SeedCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	countries, err := c.resolveCountries()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	scale, err := entities.ParseScale(c.config.Scale)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	runDate, err := c.resolveRunDate()
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	p, err := plan.Build(plan.Request{
		RunDate:       runDate,
		WindowDays:    c.config.Days,
		Orders:        c.config.Orders,
		OrdersOnly:    c.config.OrdersOnly,
		MovementsOnly: c.config.MovementsOnly,
	})
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	run := dto.NewRunContext(p.DatasetKey, c.config.DryRun, c.log)
	run.Log().WithFields(logrus.Fields{
		"mode":      p.Mode.String(),
		"scale":     string(scale),
		"countries": countries,
		"dry_run":   c.config.DryRun,
	}).Info("starting seed run")

	backend, err := c.connectBackend(ctx)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		c.printHeader(p, countries)
	}

	for _, cc := range countries {
		if err := c.seedCountry(ctx, backend, run, p, scale, cc); err != nil {
			return fmt.Errorf("seeding %s failed: %w", countryNames[cc], err)
		}
	}

	run.Log().Info("seed run complete")
	return nil
}

// seedCountry seeds one company end to end: master data, anomaly plan,
// movement and/or order history, CSV files, console summary.
func (c *SeedCommand) seedCountry(ctx context.Context, backend repositories.InventoryBackend, run dto.RunContext, p *plan.Plan, scale entities.Scale, cc string) error {
	name := countryNames[cc]
	log := run.Log().WithField("company", name)

	registry := masterdata.NewRegistry(backend, run)
	company, err := registry.SeedCompanyGeography(ctx, cc, name, scale, c.config.FullGeo)
	if err != nil {
		return fmt.Errorf("failed to seed geography: %w", err)
	}
	countryID, err := registry.EnsureCountry(ctx, cc)
	if err != nil {
		return fmt.Errorf("failed to resolve country: %w", err)
	}
	products, vendors, err := registry.SeedProductsAndVendors(ctx, company, countryID)
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	log.WithFields(logrus.Fields{
		"warehouses": len(company.Warehouses),
		"products":   len(products),
		"vendors":    len(vendors),
	}).Info("master data ready")

	supplierLoc, err := c.externalLocation(ctx, backend, run, "supplier", "Vendors")
	if err != nil {
		return err
	}
	customerLoc, err := c.externalLocation(ctx, backend, run, "customer", "Customers")
	if err != nil {
		return err
	}

	window := fullRange(p)
	rng := rand.New(rand.NewSource(plan.StableSeed(run.DatasetKey + "/anomalies/" + cc)))
	anomalies := seasonality.PlanAnomalies(rng, name, window.Days(), products, company.Warehouses)

	var summary *dto.CompanySummary
	var pickings []entities.PickingRecord
	var moves []entities.MoveRecord

	if p.Movements != nil {
		gen := movement.NewGenerator(movement.Config{
			Backend:            backend,
			Run:                run,
			Company:            company,
			Products:           products,
			Vendors:            vendors,
			Anomalies:          anomalies,
			SupplierLocationID: supplierLoc,
			CustomerLocationID: customerLoc,
		})
		if err := gen.Run(ctx, *p.Movements); err != nil {
			return err
		}
		summary = gen.Summarize()
		pickings = append(pickings, gen.Pickings()...)
		moves = append(moves, gen.Moves()...)
	}

	if p.Orders != nil {
		gen := orders.NewGenerator(orders.Config{
			Backend:   backend,
			Run:       run,
			Company:   company,
			Products:  products,
			Vendors:   vendors,
			Scale:     scale,
			Anomalies: anomalies,
		})
		if err := gen.Run(ctx, *p.Orders); err != nil {
			return err
		}
		if summary == nil {
			summary = gen.Summarize()
		} else {
			mergeSummary(summary, gen.Summarize())
		}
		pickings = append(pickings, gen.Pickings()...)
		moves = append(moves, gen.Moves()...)
	}

	pickingsPath, err := output.WritePickingsCSV(c.config.OutputDir, cc, run.DatasetKey, pickings)
	if err != nil {
		return fmt.Errorf("failed to write pickings file: %w", err)
	}
	movesPath, err := output.WriteMovesCSV(c.config.OutputDir, cc, run.DatasetKey, moves)
	if err != nil {
		return fmt.Errorf("failed to write moves file: %w", err)
	}
	summary.PickingsCSV = pickingsPath
	summary.MovesCSV = movesPath

	if summary.Failed() > 0 {
		log.WithField("failed", summary.Failed()).Warn("some operations failed; see summary")
	}
	output.PrintSummary(os.Stdout, summary)
	return nil
}

// connectBackend picks the inventory backend: in-memory for dry runs and
// local simulation, the JSON-RPC client when a base URL is configured.
func (c *SeedCommand) connectBackend(ctx context.Context) (repositories.InventoryBackend, error) {
	if c.config.DryRun || c.config.BaseURL == "" {
		c.log.Info("using in-memory backend")
		b := memory.New()
		b.SeedReference()
		return b, nil
	}

	if c.config.Database == "" || c.config.Username == "" || c.config.Password == "" {
		return nil, fmt.Errorf("validation error: database, user and password are required with a base URL")
	}

	client := odoo.New(odoo.Config{
		BaseURL:  c.config.BaseURL,
		Database: c.config.Database,
		Username: c.config.Username,
		Password: c.config.Password,
		Logger:   c.log,
	})
	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}
	ok, err := client.HasModule(ctx, "stock")
	if err != nil {
		return nil, fmt.Errorf("failed to check installed modules: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("the stock module is not installed on %s", c.config.BaseURL)
	}
	return client, nil
}

// externalLocation resolves the supplier/customer counterpart location,
// creating it when the backend has none. Dry runs use deterministic
// fake identifiers and never touch the backend.
func (c *SeedCommand) externalLocation(ctx context.Context, backend repositories.InventoryBackend, run dto.RunContext, usage, name string) (int64, error) {
	if run.DryRun {
		return 1_000_000 + plan.StableSeed("stock.location::"+usage)%9_000_000, nil
	}

	records, err := backend.SearchRead(ctx, "stock.location",
		[]repositories.Condition{repositories.Eq("usage", usage)},
		repositories.SearchOptions{Fields: []string{"id"}, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("failed to find %s location: %w", usage, err)
	}
	if len(records) > 0 {
		return records[0].ID(), nil
	}
	id, err := backend.Create(ctx, "stock.location", repositories.Record{
		"name":  name,
		"usage": usage,
	}, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s location: %w", usage, err)
	}
	return id, nil
}

// resolveCountries parses and validates the country list.
func (c *SeedCommand) resolveCountries() ([]string, error) {
	var countries []string
	for _, part := range strings.Split(c.config.Countries, ",") {
		cc := strings.ToLower(strings.TrimSpace(part))
		if cc == "" {
			continue
		}
		if _, ok := countryNames[cc]; !ok {
			return nil, fmt.Errorf("unsupported country %q (supported: rw, ug, ke)", cc)
		}
		countries = append(countries, cc)
	}
	if len(countries) == 0 {
		return nil, fmt.Errorf("at least one country is required")
	}
	return countries, nil
}

// resolveRunDate returns the run date: today unless -end-date overrides it.
func (c *SeedCommand) resolveRunDate() (time.Time, error) {
	if c.config.EndDate == "" {
		return time.Now().UTC(), nil
	}
	d, err := time.Parse("2006-01-02", c.config.EndDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid end date %q: %w", c.config.EndDate, err)
	}
	return d, nil
}

// fullRange spans every date range the plan covers, so the anomaly plan
// is shared between the movement and order pipelines.
func fullRange(p *plan.Plan) plan.DateRange {
	switch {
	case p.Movements != nil && p.Orders != nil:
		return plan.DateRange{Start: p.Movements.Start, End: p.Orders.End}
	case p.Orders != nil:
		return *p.Orders
	default:
		return *p.Movements
	}
}

// mergeSummary folds the order pipeline's counts and failures into the
// movement summary; both share one anomaly plan.
func mergeSummary(dst, src *dto.CompanySummary) {
	for k, v := range src.Counts {
		dst.Counts[k] += v
	}
	dst.FailedOperations = append(dst.FailedOperations, src.FailedOperations...)
}

// printHeader prints the command header information
func (c *SeedCommand) printHeader(p *plan.Plan, countries []string) {
	fmt.Printf("🌱 Inventory Seed CLI\n")
	fmt.Printf("Dataset key: %s\n", p.DatasetKey)
	fmt.Printf("Mode: %s\n", p.Mode.String())
	if p.Movements != nil {
		fmt.Printf("Movements: %s to %s\n",
			p.Movements.Start.Format("2006-01-02"), p.Movements.End.Format("2006-01-02"))
	}
	if p.Orders != nil {
		fmt.Printf("Orders: %s to %s\n",
			p.Orders.Start.Format("2006-01-02"), p.Orders.End.Format("2006-01-02"))
	}
	fmt.Printf("Countries: %s\n", strings.Join(countries, ", "))
	if c.config.OutputDir != "" {
		fmt.Printf("Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Println()
}

// showHelp displays the help message
func (c *SeedCommand) showHelp() {
	fmt.Printf(`Inventory Seed CLI - Deterministic synthetic inventory history

USAGE:
    stockseed -days <n> [options]              # Seed movement history
    stockseed -days <n> -orders [options]      # Include order documents

OPTIONS:
    -days <n>           History window in days (required, positive)
    -scale <s>          Dataset scale: small, medium, large (default: small)
    -countries <list>   Comma-separated country codes: rw, ug, ke (default: rw)
    -orders             Generate order documents as well as movements
    -orders-only        Generate only order documents
    -movements-only     Generate only stock movements
    -full-geo           Ignore scale caps and seed the full geography
    -dry-run            Plan and report without touching the backend
    -output <dir>       Directory for the pickings/moves CSV files (default: output)
    -end-date <date>    Run date override, YYYY-MM-DD (default: today)
    -url <url>          Backend base URL (default: $ODOO_URL)
    -db <name>          Backend database (default: $ODOO_DB)
    -user <login>       Backend login (default: $ODOO_USER)
    -password <secret>  Backend password (default: $ODOO_PASSWORD)
    -verbose            Enable verbose output
    -help               Show this help message

Without a backend URL the run executes against an in-memory backend, which
is useful for inspecting the generated CSV files locally.

EXAMPLES:
    # Half a year of movements for Rwanda, small scale, in-memory
    stockseed -days 180 -dry-run

    # Two years with order documents for two countries
    stockseed -days 730 -orders -countries rw,ke -scale medium \
        -url https://erp.example.com -db prod -user admin -password secret

    # Reproducible window for tests
    stockseed -days 30 -end-date 2025-06-15 -dry-run
`)
}
