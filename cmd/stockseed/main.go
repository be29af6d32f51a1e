package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vsinha/stockseed/pkg/interfaces/cli/commands"
)

func main() {
	// Connection settings may come from a .env file or the environment;
	// flags override both.
	_ = godotenv.Load()

	// Command line flags
	var (
		days          = flag.Int("days", 0, "History window in days")
		scale         = flag.String("scale", "small", "Dataset scale: small, medium, large")
		countries     = flag.String("countries", "rw", "Comma-separated country codes: rw, ug, ke")
		orders        = flag.Bool("orders", false, "Generate order documents as well as movements")
		ordersOnly    = flag.Bool("orders-only", false, "Generate only order documents")
		movementsOnly = flag.Bool("movements-only", false, "Generate only stock movements")
		fullGeo       = flag.Bool("full-geo", false, "Ignore scale caps and seed the full geography")
		dryRun        = flag.Bool("dry-run", false, "Plan and report without touching the backend")
		outputDir     = flag.String("output", "output", "Directory for the pickings/moves CSV files")
		endDate       = flag.String("end-date", "", "Run date override, YYYY-MM-DD (default: today)")
		baseURL       = flag.String("url", os.Getenv("ODOO_URL"), "Backend base URL")
		database      = flag.String("db", os.Getenv("ODOO_DB"), "Backend database")
		username      = flag.String("user", os.Getenv("ODOO_USER"), "Backend login")
		password      = flag.String("password", os.Getenv("ODOO_PASSWORD"), "Backend password")
		verbose       = flag.Bool("verbose", false, "Enable verbose output")
		help          = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	// Create command configuration
	config := commands.Config{
		Days:          *days,
		Scale:         *scale,
		Countries:     *countries,
		Orders:        *orders,
		OrdersOnly:    *ordersOnly,
		MovementsOnly: *movementsOnly,
		FullGeo:       *fullGeo,
		DryRun:        *dryRun,
		OutputDir:     *outputDir,
		EndDate:       *endDate,
		BaseURL:       *baseURL,
		Database:      *database,
		Username:      *username,
		Password:      *password,
		Verbose:       *verbose,
		Help:          *help,
	}

	// Create and execute command
	cmd := commands.NewSeedCommand(config)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
