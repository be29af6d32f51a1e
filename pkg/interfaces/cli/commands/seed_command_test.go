package commands

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Days:      10,
		Scale:     "small",
		Countries: "rw",
		DryRun:    true,
		OutputDir: t.TempDir(),
		EndDate:   "2025-06-15",
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExecute_DryRunWritesFiles(t *testing.T) {
	cfg := testConfig(t)
	cmd := NewSeedCommand(cfg)
	require.NoError(t, cmd.Execute(context.Background()))

	rows := readCSV(t, filepath.Join(cfg.OutputDir, "pickings_rw_2025-06-15_10d_mov.csv"))
	require.Greater(t, len(rows), 1, "expected generated pickings")
	for _, row := range rows[1:] {
		assert.Equal(t, "2025-06-15_10d_mov", row[0])
	}

	moves := readCSV(t, filepath.Join(cfg.OutputDir, "moves_rw_2025-06-15_10d_mov.csv"))
	assert.Greater(t, len(moves), 1, "expected generated moves")
}

func TestExecute_DryRunIsDeterministic(t *testing.T) {
	first := testConfig(t)
	second := testConfig(t)

	require.NoError(t, NewSeedCommand(first).Execute(context.Background()))
	require.NoError(t, NewSeedCommand(second).Execute(context.Background()))

	a := readCSV(t, filepath.Join(first.OutputDir, "pickings_rw_2025-06-15_10d_mov.csv"))
	b := readCSV(t, filepath.Join(second.OutputDir, "pickings_rw_2025-06-15_10d_mov.csv"))
	assert.Equal(t, a, b)
}

func TestExecute_InMemoryBackendRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = false
	require.NoError(t, NewSeedCommand(cfg).Execute(context.Background()))

	rows := readCSV(t, filepath.Join(cfg.OutputDir, "pickings_rw_2025-06-15_10d_mov.csv"))
	assert.Greater(t, len(rows), 1)
}

func TestExecute_OrdersModeUsesOrderKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Orders = true
	require.NoError(t, NewSeedCommand(cfg).Execute(context.Background()))

	_, err := os.Stat(filepath.Join(cfg.OutputDir, "pickings_rw_2025-06-15_10d_ord.csv"))
	assert.NoError(t, err)
}

func TestExecute_RejectsConflictingModes(t *testing.T) {
	cfg := testConfig(t)
	cfg.OrdersOnly = true
	cfg.MovementsOnly = true

	err := NewSeedCommand(cfg).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestExecute_RejectsUnknownCountry(t *testing.T) {
	cfg := testConfig(t)
	cfg.Countries = "rw,tz"

	err := NewSeedCommand(cfg).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported country")
}

func TestExecute_RejectsBadScale(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scale = "gigantic"

	err := NewSeedCommand(cfg).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scale")
}

func TestExecute_RejectsBadEndDate(t *testing.T) {
	cfg := testConfig(t)
	cfg.EndDate = "June 15th"

	err := NewSeedCommand(cfg).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid end date")
}

func TestExecute_RejectsMissingCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = false
	cfg.BaseURL = "https://erp.example.com"

	err := NewSeedCommand(cfg).Execute(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password are required")
}

func TestResolveCountries_NormalizesInput(t *testing.T) {
	cmd := NewSeedCommand(Config{Countries: " RW , ke "})
	countries, err := cmd.resolveCountries()
	require.NoError(t, err)
	assert.Equal(t, []string{"rw", "ke"}, countries)
}
