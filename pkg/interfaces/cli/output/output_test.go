package output

import (
	"bytes"
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stockseed/pkg/application/dto"
	"github.com/vsinha/stockseed/pkg/domain/entities"
)

func TestWritePickingsCSV(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	pickings := []entities.PickingRecord{{
		Origin:           "SEED/2025-06-15_20d_mov/RW/KIGAL/SEEDS-001/IN/2025-06-03/0000",
		DatasetKey:       "2025-06-15_20d_mov",
		Day:              day,
		Company:          "Rwanda",
		Warehouse:        "KIGAL",
		Kind:             entities.KindInbound,
		SKU:              "SEEDS-001",
		ScheduledAt:      day,
		SourceLocationID: 4,
		DestLocationID:   10,
		Note:             "Rwanda Agro Supplies Ltd",
	}}

	path, err := WritePickingsCSV(dir, "rw", "2025-06-15_20d_mov", pickings)
	require.NoError(t, err)
	assert.Contains(t, path, "pickings_rw_2025-06-15_20d_mov.csv")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, pickingHeader, rows[0])
	assert.Equal(t, "2025-06-15_20d_mov", rows[1][0])
	assert.Equal(t, "2025-06-03", rows[1][1])
	assert.Equal(t, "KIGAL", rows[1][3])
	assert.Equal(t, "SEEDS-001", rows[1][4])
	assert.Equal(t, "IN", rows[1][5])
	assert.Equal(t, pickings[0].Origin, rows[1][6])
}

func TestWriteMovesCSV(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	moves := []entities.MoveRecord{{
		Origin:       "SEED/2025-06-15_20d_mov/RW/KIGAL/SEEDS-001/OUT/2025-06-03/0000",
		DatasetKey:   "2025-06-15_20d_mov",
		Day:          day,
		Company:      "Rwanda",
		Warehouse:    "KIGAL",
		Kind:         entities.KindOutbound,
		SKU:          "SEEDS-001",
		ProductName:  "Hybrid Maize Seed 5kg",
		Category:     entities.CategorySeeds,
		QtyRequested: decimal.NewFromFloat(120.5),
		QtyDone:      decimal.NewFromFloat(100),
		UoM:          "kg",
	}}

	path, err := WriteMovesCSV(dir, "rw", "2025-06-15_20d_mov", moves)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, moveHeader, rows[0])
	assert.Equal(t, "120.50", rows[1][8])
	assert.Equal(t, "100.00", rows[1][9])
	assert.Equal(t, "kg", rows[1][10])
}

func TestWriteCSV_EmptyStillWritesHeader(t *testing.T) {
	dir := t.TempDir()
	path, err := WritePickingsCSV(dir, "ke", "2025-06-15_10d_ord", nil)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPrintSummary(t *testing.T) {
	s := &dto.CompanySummary{
		Company:     "Rwanda",
		PickingsCSV: "/tmp/pickings_rw_x.csv",
		MovesCSV:    "/tmp/moves_rw_x.csv",
		Counts: map[string]int{
			"IN:created":   12,
			"OUT:created":  30,
			"OUT:existing": 3,
		},
		TopOutboundSKUs: []dto.SKUQuantity{
			{SKU: "SEEDS-001", Qty: decimal.NewFromInt(500)},
		},
		LowestDaysCover: []dto.DaysOfCover{
			{SKU: "FERTI-002", Days: 4.2, Stock: decimal.NewFromInt(20), OutRate: decimal.NewFromFloat(4.8)},
		},
		Anomalies: []entities.AnomalyEvent{{
			Kind:   entities.AnomalyDemandSpike,
			Detail: "Demand spike multiplier 2.5x on 2025-06-03",
		}},
		FailedOperations: []dto.FailedOperation{{
			Origin: "SEED/x/RW/KIGAL/SEEDS-001/OUT/2025-06-04/0000",
			Reason: "validation error",
		}},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Rwanda")
	assert.Contains(t, out, "42 created, 3 skipped, 1 failed")
	assert.Contains(t, out, "SEEDS-001")
	assert.Contains(t, out, "FERTI-002")
	assert.Contains(t, out, "Demand spike")
	assert.Contains(t, out, "validation error")
	assert.Contains(t, out, "pickings_rw_x.csv")
}
