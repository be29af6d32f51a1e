// Package output renders the generation results: one pickings CSV and
// one moves CSV per company, plus the console summary.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

var pickingHeader = []string{
	"dataset_key", "day", "company", "warehouse", "sku", "direction",
	"origin", "scheduled_date", "source_location", "dest_location", "note",
}

var moveHeader = []string{
	"dataset_key", "day", "company", "warehouse", "sku", "direction",
	"product", "category", "qty_requested", "qty_done", "uom", "origin", "note",
}

// PickingsFileName returns the per-company pickings CSV name.
func PickingsFileName(countryCode, datasetKey string) string {
	return fmt.Sprintf("pickings_%s_%s.csv", countryCode, datasetKey)
}

// MovesFileName returns the per-company moves CSV name.
func MovesFileName(countryCode, datasetKey string) string {
	return fmt.Sprintf("moves_%s_%s.csv", countryCode, datasetKey)
}

// WritePickingsCSV writes the pickings file and returns its path.
func WritePickingsCSV(dir, countryCode, datasetKey string, pickings []entities.PickingRecord) (string, error) {
	path := filepath.Join(dir, PickingsFileName(countryCode, datasetKey))
	rows := make([][]string, 0, len(pickings))
	for _, p := range pickings {
		rows = append(rows, []string{
			p.DatasetKey,
			p.Day.Format("2006-01-02"),
			p.Company,
			p.Warehouse,
			p.SKU,
			string(p.Kind),
			p.Origin,
			p.ScheduledAt.Format("2006-01-02"),
			fmt.Sprintf("%d", p.SourceLocationID),
			fmt.Sprintf("%d", p.DestLocationID),
			p.Note,
		})
	}
	return path, writeCSV(path, pickingHeader, rows)
}

// WriteMovesCSV writes the moves file and returns its path.
func WriteMovesCSV(dir, countryCode, datasetKey string, moves []entities.MoveRecord) (string, error) {
	path := filepath.Join(dir, MovesFileName(countryCode, datasetKey))
	rows := make([][]string, 0, len(moves))
	for _, m := range moves {
		rows = append(rows, []string{
			m.DatasetKey,
			m.Day.Format("2006-01-02"),
			m.Company,
			m.Warehouse,
			m.SKU,
			string(m.Kind),
			m.ProductName,
			string(m.Category),
			m.QtyRequested.StringFixed(2),
			m.QtyDone.StringFixed(2),
			m.UoM,
			m.Origin,
			m.Note,
		})
	}
	return path, writeCSV(path, moveHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
