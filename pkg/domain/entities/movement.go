package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind is the direction/category of a transactional operation.
type MovementKind string

const (
	KindInbound  MovementKind = "IN"
	KindInternal MovementKind = "INT"
	KindDamage   MovementKind = "DMG"
	KindOutbound MovementKind = "OUT"
	KindPurchase MovementKind = "PO"
	KindSale     MovementKind = "SO"
)

// OriginPrefix namespaces every generated idempotency key.
const OriginPrefix = "SEED"

// BuildOrigin derives the per-operation idempotency string. The same
// inputs always produce the same origin; the sequence disambiguates
// multiple operations for one (warehouse, SKU, day, kind) tuple.
func BuildOrigin(datasetKey, countryCode, warehouseCode, sku string, kind MovementKind, day time.Time, seq int) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s/%s/%s/%04d",
		OriginPrefix, datasetKey, strings.ToUpper(countryCode), warehouseCode, sku, kind, day.Format("2006-01-02"), seq)
}

// PickingRecord is one generated transactional document between two
// locations, as written to the pickings output file.
type PickingRecord struct {
	Origin           string
	DatasetKey       string
	Day              time.Time
	Company          string
	Warehouse        string
	Kind             MovementKind
	SKU              string
	ScheduledAt      time.Time
	SourceLocationID int64
	DestLocationID   int64
	Note             string
}

// MoveRecord is one generated product movement line, as written to the
// moves output file.
type MoveRecord struct {
	Origin           string
	DatasetKey       string
	Day              time.Time
	Company          string
	Warehouse        string
	Kind             MovementKind
	SKU              string
	ProductName      string
	Category         Category
	QtyRequested     decimal.Decimal
	QtyDone          decimal.Decimal
	UoM              string
	SourceLocationID int64
	DestLocationID   int64
	Note             string
}

// OperationResult classifies the outcome of one emitted operation.
type OperationResult int

const (
	ResultCreated OperationResult = iota
	ResultExisting
	ResultSkipped
	ResultFailed
)

// String method for OperationResult enum
func (r OperationResult) String() string {
	switch r {
	case ResultCreated:
		return "created"
	case ResultExisting:
		return "existing"
	case ResultSkipped:
		return "skipped"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}
