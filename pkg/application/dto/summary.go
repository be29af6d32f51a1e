package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

// SKUQuantity pairs a SKU with an aggregate quantity for ranking.
type SKUQuantity struct {
	SKU string
	Qty decimal.Decimal
}

// DaysOfCover approximates how long ending stock lasts at the trailing
// outbound rate.
type DaysOfCover struct {
	SKU     string
	Days    float64
	Stock   decimal.Decimal
	OutRate decimal.Decimal
}

// CompanySummary aggregates one company's generation outcome for the
// console report. Counts are keyed "<KIND>:<result>" so a rerun's delta
// (created vs existing vs failed) is observable.
type CompanySummary struct {
	Company          string
	PickingsCSV      string
	MovesCSV         string
	Counts           map[string]int
	TopOutboundSKUs  []SKUQuantity
	LowestDaysCover  []DaysOfCover
	Anomalies        []entities.AnomalyEvent
	FailedOperations []FailedOperation
}

// FailedOperation records one operation whose state machine could not be
// advanced; the run continues past these.
type FailedOperation struct {
	Origin string
	Reason string
}

// Succeeded returns the count of created operations across kinds.
func (s *CompanySummary) Succeeded() int {
	return s.countByResult(entities.ResultCreated)
}

// Skipped returns idempotent no-ops (existing plus skipped).
func (s *CompanySummary) Skipped() int {
	return s.countByResult(entities.ResultExisting) + s.countByResult(entities.ResultSkipped)
}

// Failed returns the count of failed operations.
func (s *CompanySummary) Failed() int {
	return len(s.FailedOperations)
}

func (s *CompanySummary) countByResult(result entities.OperationResult) int {
	suffix := ":" + result.String()
	total := 0
	for key, n := range s.Counts {
		if len(key) >= len(suffix) && key[len(key)-len(suffix):] == suffix {
			total += n
		}
	}
	return total
}
