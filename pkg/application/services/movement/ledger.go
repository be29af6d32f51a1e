package movement

import (
	"sync"

	"github.com/shopspring/decimal"
)

type ledgerKey struct {
	LocationID int64
	SKU        string
}

// StockLedger tracks on-hand quantity per (location, SKU) as the
// generators move stock around. It exists so outbound and damage
// quantities never exceed what earlier days put on the shelf.
type StockLedger struct {
	mu     sync.Mutex
	levels map[ledgerKey]decimal.Decimal
}

// NewLedger returns an empty ledger.
func NewLedger() *StockLedger {
	return &StockLedger{levels: make(map[ledgerKey]decimal.Decimal)}
}

// Add credits quantity to a location.
func (l *StockLedger) Add(locationID int64, sku string, qty decimal.Decimal) {
	if !qty.IsPositive() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	k := ledgerKey{locationID, sku}
	l.levels[k] = l.levels[k].Add(qty)
}

// Available returns the on-hand quantity at a location.
func (l *StockLedger) Available(locationID int64, sku string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.levels[ledgerKey{locationID, sku}]
}

// Take debits up to want from a location and returns the granted
// quantity, which may be less than requested or zero.
func (l *StockLedger) Take(locationID int64, sku string, want decimal.Decimal) decimal.Decimal {
	if !want.IsPositive() {
		return decimal.Zero
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	k := ledgerKey{locationID, sku}
	have := l.levels[k]
	granted := decimal.Min(want, have)
	if !granted.IsPositive() {
		return decimal.Zero
	}
	l.levels[k] = have.Sub(granted)
	return granted
}

// Transfer moves up to want between two locations and returns the
// granted quantity.
func (l *StockLedger) Transfer(fromID, toID int64, sku string, want decimal.Decimal) decimal.Decimal {
	granted := l.Take(fromID, sku, want)
	l.Add(toID, sku, granted)
	return granted
}

// SumLocations totals a SKU's stock across the given locations.
func (l *StockLedger) SumLocations(sku string, locationIDs []int64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := decimal.Zero
	for _, id := range locationIDs {
		total = total.Add(l.levels[ledgerKey{id, sku}])
	}
	return total
}
