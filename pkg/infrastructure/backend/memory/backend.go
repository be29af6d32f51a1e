// Package memory provides an in-memory InventoryBackend used by tests and
// available as a stand-in when no live system is reachable. It simulates
// just enough of the remote data model for the generators to run end to
// end: record storage with search by equality, warehouse scaffolding
// (stock locations and picking types created alongside the warehouse),
// product variants, and the picking and order state machines.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/stockseed/pkg/domain/repositories"
)

// Backend is a thread-safe in-memory implementation of InventoryBackend.
type Backend struct {
	mu     sync.Mutex
	nextID int64
	models map[string][]repositories.Record
	calls  map[string]int

	// CreateHook, when set, runs before every create and can veto it.
	// Tests use it to inject backend failures.
	CreateHook func(model string, values repositories.Record) error

	// InvokeHook, when set, runs before every workflow call.
	InvokeHook func(model, method string, ids []int64) error
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		nextID: 1000,
		models: make(map[string][]repositories.Record),
		calls:  make(map[string]int),
	}
}

// Calls returns how many times the named operation ran
// (authenticate, search_read, create, write, invoke).
func (b *Backend) Calls(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[op]
}

// Count returns the number of stored records of a model.
func (b *Backend) Count(model string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.models[model])
}

// Seed inserts a record directly, bypassing hooks and counters. The
// record must carry its own id.
func (b *Backend) Seed(model string, rec repositories.Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.models[model] = append(b.models[model], rec)
	if id := rec.ID(); id >= b.nextID {
		b.nextID = id + 1
	}
}

// Authenticate always succeeds.
func (b *Backend) Authenticate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["authenticate"]++
	return nil
}

// SearchRead filters a model's records by the given conditions.
func (b *Backend) SearchRead(ctx context.Context, model string, domain []repositories.Condition, opts repositories.SearchOptions) ([]repositories.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["search_read"]++

	var out []repositories.Record
	for _, rec := range b.models[model] {
		ok, err := matches(rec, domain)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, clone(rec))
		if opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// Create stores a record and returns its new identifier. Warehouses get
// their stock locations and picking types scaffolded, product templates
// get a variant, mirroring what the remote system does on create.
func (b *Backend) Create(ctx context.Context, model string, values repositories.Record, companyID int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["create"]++

	if b.CreateHook != nil {
		if err := b.CreateHook(model, values); err != nil {
			return 0, err
		}
	}

	rec := clone(values)
	id := b.allocate()
	rec["id"] = id
	b.models[model] = append(b.models[model], rec)

	switch model {
	case "stock.warehouse":
		b.scaffoldWarehouse(rec, companyID)
	case "product.template":
		b.scaffoldVariant(rec)
	case "stock.picking":
		if rec.Str("state") == "" {
			rec["state"] = "draft"
		}
	}
	return id, nil
}

// Write merges values into every matching record.
func (b *Backend) Write(ctx context.Context, model string, ids []int64, values repositories.Record, companyID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["write"]++

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, rec := range b.models[model] {
		if !want[rec.ID()] {
			continue
		}
		for k, v := range values {
			rec[k] = v
		}
	}
	return nil
}

// Invoke advances the simulated state machine for workflow methods.
func (b *Backend) Invoke(ctx context.Context, model, method string, ids []int64, kwargs repositories.Record, companyID int64) (any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls["invoke"]++

	if b.InvokeHook != nil {
		if err := b.InvokeHook(model, method, ids); err != nil {
			return nil, err
		}
	}

	state, ok := transitions[model][method]
	if !ok {
		return true, nil
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for _, rec := range b.models[model] {
		if want[rec.ID()] {
			rec["state"] = state
		}
	}
	return true, nil
}

// transitions maps workflow methods to the state they leave records in.
var transitions = map[string]map[string]string{
	"stock.picking": {
		"action_confirm":  "confirmed",
		"action_assign":   "assigned",
		"button_validate": "done",
		"action_cancel":   "cancel",
	},
	"purchase.order": {
		"button_confirm": "purchase",
		"button_done":    "done",
		"button_cancel":  "cancel",
	},
	"sale.order": {
		"action_confirm": "sale",
		"action_done":    "done",
		"action_cancel":  "cancel",
	},
	"stock.scrap": {
		"action_validate": "done",
	},
}

func (b *Backend) allocate() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Backend) scaffoldWarehouse(wh repositories.Record, companyID int64) {
	name := wh.Str("name")

	viewID := b.allocate()
	b.models["stock.location"] = append(b.models["stock.location"], repositories.Record{
		"id": viewID, "name": name, "usage": "view", "company_id": companyID,
	})
	stockID := b.allocate()
	b.models["stock.location"] = append(b.models["stock.location"], repositories.Record{
		"id": stockID, "name": "Stock", "usage": "internal",
		"location_id": viewID, "company_id": companyID,
	})
	wh["view_location_id"] = []any{viewID, name}
	wh["lot_stock_id"] = []any{stockID, name + "/Stock"}

	for _, code := range []string{"incoming", "internal", "outgoing"} {
		b.models["stock.picking.type"] = append(b.models["stock.picking.type"], repositories.Record{
			"id":           b.allocate(),
			"name":         fmt.Sprintf("%s %s", name, code),
			"code":         code,
			"warehouse_id": wh.ID(),
		})
	}
}

func (b *Backend) scaffoldVariant(tmpl repositories.Record) {
	b.models["product.product"] = append(b.models["product.product"], repositories.Record{
		"id":              b.allocate(),
		"name":            tmpl.Str("name"),
		"default_code":    tmpl.Str("default_code"),
		"product_tmpl_id": []any{tmpl.ID(), tmpl.Str("name")},
	})
}

func matches(rec repositories.Record, domain []repositories.Condition) (bool, error) {
	for _, c := range domain {
		switch c.Op {
		case "=":
			if !valueEqual(rec[c.Field], c.Value) {
				return false, nil
			}
		case "in":
			values, ok := c.Value.([]any)
			if !ok {
				return false, fmt.Errorf("in condition on %q needs a slice value", c.Field)
			}
			hit := false
			for _, v := range values {
				if valueEqual(rec[c.Field], v) {
					hit = true
					break
				}
			}
			if !hit {
				return false, nil
			}
		default:
			return false, fmt.Errorf("unsupported condition operator %q", c.Op)
		}
	}
	return true, nil
}

// valueEqual compares loosely across the numeric types JSON decoding and
// Go literals produce, and sees through [id, name] relation values.
func valueEqual(have, want any) bool {
	if rel, ok := have.([]any); ok && len(rel) > 0 {
		have = rel[0]
	}
	if hf, ok := asFloat(have); ok {
		if wf, ok := asFloat(want); ok {
			return hf == wf
		}
		return false
	}
	return have == want
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func clone(rec repositories.Record) repositories.Record {
	out := make(repositories.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// Verify interface compliance
var _ repositories.InventoryBackend = (*Backend)(nil)
