package repositories

import "context"

// Record is a generic field map exchanged with the inventory backend.
type Record map[string]any

// ID extracts an integer identifier field from a record.
func (r Record) ID() int64 {
	return r.Int("id")
}

// Int extracts an integer field, tolerating the numeric types a JSON
// decoder may produce.
func (r Record) Int(field string) int64 {
	switch v := r[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Float extracts a float field, tolerating integer-typed values.
func (r Record) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// Str extracts a string field.
func (r Record) Str(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Relation extracts the ID half of a backend many2one value, which the
// wire format encodes as [id, display_name].
func (r Record) Relation(field string) int64 {
	switch v := r[field].(type) {
	case []any:
		if len(v) > 0 {
			if f, ok := v[0].(float64); ok {
				return int64(f)
			}
			if i, ok := v[0].(int64); ok {
				return i
			}
			if i, ok := v[0].(int); ok {
				return int64(i)
			}
		}
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Condition is one search criterion evaluated against a backend model.
type Condition struct {
	Field string
	Op    string
	Value any
}

// Eq builds an equality condition.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: "=", Value: value}
}

// SearchOptions bound and scope a SearchRead call.
type SearchOptions struct {
	Fields    []string
	Limit     int
	Order     string
	CompanyID int64
}

// InventoryBackend is the transactional inventory system the generators
// write through. Implementations wrap the remote JSON-RPC API or an
// in-memory substitute for tests and dry runs. Creation is never
// idempotent at this layer; callers must perform the origin lookup
// before creating.
type InventoryBackend interface {
	// Authenticate establishes a session. Idempotent.
	Authenticate(ctx context.Context) error

	// SearchRead returns records of the model matching every condition.
	SearchRead(ctx context.Context, model string, domain []Condition, opts SearchOptions) ([]Record, error)

	// Create inserts one record and returns its identifier.
	Create(ctx context.Context, model string, values Record, companyID int64) (int64, error)

	// Write updates the given records in place.
	Write(ctx context.Context, model string, ids []int64, values Record, companyID int64) error

	// Invoke calls a named workflow method (confirm, assign, validate,
	// receive, deliver) on the given records and returns its raw result.
	Invoke(ctx context.Context, model, method string, ids []int64, kwargs Record, companyID int64) (any, error)
}
