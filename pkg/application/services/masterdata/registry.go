// Package masterdata makes companies, warehouses, locations, products and
// vendors exist in the backend before any movement is generated. Every
// operation is an idempotent ensure: search by natural key first, create
// only on miss. In dry-run mode nothing is created and identifiers are
// derived deterministically from the natural key, so downstream planning
// stays byte-stable between a dry run and a live run.
package masterdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/vsinha/stockseed/pkg/application/dto"
	"github.com/vsinha/stockseed/pkg/application/services/plan"
	"github.com/vsinha/stockseed/pkg/domain/repositories"
)

// Registry wraps the backend with ensure-style lookups and a per-run
// identifier cache so repeated ensures of the same key cost one round
// trip at most.
type Registry struct {
	backend repositories.InventoryBackend
	run     dto.RunContext
	cache   map[string]int64
}

// NewRegistry returns an empty registry bound to a backend and run.
func NewRegistry(backend repositories.InventoryBackend, run dto.RunContext) *Registry {
	return &Registry{
		backend: backend,
		run:     run,
		cache:   make(map[string]int64),
	}
}

func cacheKey(model, key string) string {
	return model + "::" + key
}

// fakeID derives a deterministic positive identifier for dry runs. The
// range is kept away from low IDs a real database would hand out.
func fakeID(model, key string) int64 {
	return 1_000_000 + plan.StableSeed(cacheKey(model, key))%9_000_000
}

// ensure looks a record up by domain and creates it on miss. The key must
// be the record's natural identity so dry-run IDs stay stable.
func (r *Registry) ensure(ctx context.Context, model, key string, domain []repositories.Condition, values repositories.Record, companyID int64) (int64, error) {
	ck := cacheKey(model, key)
	if id, ok := r.cache[ck]; ok {
		return id, nil
	}
	if r.run.DryRun {
		id := fakeID(model, key)
		r.cache[ck] = id
		return id, nil
	}

	found, err := r.backend.SearchRead(ctx, model, domain, repositories.SearchOptions{
		Fields:    []string{"id"},
		Limit:     1,
		CompanyID: companyID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s %q: %w", model, key, err)
	}
	if len(found) > 0 {
		id := found[0].ID()
		r.cache[ck] = id
		return id, nil
	}

	id, err := r.backend.Create(ctx, model, values, companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s %q: %w", model, key, err)
	}
	r.cache[ck] = id
	r.run.Log().WithFields(map[string]any{"model": model, "id": id}).Infof("created %q", key)
	return id, nil
}

// lookup resolves an existing record without creating it.
func (r *Registry) lookup(ctx context.Context, model, key string, domain []repositories.Condition, companyID int64) (int64, error) {
	ck := cacheKey(model, key)
	if id, ok := r.cache[ck]; ok {
		return id, nil
	}
	if r.run.DryRun {
		id := fakeID(model, key)
		r.cache[ck] = id
		return id, nil
	}
	found, err := r.backend.SearchRead(ctx, model, domain, repositories.SearchOptions{
		Fields:    []string{"id"},
		Limit:     1,
		CompanyID: companyID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s %q: %w", model, key, err)
	}
	if len(found) == 0 {
		return 0, fmt.Errorf("%s %q not found", model, key)
	}
	id := found[0].ID()
	r.cache[ck] = id
	return id, nil
}

// EnsureCountry resolves a country record by its ISO code.
func (r *Registry) EnsureCountry(ctx context.Context, code string) (int64, error) {
	code = strings.ToUpper(code)
	return r.lookup(ctx, "res.country", code,
		[]repositories.Condition{repositories.Eq("code", code)}, 0)
}

// EnsureCompany resolves or creates the per-country company.
func (r *Registry) EnsureCompany(ctx context.Context, name string) (int64, error) {
	return r.ensure(ctx, "res.company", name,
		[]repositories.Condition{repositories.Eq("name", name)},
		repositories.Record{"name": name}, 0)
}

// EnsurePartner resolves or creates a partner scoped to a company.
func (r *Registry) EnsurePartner(ctx context.Context, name string, companyID, countryID int64, vendor bool) (int64, error) {
	values := repositories.Record{
		"name":         name,
		"company_id":   companyID,
		"is_company":   true,
		"supplier_rank": 0,
		"customer_rank": 1,
	}
	if vendor {
		values["supplier_rank"] = 1
		values["customer_rank"] = 0
	}
	if countryID != 0 {
		values["country_id"] = countryID
	}
	return r.ensure(ctx, "res.partner", fmt.Sprintf("%d/%s", companyID, name),
		[]repositories.Condition{
			repositories.Eq("name", name),
			repositories.Eq("company_id", companyID),
		}, values, companyID)
}

// EnsureProductCategory resolves or creates a product category by name.
func (r *Registry) EnsureProductCategory(ctx context.Context, name string) (int64, error) {
	return r.ensure(ctx, "product.category", name,
		[]repositories.Condition{repositories.Eq("name", name)},
		repositories.Record{"name": name}, 0)
}

// UnitOfMeasure resolves a standard UoM by its display name ("Units", "kg").
func (r *Registry) UnitOfMeasure(ctx context.Context, name string) (int64, error) {
	return r.lookup(ctx, "uom.uom", name,
		[]repositories.Condition{repositories.Eq("name", name)}, 0)
}
