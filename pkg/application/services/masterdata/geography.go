package masterdata

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/vsinha/stockseed/pkg/application/services/plan"
	"github.com/vsinha/stockseed/pkg/domain/entities"
	"github.com/vsinha/stockseed/pkg/domain/repositories"
	"github.com/vsinha/stockseed/pkg/infrastructure/geo"
)

// EnsureWarehouse resolves or creates a warehouse and resolves its stock
// locations and the three picking types that move stock through it.
func (r *Registry) EnsureWarehouse(ctx context.Context, companyID int64, name, code string) (entities.Warehouse, error) {
	wh := entities.Warehouse{Name: name, Code: code}

	if r.run.DryRun {
		key := fmt.Sprintf("%d/%s", companyID, name)
		wh.ID = fakeID("stock.warehouse", key)
		wh.ViewLocationID = fakeID("stock.warehouse/view", key)
		wh.StockLocationID = fakeID("stock.warehouse/stock", key)
		wh.PickingTypeIn = fakeID("stock.picking.type", name+"/incoming")
		wh.PickingTypeInternal = fakeID("stock.picking.type", name+"/internal")
		wh.PickingTypeOut = fakeID("stock.picking.type", name+"/outgoing")
		return wh, nil
	}

	found, err := r.backend.SearchRead(ctx, "stock.warehouse",
		[]repositories.Condition{
			repositories.Eq("name", name),
			repositories.Eq("company_id", companyID),
		},
		repositories.SearchOptions{
			Fields:    []string{"id", "code", "view_location_id", "lot_stock_id"},
			Limit:     1,
			CompanyID: companyID,
		})
	if err != nil {
		return wh, fmt.Errorf("failed to look up warehouse %q: %w", name, err)
	}

	switch {
	case len(found) > 0:
		rec := found[0]
		wh.ID = rec.ID()
		if existing := rec.Str("code"); existing != "" {
			wh.Code = existing
		}
		wh.ViewLocationID = rec.Relation("view_location_id")
		wh.StockLocationID = rec.Relation("lot_stock_id")
	default:
		id, err := r.backend.Create(ctx, "stock.warehouse", repositories.Record{
			"name":       name,
			"code":       code,
			"company_id": companyID,
		}, companyID)
		if err != nil {
			return wh, fmt.Errorf("failed to create warehouse %q: %w", name, err)
		}
		wh.ID = id
		created, err := r.backend.SearchRead(ctx, "stock.warehouse",
			[]repositories.Condition{repositories.Eq("id", id)},
			repositories.SearchOptions{
				Fields:    []string{"view_location_id", "lot_stock_id"},
				Limit:     1,
				CompanyID: companyID,
			})
		if err != nil || len(created) == 0 {
			return wh, fmt.Errorf("failed to read back warehouse %q: %w", name, err)
		}
		wh.ViewLocationID = created[0].Relation("view_location_id")
		wh.StockLocationID = created[0].Relation("lot_stock_id")
		r.run.Log().WithFields(logrus.Fields{"warehouse": name, "id": id}).Info("created warehouse")
	}

	wh.PickingTypeIn, err = r.pickingType(ctx, companyID, wh.ID, name, "incoming")
	if err != nil {
		return wh, err
	}
	wh.PickingTypeInternal, err = r.pickingType(ctx, companyID, wh.ID, name, "internal")
	if err != nil {
		return wh, err
	}
	wh.PickingTypeOut, err = r.pickingType(ctx, companyID, wh.ID, name, "outgoing")
	if err != nil {
		return wh, err
	}
	return wh, nil
}

func (r *Registry) pickingType(ctx context.Context, companyID, warehouseID int64, warehouseName, code string) (int64, error) {
	key := fmt.Sprintf("%s/%s", warehouseName, code)
	ck := cacheKey("stock.picking.type", key)
	if id, ok := r.cache[ck]; ok {
		return id, nil
	}
	found, err := r.backend.SearchRead(ctx, "stock.picking.type",
		[]repositories.Condition{
			repositories.Eq("warehouse_id", warehouseID),
			repositories.Eq("code", code),
		},
		repositories.SearchOptions{Fields: []string{"id"}, Limit: 1, CompanyID: companyID})
	if err != nil {
		return 0, fmt.Errorf("failed to look up %s picking type of %q: %w", code, warehouseName, err)
	}
	if len(found) == 0 {
		return 0, fmt.Errorf("warehouse %q has no %s picking type", warehouseName, code)
	}
	id := found[0].ID()
	r.cache[ck] = id
	return id, nil
}

// EnsureLocation resolves or creates one internal location under a parent.
func (r *Registry) EnsureLocation(ctx context.Context, companyID, parentID int64, name string) (int64, error) {
	return r.ensure(ctx, "stock.location", fmt.Sprintf("%d/%s", parentID, name),
		[]repositories.Condition{
			repositories.Eq("name", name),
			repositories.Eq("location_id", parentID),
		},
		repositories.Record{
			"name":        name,
			"location_id": parentID,
			"usage":       "internal",
			"company_id":  companyID,
		}, companyID)
}

// SeedCompanyGeography materializes one country: company, generic customer
// partner, warehouses capped by scale, and a GOOD/TRANSIT/DAMAGED location
// triple per base unit under each warehouse. Tiers are drawn from an RNG
// seeded by country alone, so the same warehouse keeps its tier across
// runs and window sizes.
func (r *Registry) SeedCompanyGeography(ctx context.Context, countryCode, countryName string, scale entities.Scale, fullGeo bool) (*entities.Company, error) {
	companyID, err := r.EnsureCompany(ctx, countryName)
	if err != nil {
		return nil, err
	}
	countryID, err := r.EnsureCountry(ctx, countryCode)
	if err != nil {
		return nil, err
	}
	customerID, err := r.EnsurePartner(ctx, countryName+" Field Customers", companyID, countryID, false)
	if err != nil {
		return nil, err
	}

	plannedGeo, err := geo.Plan(countryCode, scale, fullGeo)
	if err != nil {
		return nil, err
	}

	company := &entities.Company{
		ID:          companyID,
		Name:        countryName,
		CountryCode: countryCode,
		CustomerID:  customerID,
		Locations:   make(map[string]map[string]int64),
	}

	rng := rand.New(rand.NewSource(plan.StableSeed("masterdata/tiers/" + countryCode)))
	usedCodes := make(map[string]bool)

	for _, whGeo := range plannedGeo {
		code := uniqueCode(entities.ShortCode(entities.Slugify(whGeo.WarehouseName)), usedCodes)
		wh, err := r.EnsureWarehouse(ctx, companyID, whGeo.WarehouseName, code)
		if err != nil {
			return nil, err
		}
		wh.Tier = scale.TierFor(rng.Float64())

		locs := make(map[string]int64, len(whGeo.BaseUnits)*len(entities.Roles))
		for _, baseUnit := range whGeo.BaseUnits {
			baseSlug := entities.Slugify(baseUnit)
			for _, role := range entities.Roles {
				locName := entities.BuildLocationName(whGeo.WarehouseName, role, baseUnit)
				locID, err := r.EnsureLocation(ctx, companyID, wh.ViewLocationID, locName)
				if err != nil {
					return nil, err
				}
				locs[entities.LocationKey(role, baseSlug)] = locID
			}
		}
		company.Locations[wh.Code] = locs
		company.Warehouses = append(company.Warehouses, wh)
	}

	r.run.Log().WithFields(logrus.Fields{
		"country":    countryCode,
		"warehouses": len(company.Warehouses),
	}).Info("geography ready")
	return company, nil
}

// uniqueCode disambiguates colliding warehouse short codes within one
// company by replacing the tail with a counter.
func uniqueCode(code string, used map[string]bool) string {
	if !used[code] {
		used[code] = true
		return code
	}
	for i := 2; ; i++ {
		suffix := fmt.Sprintf("%d", i)
		trimmed := code
		if len(trimmed)+len(suffix) > 5 {
			trimmed = trimmed[:5-len(suffix)]
		}
		candidate := trimmed + suffix
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}
