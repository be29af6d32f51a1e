package masterdata

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stockseed/pkg/application/dto"
	"github.com/vsinha/stockseed/pkg/domain/entities"
	"github.com/vsinha/stockseed/pkg/infrastructure/backend/memory"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func liveRun() dto.RunContext {
	return dto.NewRunContext("2025-06-15_180d_mov", false, quietLogger())
}

func dryRun() dto.RunContext {
	return dto.NewRunContext("2025-06-15_180d_mov", true, quietLogger())
}

func TestSeedCompanyGeography(t *testing.T) {
	b := memory.New()
	b.SeedReference()
	reg := NewRegistry(b, liveRun())
	ctx := context.Background()

	company, err := reg.SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)

	assert.Equal(t, "Rwanda", company.Name)
	assert.NotZero(t, company.ID)
	assert.NotZero(t, company.CustomerID)
	require.Len(t, company.Warehouses, 5)

	for _, wh := range company.Warehouses {
		assert.NotZero(t, wh.ID)
		assert.NotZero(t, wh.ViewLocationID)
		assert.NotZero(t, wh.StockLocationID)
		assert.NotZero(t, wh.PickingTypeIn)
		assert.NotZero(t, wh.PickingTypeInternal)
		assert.NotZero(t, wh.PickingTypeOut)

		locs := company.Locations[wh.Code]
		require.NotEmpty(t, locs, wh.Code)
		// One GOOD/TRANSIT/DAMAGED triple per base unit.
		assert.Zero(t, len(locs)%len(entities.Roles))
		assert.NotEmpty(t, company.LocationsByRole(wh.Code, entities.RoleGood))
	}
}

func TestSeedCompanyGeography_Idempotent(t *testing.T) {
	b := memory.New()
	b.SeedReference()
	ctx := context.Background()

	_, err := NewRegistry(b, liveRun()).SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)

	warehouses := b.Count("stock.warehouse")
	locations := b.Count("stock.location")

	// A fresh registry must find everything instead of recreating it.
	again, err := NewRegistry(b, liveRun()).SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)

	assert.Equal(t, warehouses, b.Count("stock.warehouse"))
	assert.Equal(t, locations, b.Count("stock.location"))
	assert.Len(t, again.Warehouses, 5)
}

func TestSeedCompanyGeography_TiersStablePerWarehouse(t *testing.T) {
	ctx := context.Background()

	run := func() []entities.WarehouseTier {
		b := memory.New()
		b.SeedReference()
		company, err := NewRegistry(b, liveRun()).SeedCompanyGeography(ctx, "ke", "Kenya", entities.ScaleMedium, false)
		require.NoError(t, err)
		tiers := make([]entities.WarehouseTier, len(company.Warehouses))
		for i, wh := range company.Warehouses {
			tiers[i] = wh.Tier
		}
		return tiers
	}

	assert.Equal(t, run(), run())
}

func TestSeedCompanyGeography_DryRunCreatesNothing(t *testing.T) {
	b := memory.New()
	reg := NewRegistry(b, dryRun())

	company, err := reg.SeedCompanyGeography(context.Background(), "ug", "Uganda", entities.ScaleSmall, false)
	require.NoError(t, err)

	assert.Zero(t, b.Calls("search_read"))
	assert.Zero(t, b.Calls("create"))
	assert.Zero(t, b.Calls("write"))
	assert.Zero(t, b.Calls("invoke"))
	require.Len(t, company.Warehouses, 5)
	for _, wh := range company.Warehouses {
		assert.NotZero(t, wh.ID)
	}
}

func TestSeedCompanyGeography_DryRunIDsDeterministic(t *testing.T) {
	ctx := context.Background()

	a, err := NewRegistry(memory.New(), dryRun()).SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)
	b, err := NewRegistry(memory.New(), dryRun()).SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.Locations, b.Locations)
	for i := range a.Warehouses {
		assert.Equal(t, a.Warehouses[i].ID, b.Warehouses[i].ID)
	}
}

func TestPlanCatalog(t *testing.T) {
	specs := planCatalog("rw")

	assert.GreaterOrEqual(t, len(specs), 80)
	assert.LessOrEqual(t, len(specs), 120)
	assert.Equal(t, specs, planCatalog("rw"), "catalog derives from country alone")

	counts := map[entities.Category]int{}
	seen := map[string]bool{}
	for _, s := range specs {
		counts[s.category]++
		assert.False(t, seen[s.sku], "duplicate SKU %s", s.sku)
		seen[s.sku] = true
		assert.True(t, s.listPrice.IsPositive(), s.sku)
		assert.True(t, s.standardPrice.LessThan(s.listPrice), s.sku)
	}
	for _, cat := range entities.Categories {
		assert.NotZero(t, counts[cat], cat)
	}
	assert.GreaterOrEqual(t, counts[entities.CategoryPackaging], minPackaging)
	assert.Greater(t, counts[entities.CategorySeeds], counts[entities.CategorySpareParts])
}

func TestSeedProductsAndVendors(t *testing.T) {
	b := memory.New()
	b.SeedReference()
	reg := NewRegistry(b, liveRun())
	ctx := context.Background()

	company, err := reg.SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)
	countryID, err := reg.EnsureCountry(ctx, "rw")
	require.NoError(t, err)

	products, vendors, err := reg.SeedProductsAndVendors(ctx, company, countryID)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(products), 80)
	assert.LessOrEqual(t, len(products), 120)
	for _, p := range products {
		assert.NotZero(t, p.TemplateID, p.SKU)
		assert.NotZero(t, p.VariantID, p.SKU)
		if p.Category.MassBased() {
			assert.Equal(t, "kg", p.UoMName, p.SKU)
		} else {
			assert.Equal(t, "Units", p.UoMName, p.SKU)
		}
	}

	assert.GreaterOrEqual(t, len(vendors), 5)
	assert.LessOrEqual(t, len(vendors), 10)
	covered := map[entities.Category]bool{}
	for _, v := range vendors {
		assert.NotEmpty(t, v.Categories, v.Name)
		for _, cat := range v.Categories {
			covered[cat] = true
		}
	}
	for _, cat := range entities.Categories {
		assert.True(t, covered[cat], cat)
	}

	assert.NotZero(t, b.Count("product.supplierinfo"))
}

func TestSeedProductsAndVendors_Idempotent(t *testing.T) {
	b := memory.New()
	b.SeedReference()
	ctx := context.Background()

	first := NewRegistry(b, liveRun())
	company, err := first.SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)
	countryID, err := first.EnsureCountry(ctx, "rw")
	require.NoError(t, err)
	_, _, err = first.SeedProductsAndVendors(ctx, company, countryID)
	require.NoError(t, err)

	templates := b.Count("product.template")
	partners := b.Count("res.partner")
	supplierinfo := b.Count("product.supplierinfo")

	second := NewRegistry(b, liveRun())
	company2, err := second.SeedCompanyGeography(ctx, "rw", "Rwanda", entities.ScaleSmall, false)
	require.NoError(t, err)
	_, _, err = second.SeedProductsAndVendors(ctx, company2, countryID)
	require.NoError(t, err)

	assert.Equal(t, templates, b.Count("product.template"))
	assert.Equal(t, partners, b.Count("res.partner"))
	assert.Equal(t, supplierinfo, b.Count("product.supplierinfo"))
}
