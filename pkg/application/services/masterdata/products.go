package masterdata

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/vsinha/stockseed/pkg/application/services/plan"
	"github.com/vsinha/stockseed/pkg/domain/entities"
	"github.com/vsinha/stockseed/pkg/domain/repositories"
)

const (
	minCatalogSize = 80
	maxCatalogSize = 120
	minPackaging   = 8
	minVendors     = 5
	maxVendors     = 10
)

// categoryShare is the target portfolio fraction per category; packaging
// absorbs the remainder.
var categoryShare = map[entities.Category]float64{
	entities.CategorySeeds:      0.26,
	entities.CategoryFertilizer: 0.22,
	entities.CategoryPesticides: 0.16,
	entities.CategoryTools:      0.18,
	entities.CategorySpareParts: 0.10,
}

var nameStems = map[entities.Category][]string{
	entities.CategorySeeds: {
		"Hybrid Maize Seed", "Climbing Bean Seed", "Bush Bean Seed", "Irish Potato Seed",
		"Upland Rice Seed", "Sorghum Seed", "Soybean Seed", "Groundnut Seed",
		"Sunflower Seed", "Wheat Seed", "Cabbage Seed", "Tomato Seed",
	},
	entities.CategoryFertilizer: {
		"NPK 17-17-17", "NPK 25-5-5", "Urea 46%", "DAP", "Organic Compost",
		"Lime Granules", "Potash Blend", "Foliar Feed",
	},
	entities.CategoryPesticides: {
		"Insecticide Concentrate", "Fungicide Powder", "Herbicide Spray",
		"Aphid Control", "Storage Dust", "Seed Dressing",
	},
	entities.CategoryTools: {
		"Hand Hoe", "Panga Machete", "Watering Can", "Knapsack Sprayer",
		"Wheelbarrow", "Pruning Shears", "Spade", "Rake", "Sickle",
	},
	entities.CategorySpareParts: {
		"Sprayer Nozzle Kit", "Pump Diaphragm", "Sprayer Lance", "Tank Lid",
		"Hose Clamp Set", "Valve Assembly",
	},
	entities.CategoryPackaging: {
		"Woven Sack", "Hermetic Bag", "Carton Box", "Pallet Wrap",
		"Twine Roll", "Label Sheet",
	},
}

var sizeVariants = map[entities.Category][]string{
	entities.CategorySeeds:      {"2kg", "5kg", "10kg", "25kg"},
	entities.CategoryFertilizer: {"10kg", "25kg", "50kg"},
	entities.CategoryPesticides: {"250ml", "500ml", "1L", "5L"},
	entities.CategoryTools:      {"Standard", "Heavy Duty", "Compact"},
	entities.CategorySpareParts: {"Type A", "Type B", "Universal"},
	entities.CategoryPackaging:  {"50kg", "90kg", "100pc", "Roll"},
}

type priceRange struct{ lo, hi float64 }

var listPrices = map[entities.Category]priceRange{
	entities.CategorySeeds:      {2.0, 12.0},
	entities.CategoryFertilizer: {1.0, 4.0},
	entities.CategoryPesticides: {8.0, 30.0},
	entities.CategoryTools:      {5.0, 60.0},
	entities.CategorySpareParts: {2.0, 25.0},
	entities.CategoryPackaging:  {0.2, 2.0},
}

var vendorStyles = []string{
	"%s Agro Supplies Ltd", "%s Farm Inputs Co", "%s Agri Distributors",
	"%s Seed House", "%s Rural Traders", "%s Input Wholesalers",
	"%s Growers Cooperative", "%s Agrochem Ltd", "%s Harvest Partners",
	"%s Field Services Ltd",
}

// catalogSpec is the deterministic plan for one product before backend IDs
// are resolved.
type catalogSpec struct {
	sku           string
	name          string
	category      entities.Category
	listPrice     decimal.Decimal
	standardPrice decimal.Decimal
}

// planCatalog derives the country's product catalog from the country seed
// alone. Window size and run date do not influence the catalog, so every
// run against the same country converges on the same SKUs.
func planCatalog(countryCode string) []catalogSpec {
	rng := rand.New(rand.NewSource(plan.StableSeed("masterdata/catalog/" + countryCode)))

	total := minCatalogSize + rng.Intn(maxCatalogSize-minCatalogSize+1)
	counts := make(map[entities.Category]int, len(entities.Categories))
	assigned := 0
	for _, cat := range entities.Categories {
		if share, ok := categoryShare[cat]; ok {
			counts[cat] = int(share * float64(total))
			assigned += counts[cat]
		}
	}
	counts[entities.CategoryPackaging] = max(total-assigned, minPackaging)

	var specs []catalogSpec
	for _, cat := range entities.Categories {
		stems := nameStems[cat]
		sizes := sizeVariants[cat]
		prices := listPrices[cat]
		for i := 0; i < counts[cat]; i++ {
			stem := stems[rng.Intn(len(stems))]
			size := sizes[rng.Intn(len(sizes))]
			list := prices.lo + rng.Float64()*(prices.hi-prices.lo)
			cost := list * (0.55 + rng.Float64()*0.2)
			specs = append(specs, catalogSpec{
				sku:           fmt.Sprintf("%s-%03d", cat.SKUPrefix(), i+1),
				name:          fmt.Sprintf("%s %s", stem, size),
				category:      cat,
				listPrice:     decimal.NewFromFloat(list).Round(2),
				standardPrice: decimal.NewFromFloat(cost).Round(2),
			})
		}
	}
	return specs
}

// EnsureProduct resolves or creates a product template by SKU and resolves
// its variant.
func (r *Registry) EnsureProduct(ctx context.Context, spec catalogSpec, categoryID, uomID int64, uomName string) (entities.Product, error) {
	p := entities.Product{
		SKU:      spec.sku,
		Name:     spec.name,
		Category: spec.category,
		UoMID:    uomID,
		UoMName:  uomName,
	}

	list, _ := spec.listPrice.Float64()
	cost, _ := spec.standardPrice.Float64()
	templateID, err := r.ensure(ctx, "product.template", spec.sku,
		[]repositories.Condition{repositories.Eq("default_code", spec.sku)},
		repositories.Record{
			"name":           spec.name,
			"default_code":   spec.sku,
			"type":           "product",
			"categ_id":       categoryID,
			"uom_id":         uomID,
			"uom_po_id":      uomID,
			"list_price":     list,
			"standard_price": cost,
		}, 0)
	if err != nil {
		return p, err
	}
	p.TemplateID = templateID

	p.VariantID, err = r.lookup(ctx, "product.product", spec.sku,
		[]repositories.Condition{repositories.Eq("default_code", spec.sku)}, 0)
	if err != nil {
		return p, err
	}
	return p, nil
}

// EnsureSupplierInfo links a vendor to a product template with a price and
// a lead time in days.
func (r *Registry) EnsureSupplierInfo(ctx context.Context, vendorID, templateID int64, price decimal.Decimal, delayDays int) error {
	priceF, _ := price.Float64()
	_, err := r.ensure(ctx, "product.supplierinfo",
		fmt.Sprintf("%d/%d", vendorID, templateID),
		[]repositories.Condition{
			repositories.Eq("partner_id", vendorID),
			repositories.Eq("product_tmpl_id", templateID),
		},
		repositories.Record{
			"partner_id":      vendorID,
			"product_tmpl_id": templateID,
			"price":           priceF,
			"delay":           delayDays,
		}, 0)
	return err
}

// SeedProductsAndVendors materializes the country catalog and its supplier
// base: 80 to 120 products across all six categories, 5 to 10 vendors each
// biased toward one to three categories, every category covered by at
// least one vendor, and a supplierinfo link for up to two vendors per
// product.
func (r *Registry) SeedProductsAndVendors(ctx context.Context, company *entities.Company, countryID int64) ([]entities.Product, []entities.Vendor, error) {
	unitID, err := r.UnitOfMeasure(ctx, "Units")
	if err != nil {
		return nil, nil, err
	}
	kgID, err := r.UnitOfMeasure(ctx, "kg")
	if err != nil {
		return nil, nil, err
	}

	categoryIDs := make(map[entities.Category]int64, len(entities.Categories))
	for _, cat := range entities.Categories {
		id, err := r.EnsureProductCategory(ctx, string(cat))
		if err != nil {
			return nil, nil, err
		}
		categoryIDs[cat] = id
	}

	specs := planCatalog(company.CountryCode)
	products := make([]entities.Product, 0, len(specs))
	specBySKU := make(map[string]catalogSpec, len(specs))
	for _, spec := range specs {
		uomID, uomName := unitID, "Units"
		if spec.category.MassBased() {
			uomID, uomName = kgID, "kg"
		}
		p, err := r.EnsureProduct(ctx, spec, categoryIDs[spec.category], uomID, uomName)
		if err != nil {
			return nil, nil, err
		}
		products = append(products, p)
		specBySKU[p.SKU] = spec
	}

	vendors, err := r.seedVendors(ctx, company, countryID)
	if err != nil {
		return nil, nil, err
	}

	vendorsByCategory := make(map[entities.Category][]entities.Vendor)
	for _, v := range vendors {
		for _, cat := range v.Categories {
			vendorsByCategory[cat] = append(vendorsByCategory[cat], v)
		}
	}

	rng := rand.New(rand.NewSource(plan.StableSeed("masterdata/supply/" + company.CountryCode)))
	for _, p := range products {
		candidates := vendorsByCategory[p.Category]
		if len(candidates) == 0 {
			continue
		}
		links := min(len(candidates), 1+rng.Intn(2))
		for _, idx := range rng.Perm(len(candidates))[:links] {
			spec := specBySKU[p.SKU]
			markup := decimal.NewFromFloat(1.02 + rng.Float64()*0.13)
			price := spec.standardPrice.Mul(markup).Round(2)
			delay := 3 + rng.Intn(12)
			if err := r.EnsureSupplierInfo(ctx, candidates[idx].ID, p.TemplateID, price, delay); err != nil {
				return nil, nil, err
			}
		}
	}

	r.run.Log().WithFields(logrus.Fields{
		"country":  company.CountryCode,
		"products": len(products),
		"vendors":  len(vendors),
	}).Info("catalog ready")
	return products, vendors, nil
}

func (r *Registry) seedVendors(ctx context.Context, company *entities.Company, countryID int64) ([]entities.Vendor, error) {
	rng := rand.New(rand.NewSource(plan.StableSeed("masterdata/vendors/" + company.CountryCode)))

	count := minVendors + rng.Intn(maxVendors-minVendors+1)
	vendors := make([]entities.Vendor, 0, count)
	covered := make(map[entities.Category]bool)

	for i := 0; i < count; i++ {
		style := vendorStyles[i%len(vendorStyles)]
		name := fmt.Sprintf(style, company.Name)
		if i >= len(vendorStyles) {
			name = fmt.Sprintf("%s %d", name, i+1)
		}

		picks := 1 + rng.Intn(3)
		perm := rng.Perm(len(entities.Categories))
		cats := make([]entities.Category, 0, picks)
		for _, idx := range perm[:picks] {
			cats = append(cats, entities.Categories[idx])
			covered[entities.Categories[idx]] = true
		}

		id, err := r.EnsurePartner(ctx, name, company.ID, countryID, true)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, entities.Vendor{
			ID:          id,
			Name:        name,
			CountryCode: company.CountryCode,
			Categories:  cats,
		})
	}

	// Every category must have at least one supplier; bolt uncovered
	// categories onto existing vendors round-robin.
	i := 0
	for _, cat := range entities.Categories {
		if covered[cat] {
			continue
		}
		vendors[i%len(vendors)].Categories = append(vendors[i%len(vendors)].Categories, cat)
		i++
	}
	return vendors, nil
}
