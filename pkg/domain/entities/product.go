package entities

// Category is the product category; every product belongs to exactly one.
type Category string

const (
	CategorySeeds      Category = "Seeds"
	CategoryFertilizer Category = "Fertilizer"
	CategoryPesticides Category = "Pesticides"
	CategoryTools      Category = "Tools"
	CategorySpareParts Category = "Spare Parts"
	CategoryPackaging  Category = "Packaging"
)

// Categories lists all product categories in portfolio order.
var Categories = []Category{
	CategorySeeds,
	CategoryFertilizer,
	CategoryPesticides,
	CategoryTools,
	CategorySpareParts,
	CategoryPackaging,
}

// MassBased reports whether the category is measured in kilograms rather
// than counted units.
func (c Category) MassBased() bool {
	return c == CategorySeeds || c == CategoryFertilizer
}

// SKUPrefix is the five-letter code SKUs of this category start with.
func (c Category) SKUPrefix() string {
	switch c {
	case CategorySeeds:
		return "SEEDS"
	case CategoryFertilizer:
		return "FERTI"
	case CategoryPesticides:
		return "PESTI"
	case CategoryTools:
		return "TOOLS"
	case CategorySpareParts:
		return "SPARE"
	default:
		return "PACKA"
	}
}

// Product is one sellable SKU. The SKU code is the idempotent identity key.
type Product struct {
	TemplateID int64
	VariantID  int64
	SKU        string
	Name       string
	Category   Category
	UoMID      int64
	UoMName    string
}

// Vendor supplies products, biased toward its preferred categories.
type Vendor struct {
	ID          int64
	Name        string
	CountryCode string
	Categories  []Category
}
