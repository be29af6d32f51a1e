// Package geo ships the administrative geography each supported country
// is seeded from. Warehouse names come from districts (or counties) and
// base units from the subdivision one level below; the data is embedded
// so runs are reproducible without network access.
package geo

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

//go:embed data/*.json
var dataFS embed.FS

type geoEntry struct {
	Name      string   `json:"name"`
	BaseUnits []string `json:"base_units"`
}

// WarehouseGeo is one planned warehouse with the base units it serves.
type WarehouseGeo struct {
	CountryCode   string
	WarehouseName string
	BaseUnits     []string
}

// BaseUnitLabel names the subdivision level used for a country's
// stock locations.
func BaseUnitLabel(countryCode string) string {
	switch countryCode {
	case "rw":
		return "Sector"
	case "ke":
		return "Sub-county"
	case "ug":
		return "County"
	default:
		return "Zone"
	}
}

func loadCountry(countryCode string) ([]geoEntry, error) {
	raw, err := dataFS.ReadFile(fmt.Sprintf("data/geo_%s.json", countryCode))
	if err != nil {
		return nil, fmt.Errorf("no geography data for country %q: %w", countryCode, err)
	}

	var entries []geoEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse geography for %q: %w", countryCode, err)
	}
	return entries, nil
}

// Plan returns the warehouses to materialize for a country, in data-file
// order, capped by scale unless fullGeo asks for everything.
func Plan(countryCode string, scale entities.Scale, fullGeo bool) ([]WarehouseGeo, error) {
	entries, err := loadCountry(countryCode)
	if err != nil {
		return nil, err
	}

	maxWarehouses := scale.MaxWarehouses()
	maxUnits := scale.MaxBaseUnits()

	plan := make([]WarehouseGeo, 0, len(entries))
	for _, e := range entries {
		if !fullGeo && maxWarehouses > 0 && len(plan) >= maxWarehouses {
			break
		}
		units := e.BaseUnits
		if !fullGeo && len(units) > maxUnits {
			units = units[:maxUnits]
		}
		plan = append(plan, WarehouseGeo{
			CountryCode:   countryCode,
			WarehouseName: e.Name,
			BaseUnits:     units,
		})
	}
	return plan, nil
}

// SupportedCountries lists the country codes with embedded geography.
func SupportedCountries() []string {
	return []string{"rw", "ug", "ke"}
}
