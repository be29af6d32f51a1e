package entities

import "sort"

// LocationRole classifies the internal locations created per base unit.
type LocationRole string

const (
	RoleGood    LocationRole = "GOOD"
	RoleTransit LocationRole = "TRANSIT"
	RoleDamaged LocationRole = "DAMAGED"
)

// Roles lists every internal location role in creation order.
var Roles = []LocationRole{RoleGood, RoleTransit, RoleDamaged}

// WarehouseTier is the throughput size class assigned to a warehouse.
type WarehouseTier int

const (
	TierSmall WarehouseTier = iota
	TierMedium
	TierLarge
)

// String method for WarehouseTier enum
func (t WarehouseTier) String() string {
	switch t {
	case TierSmall:
		return "small"
	case TierMedium:
		return "medium"
	case TierLarge:
		return "large"
	default:
		return "unknown"
	}
}

// Weight returns the throughput multiplier applied by the tier.
func (t WarehouseTier) Weight() float64 {
	switch t {
	case TierSmall:
		return 0.7
	case TierLarge:
		return 1.6
	default:
		return 1.0
	}
}

// ActiveShare returns the fraction of the SKU portfolio a warehouse of
// this tier participates in.
func (t WarehouseTier) ActiveShare() float64 {
	switch t {
	case TierSmall:
		return 0.35
	case TierLarge:
		return 0.75
	default:
		return 0.55
	}
}

// Warehouse is a physical warehouse belonging to exactly one company.
// Created once, immutable thereafter.
type Warehouse struct {
	ID                  int64
	Name                string
	Code                string
	Tier                WarehouseTier
	ViewLocationID      int64
	StockLocationID     int64
	PickingTypeIn       int64
	PickingTypeInternal int64
	PickingTypeOut      int64
}

// LocationKey identifies one internal location under a warehouse by role
// and base-unit slug.
func LocationKey(role LocationRole, baseSlug string) string {
	return string(role) + "::" + baseSlug
}

// Company is the per-country legal entity owning warehouses and their
// internal locations. Locations maps warehouse code to LocationKey to
// backend location ID.
type Company struct {
	ID          int64
	Name        string
	CountryCode string
	CustomerID  int64
	Warehouses  []Warehouse
	Locations   map[string]map[string]int64
}

// LocationsByRole returns the location IDs of the given role for a
// warehouse, in stable (sorted key) order.
func (c *Company) LocationsByRole(warehouseCode string, role LocationRole) []int64 {
	locs := c.Locations[warehouseCode]
	if len(locs) == 0 {
		return nil
	}
	prefix := string(role) + "::"
	keys := make([]string, 0, len(locs))
	for k := range locs {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]int64, 0, len(keys))
	for _, k := range keys {
		out = append(out, locs[k])
	}
	return out
}
