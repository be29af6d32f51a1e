package entities

import "fmt"

// Scale controls how much of the geography and catalog a run materializes.
type Scale string

const (
	ScaleSmall  Scale = "small"
	ScaleMedium Scale = "medium"
	ScaleLarge  Scale = "large"
)

// ParseScale validates a user-supplied scale name.
func ParseScale(value string) (Scale, error) {
	switch Scale(value) {
	case ScaleSmall, ScaleMedium, ScaleLarge:
		return Scale(value), nil
	default:
		return "", fmt.Errorf("unknown scale %q (want small, medium or large)", value)
	}
}

// MaxWarehouses returns the warehouse cap per country, 0 meaning unlimited.
func (s Scale) MaxWarehouses() int {
	switch s {
	case ScaleSmall:
		return 5
	case ScaleMedium:
		return 10
	default:
		return 0
	}
}

// MaxBaseUnits returns the per-warehouse cap on served base units.
func (s Scale) MaxBaseUnits() int {
	if s == ScaleSmall {
		return 10
	}
	return 20
}

// DailyOrderVolume is the target sales-order count per company per day.
func (s Scale) DailyOrderVolume() int {
	switch s {
	case ScaleSmall:
		return 5
	case ScaleMedium:
		return 20
	default:
		return 100
	}
}

// TierFor draws a warehouse tier. Small runs skew small, large runs
// have no small warehouses at all.
func (s Scale) TierFor(roll float64) WarehouseTier {
	switch s {
	case ScaleSmall:
		if roll < 0.90 {
			return TierSmall
		}
		return TierMedium
	case ScaleMedium:
		if roll < 0.35 {
			return TierSmall
		}
		if roll < 0.85 {
			return TierMedium
		}
		return TierLarge
	default:
		if roll < 0.45 {
			return TierMedium
		}
		return TierLarge
	}
}
