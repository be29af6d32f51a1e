package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildOrigin(t *testing.T) {
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	got := BuildOrigin("2025-03-20_180d_mov", "rw", "KIGAL", "SEEDS-001", KindOutbound, day, 3)
	assert.Equal(t, "SEED/2025-03-20_180d_mov/RW/KIGAL/SEEDS-001/OUT/2025-03-14/0003", got)

	// Same inputs always yield the same origin.
	again := BuildOrigin("2025-03-20_180d_mov", "rw", "KIGAL", "SEEDS-001", KindOutbound, day, 3)
	assert.Equal(t, got, again)
}

func TestLocationsByRole(t *testing.T) {
	c := &Company{
		Locations: map[string]map[string]int64{
			"KIGAL": {
				"GOOD::SECTOR_1":    11,
				"GOOD::SECTOR_2":    12,
				"TRANSIT::SECTOR_1": 21,
				"DAMAGED::SECTOR_1": 31,
			},
		},
	}

	assert.Equal(t, []int64{11, 12}, c.LocationsByRole("KIGAL", RoleGood))
	assert.Equal(t, []int64{21}, c.LocationsByRole("KIGAL", RoleTransit))
	assert.Nil(t, c.LocationsByRole("HUYE", RoleGood))
}

func TestWarehouseTier(t *testing.T) {
	assert.Equal(t, "small", TierSmall.String())
	assert.Equal(t, 1.6, TierLarge.Weight())
	assert.Equal(t, 0.55, TierMedium.ActiveShare())
}
