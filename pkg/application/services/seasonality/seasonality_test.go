package seasonality

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/stockseed/pkg/domain/entities"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSeasonalMultiplier_Deterministic(t *testing.T) {
	d := day(2025, 3, 1)
	a := SeasonalMultiplier("rw", entities.CategorySeeds, d)
	b := SeasonalMultiplier("rw", entities.CategorySeeds, d)
	assert.Equal(t, a, b)
}

func TestSeasonalMultiplier_PeakVersusOffSeason(t *testing.T) {
	// Season A in Rwanda starts Feb 10; mid-March is inside the seeds peak.
	peak := SeasonalMultiplier("rw", entities.CategorySeeds, day(2025, 3, 5))
	off := SeasonalMultiplier("rw", entities.CategorySeeds, day(2025, 6, 20))

	assert.Greater(t, peak, off)
	assert.InDelta(t, 1.0, off, 0.01, "off-season stays at baseline")
}

func TestSeasonalMultiplier_FertilizerLagsSeeds(t *testing.T) {
	// Shortly after season start seeds ramp before fertilizer does.
	d := day(2025, 2, 20)
	seeds := SeasonalMultiplier("rw", entities.CategorySeeds, d)
	fertilizer := SeasonalMultiplier("rw", entities.CategoryFertilizer, d)

	assert.Greater(t, seeds, 1.0)
	assert.InDelta(t, 1.0, fertilizer, 0.01, "fertilizer pulse has not started yet")
}

func TestSeasonalMultiplier_AlwaysNonnegative(t *testing.T) {
	for _, cc := range []string{"rw", "ke", "ug", "zz"} {
		for _, cat := range entities.Categories {
			d := day(2025, 1, 1)
			for i := 0; i < 365; i++ {
				m := SeasonalMultiplier(cc, cat, d.AddDate(0, 0, i))
				require.GreaterOrEqual(t, m, 0.0)
			}
		}
	}
}

func TestWeekdayMultiplier(t *testing.T) {
	sunday := day(2025, 6, 15)
	require.Equal(t, time.Sunday, sunday.Weekday())
	saturday := sunday.AddDate(0, 0, -1)
	tuesday := sunday.AddDate(0, 0, 2)

	assert.Equal(t, 0.15, WeekdayMultiplier(entities.KindOutbound, sunday))
	assert.Equal(t, 0.65, WeekdayMultiplier(entities.KindOutbound, saturday))
	assert.Equal(t, 0.25, WeekdayMultiplier(entities.KindInbound, saturday))
	assert.Equal(t, 1.2, WeekdayMultiplier(entities.KindInternal, tuesday))
	assert.Equal(t, 0.4, WeekdayMultiplier(entities.KindInternal, sunday))
	assert.Equal(t, 1.0, WeekdayMultiplier(entities.KindDamage, sunday))
}

func TestDemandIntensity_SeededDeterminism(t *testing.T) {
	a := DemandIntensity(rand.New(rand.NewSource(42)))
	b := DemandIntensity(rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestDemandIntensity_IsNoiseOnly(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		v := DemandIntensity(rng)
		require.GreaterOrEqual(t, v, 0.9)
		require.LessOrEqual(t, v, 1.1)
	}
}

func TestBoundedNormal(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		v := BoundedNormal(10, 3, rng)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, 10+4*3.0)
	}
}
