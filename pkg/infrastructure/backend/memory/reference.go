package memory

import "github.com/vsinha/stockseed/pkg/domain/repositories"

// SeedReference preloads the reference data a fresh remote system already
// carries: country records and the standard units of measure. Callers
// running the generators against a bare in-memory backend need it once
// before seeding master data.
func (b *Backend) SeedReference() {
	countries := map[string]string{
		"RW": "Rwanda",
		"UG": "Uganda",
		"KE": "Kenya",
	}
	for code, name := range countries {
		b.Seed("res.country", repositories.Record{
			"id": b.nextIDLocked(), "code": code, "name": name,
		})
	}
	for _, uom := range []string{"Units", "kg"} {
		b.Seed("uom.uom", repositories.Record{
			"id": b.nextIDLocked(), "name": uom,
		})
	}
}

func (b *Backend) nextIDLocked() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allocate()
}
