package migrate

import (
	"time"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
)

// Report summarizes a migration run for the reporting consumer. Counts are
// zero when the run found nothing to migrate.
type Report struct {
	Migrated     MigratedCounts `json:"migrated"`
	Improvements Improvements   `json:"improvements"`
}

// MigratedCounts holds how many records each collection had rewritten.
type MigratedCounts struct {
	Locations int `json:"locations"`
	Costs     int `json:"costs"`
}

// Improvements holds data-quality deltas observed across the run, derived by
// the caller from validator output before and after.
type Improvements struct {
	OrphanedCostsFixed int `json:"orphanedCostsFixed"`
}

// Apply rewrites a dataset through the plan's migration map and returns the
// migrated dataset plus per-collection counts. The input dataset is never
// mutated.
//
// Destinations whose id changes record the prior id in LegacyID (and in
// PlaceID too when the prior id was a place id — place ids are relocated,
// never discarded) and are stamped with migratedAt. Costs are rewritten
// through the same map; a cost whose reference is absent from the map is
// left untouched, because migration must never fabricate a destination
// reference. Sub-leg id lists are rewritten with a legacy-id trail.
func Apply(ds domain.Dataset, plan Plan, migratedAt time.Time) (domain.Dataset, MigratedCounts) {
	out := ds.Clone()
	var counts MigratedCounts

	for i := range out.Destinations {
		d := &out.Destinations[i]
		old := identity.Normalize(d.ID)
		mapped, ok := plan.Map[old]
		if !ok || mapped == old {
			continue
		}
		if identity.Classify(old) == identity.KindPlaceID {
			d.PlaceID = old
		}
		d.LegacyID = old
		d.ID = mapped
		ts := migratedAt
		d.MigratedAt = &ts
		counts.Locations++
	}

	for i := range out.Costs {
		c := &out.Costs[i]
		ref := identity.Normalize(c.DestinationID)
		if ref == "" {
			continue
		}
		mapped, ok := plan.Map[ref]
		if !ok || mapped == ref {
			// Absent from the map means the cost was already orphaned;
			// it stays orphaned rather than gaining an invented reference.
			continue
		}
		c.LegacyDestinationID = ref
		c.DestinationID = mapped
		ts := migratedAt
		c.MigratedAt = &ts
		counts.Costs++
	}

	for i := range out.Legs {
		for j := range out.Legs[i].SubLegs {
			rewriteSubLeg(&out.Legs[i].SubLegs[j], plan.Map)
		}
	}

	return out, counts
}

// rewriteSubLeg maps each destination reference through the migration map.
// Changed entries leave their old id on the legacy trail. References absent
// from the map point at no current destination; those are dropped rather
// than left stale, per the sub-leg invariant.
func rewriteSubLeg(sub *domain.SubLeg, m map[string]string) {
	var trail []string
	kept := sub.DestinationIDs[:0]
	for _, raw := range sub.DestinationIDs {
		id := identity.Normalize(raw)
		mapped, ok := m[id]
		if !ok {
			trail = append(trail, id)
			continue
		}
		if mapped != id {
			trail = append(trail, id)
		}
		kept = append(kept, mapped)
	}
	sub.DestinationIDs = kept
	if len(trail) > 0 {
		sub.LegacyDestinationIDs = append(sub.LegacyDestinationIDs, trail...)
	}
}
