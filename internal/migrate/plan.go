// Package migrate plans and applies identifier migrations over a dataset.
//
// A migration run has two phases, deliberately decoupled: NewPlan computes a
// total migration map (every destination id maps, unchanged ids to
// themselves) with no side effects, and Apply rewrites destinations, costs,
// and legs through that one map. Building the full map first and then
// applying it to all three collections is what makes a partial rewrite —
// destinations renamed but costs left pointing at old ids — impossible by
// construction.
package migrate

import (
	"fmt"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
)

// Mode selects which identifier generation a migration run targets.
type Mode string

// Migration modes.
const (
	// ModeLegacyToUUID migrates timestamp-shaped and opaque legacy ids.
	ModeLegacyToUUID Mode = "legacyToUuid"
	// ModePlaceIDToUUID migrates Place-ID-keyed destinations, preserving the
	// place id as destination metadata.
	ModePlaceIDToUUID Mode = "placeIdToUuid"
)

// ParseMode validates a wire-format mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLegacyToUUID, ModePlaceIDToUUID:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: unknown migration mode %q", domain.ErrValidation, s)
}

// Plan is the output of NewPlan: a total map from every destination's
// normalized id to its (possibly unchanged) post-migration id, plus the
// normalized ids of the destinations that actually need migrating.
type Plan struct {
	Map        map[string]string
	Candidates []string
}

// NewPlan computes the migration map for the given mode. Pure computation:
// no input is mutated and nothing outside the returned plan is touched.
//
// The map is total — it contains an entry for every destination's normalized
// id — so downstream rewriting treats "migrate" and "no-op" uniformly.
func NewPlan(destinations []domain.Destination, mode Mode) Plan {
	plan := Plan{Map: make(map[string]string, len(destinations))}
	for _, d := range destinations {
		id := identity.Normalize(d.ID)
		if _, ok := plan.Map[id]; ok {
			// Duplicate ids are a validator error; the plan keeps the first
			// mapping so both duplicates still rewrite consistently.
			continue
		}
		if needsMigration(identity.Classify(id), mode) {
			plan.Map[id] = identity.NewUUID()
			plan.Candidates = append(plan.Candidates, id)
		} else {
			plan.Map[id] = id
		}
	}
	return plan
}

func needsMigration(kind identity.Kind, mode Mode) bool {
	switch mode {
	case ModeLegacyToUUID:
		return kind == identity.KindTimestampLegacy || kind == identity.KindOpaqueLegacy
	case ModePlaceIDToUUID:
		return kind == identity.KindPlaceID
	}
	return false
}
