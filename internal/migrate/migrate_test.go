package migrate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
	"github.com/pkordes/trip-ledger/backend/internal/migrate"
)

var migratedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func legacyDataset() domain.Dataset {
	return domain.Dataset{
		Destinations: []domain.Destination{
			{ID: "1700000000", Name: "Tokyo", Country: "Japan"},
			{ID: "ChIJ51cu8IcbXWARiRtXIothAS4", Name: "Kyoto", Country: "Japan"},
			{ID: "9f8b8f0a-3c1d-4e2f-8a1b-2c3d4e5f6a7b", Name: "Osaka"},
		},
		Costs: []domain.Cost{
			{ID: "c1", Category: domain.CategoryFlight, AmountUSD: 500, DestinationID: "1700000000"},
			{ID: "c2", Category: domain.CategoryFood, AmountUSD: 40, DestinationID: "ChIJ51cu8IcbXWARiRtXIothAS4"},
			{ID: "c3", Category: domain.CategoryOther, AmountUSD: 10, DestinationID: "gone"},
			{ID: "c4", Category: domain.CategoryOther, AmountUSD: 5},
		},
		Legs: []domain.Leg{{
			ID:   "leg-1",
			Name: "Japan",
			SubLegs: []domain.SubLeg{
				{ID: "sub-1", DestinationIDs: []string{"1700000000", "9f8b8f0a-3c1d-4e2f-8a1b-2c3d4e5f6a7b"}},
				{ID: "sub-2", DestinationIDs: []string{"9f8b8f0a-3c1d-4e2f-8a1b-2c3d4e5f6a7b"}},
			},
		}},
	}
}

func TestNewPlan_MapIsTotal(t *testing.T) {
	ds := legacyDataset()
	plan := migrate.NewPlan(ds.Destinations, migrate.ModeLegacyToUUID)

	require.Len(t, plan.Map, 3, "one entry per destination")
	for _, d := range ds.Destinations {
		_, ok := plan.Map[identity.Normalize(d.ID)]
		assert.True(t, ok, "map missing entry for %q", d.ID)
	}
}

func TestNewPlan_LegacyToUUID(t *testing.T) {
	ds := legacyDataset()
	plan := migrate.NewPlan(ds.Destinations, migrate.ModeLegacyToUUID)

	require.Equal(t, []string{"1700000000"}, plan.Candidates)
	assert.Equal(t, identity.KindUUID, identity.Classify(plan.Map["1700000000"]))

	// UUID and Place ID destinations map to themselves.
	assert.Equal(t, "ChIJ51cu8IcbXWARiRtXIothAS4", plan.Map["ChIJ51cu8IcbXWARiRtXIothAS4"])
	assert.Equal(t, "9f8b8f0a-3c1d-4e2f-8a1b-2c3d4e5f6a7b", plan.Map["9f8b8f0a-3c1d-4e2f-8a1b-2c3d4e5f6a7b"])
}

func TestNewPlan_PlaceIDToUUID(t *testing.T) {
	ds := legacyDataset()
	plan := migrate.NewPlan(ds.Destinations, migrate.ModePlaceIDToUUID)

	require.Equal(t, []string{"ChIJ51cu8IcbXWARiRtXIothAS4"}, plan.Candidates)
	assert.Equal(t, identity.KindUUID, identity.Classify(plan.Map["ChIJ51cu8IcbXWARiRtXIothAS4"]))
	// Legacy ids are untouched in place-id mode.
	assert.Equal(t, "1700000000", plan.Map["1700000000"])
}

func TestApply_AtomicRewrite(t *testing.T) {
	ds := legacyDataset()
	plan := migrate.NewPlan(ds.Destinations, migrate.ModeLegacyToUUID)

	migrated, counts := migrate.Apply(ds, plan, migratedAt)

	assert.Equal(t, 1, counts.Locations)
	assert.Equal(t, 1, counts.Costs)

	newID := plan.Map["1700000000"]
	tokyo := migrated.Destinations[0]
	assert.Equal(t, newID, tokyo.ID)
	assert.Equal(t, "1700000000", tokyo.LegacyID)
	require.NotNil(t, tokyo.MigratedAt)
	assert.Equal(t, migratedAt, *tokyo.MigratedAt)

	// The cost that referenced the old id follows it through the same map.
	flight := migrated.Costs[0]
	assert.Equal(t, newID, flight.DestinationID)
	assert.Equal(t, "1700000000", flight.LegacyDestinationID)
	require.NotNil(t, flight.MigratedAt)

	// Sub-leg references go through the same map too.
	assert.Equal(t, newID, migrated.Legs[0].SubLegs[0].DestinationIDs[0])
	assert.Equal(t, []string{"1700000000"}, migrated.Legs[0].SubLegs[0].LegacyDestinationIDs)

	// An untouched sub-leg keeps an empty trail.
	assert.Empty(t, migrated.Legs[0].SubLegs[1].LegacyDestinationIDs)
}

func TestApply_OrphanStaysOrphaned(t *testing.T) {
	ds := legacyDataset()
	plan := migrate.NewPlan(ds.Destinations, migrate.ModeLegacyToUUID)

	migrated, _ := migrate.Apply(ds, plan, migratedAt)

	// "gone" is absent from the map: the cost keeps its dangling reference
	// rather than gaining a fabricated one.
	assert.Equal(t, "gone", migrated.Costs[2].DestinationID)
	assert.Empty(t, migrated.Costs[2].LegacyDestinationID)
	assert.Nil(t, migrated.Costs[2].MigratedAt)

	// Empty references are left alone entirely.
	assert.Empty(t, migrated.Costs[3].DestinationID)
}

func TestApply_DropsDanglingSubLegRefs(t *testing.T) {
	ds := legacyDataset()
	ds.Legs[0].SubLegs[0].DestinationIDs = append(ds.Legs[0].SubLegs[0].DestinationIDs, "gone")

	plan := migrate.NewPlan(ds.Destinations, migrate.ModeLegacyToUUID)
	migrated, _ := migrate.Apply(ds, plan, migratedAt)

	ids := migrated.Legs[0].SubLegs[0].DestinationIDs
	assert.NotContains(t, ids, "gone")
	assert.Len(t, ids, 2)
	assert.Contains(t, migrated.Legs[0].SubLegs[0].LegacyDestinationIDs, "gone")
}

func TestApply_PlaceIDPreserved(t *testing.T) {
	ds := legacyDataset()
	plan := migrate.NewPlan(ds.Destinations, migrate.ModePlaceIDToUUID)

	migrated, counts := migrate.Apply(ds, plan, migratedAt)
	require.Equal(t, 1, counts.Locations)

	kyoto := migrated.Destinations[1]
	assert.Equal(t, identity.KindUUID, identity.Classify(kyoto.ID))
	assert.Equal(t, "ChIJ51cu8IcbXWARiRtXIothAS4", kyoto.PlaceID, "place id relocated, not discarded")
	assert.Equal(t, "ChIJ51cu8IcbXWARiRtXIothAS4", kyoto.LegacyID)
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	ds := legacyDataset()
	plan := migrate.NewPlan(ds.Destinations, migrate.ModeLegacyToUUID)

	_, _ = migrate.Apply(ds, plan, migratedAt)

	assert.Equal(t, "1700000000", ds.Destinations[0].ID)
	assert.Equal(t, "1700000000", ds.Costs[0].DestinationID)
	assert.Equal(t, "1700000000", ds.Legs[0].SubLegs[0].DestinationIDs[0])
	assert.Empty(t, ds.Destinations[0].LegacyID)
}

// Running plan+apply a second time on the already-migrated dataset is a no-op.
func TestMigration_Idempotent(t *testing.T) {
	ds := legacyDataset()
	first := migrate.NewPlan(ds.Destinations, migrate.ModeLegacyToUUID)
	migrated, _ := migrate.Apply(ds, first, migratedAt)

	second := migrate.NewPlan(migrated.Destinations, migrate.ModeLegacyToUUID)
	assert.Empty(t, second.Candidates, "second run must find zero candidates")

	again, counts := migrate.Apply(migrated, second, migratedAt.Add(time.Hour))
	assert.Zero(t, counts.Locations)
	assert.Zero(t, counts.Costs)
	assert.Equal(t, migrated, again)
}

func TestParseMode(t *testing.T) {
	mode, err := migrate.ParseMode("legacyToUuid")
	require.NoError(t, err)
	assert.Equal(t, migrate.ModeLegacyToUUID, mode)

	mode, err = migrate.ParseMode("placeIdToUuid")
	require.NoError(t, err)
	assert.Equal(t, migrate.ModePlaceIDToUUID, mode)

	_, err = migrate.ParseMode("sideways")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
