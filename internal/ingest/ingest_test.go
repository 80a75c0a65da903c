package ingest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/ingest"
)

func strPtr(s string) *string { return &s }

func TestDataset_DecodesMixedGenerations(t *testing.T) {
	data := []byte(`{
		"destinations": [
			{"id": 1700000000, "name": "Tokyo", "duration_days": 5},
			{"id": "ChIJ51cu8IcbXWARiRtXIothAS4", "name": "Kyoto",
			 "arrivalDate": "2026-04-01", "departureDate": "2026-04-03"}
		],
		"costs": [
			{"id": "c1", "category": "flight", "amount_usd": 500, "destination_id": "1700000000"},
			{"id": "c2", "category": "souvenirs", "amountUsd": 20, "destinationId": "ChIJ51cu8IcbXWARiRtXIothAS4"}
		],
		"legs": [
			{"id": "l1", "name": "Japan", "start_date": "2026-04-01",
			 "sub_legs": [{"id": "s1", "destination_ids": [1700000000]}]}
		]
	}`)

	ds, err := ingest.Dataset(data)
	require.NoError(t, err)

	require.Len(t, ds.Destinations, 2)
	assert.Equal(t, "1700000000", ds.Destinations[0].ID, "numeric ids become strings")
	assert.Equal(t, 5, ds.Destinations[0].DurationDays)
	assert.Equal(t, 3, ds.Destinations[1].DurationDays, "derived from dates when absent")

	require.Len(t, ds.Costs, 2)
	assert.Equal(t, domain.CategoryOther, ds.Costs[1].Category, "unknown category folds to other")

	require.Len(t, ds.Legs, 1)
	assert.Equal(t, "2026-04-01", ds.Legs[0].StartDate)
	require.Len(t, ds.Legs[0].SubLegs, 1)
	assert.Equal(t, []string{"1700000000"}, ds.Legs[0].SubLegs[0].DestinationIDs)
}

func TestDataset_MalformedDocument(t *testing.T) {
	_, err := ingest.Dataset([]byte(`{"destinations": "nope"`))
	assert.Error(t, err)
}

func TestCost_RefStyleProvenance(t *testing.T) {
	both := ingest.Cost(ingest.RawCost{
		ID:                 "c1",
		DestinationID:      strPtr("camel-id"),
		DestinationIDSnake: strPtr("snake-id"),
	})
	assert.Equal(t, domain.RefBoth, both.RefStyle)
	assert.Equal(t, "snake-id", both.DestinationID, "snake wins, matching the historical lookup order")

	snake := ingest.Cost(ingest.RawCost{ID: "c2", DestinationIDSnake: strPtr("snake-id")})
	assert.Equal(t, domain.RefSnake, snake.RefStyle)

	camel := ingest.Cost(ingest.RawCost{ID: "c3", DestinationID: strPtr("camel-id")})
	assert.Equal(t, domain.RefCamel, camel.RefStyle)

	none := ingest.Cost(ingest.RawCost{ID: "c4"})
	assert.Equal(t, domain.RefNone, none.RefStyle)
	assert.Empty(t, none.DestinationID)
}

func TestCost_AmountFallbackChain(t *testing.T) {
	// amountUsd preferred.
	c := ingest.Cost(ingest.RawCost{ID: "c1", Amount: 100.0, AmountUSD: 80.0, USDAmount: 70.0})
	assert.InDelta(t, 80, c.AmountUSD, 1e-9)
	assert.InDelta(t, 100, c.Amount, 1e-9)

	// Historical variants.
	c = ingest.Cost(ingest.RawCost{ID: "c2", AmountUSDSnake: 75.0})
	assert.InDelta(t, 75, c.AmountUSD, 1e-9)
	c = ingest.Cost(ingest.RawCost{ID: "c3", USDAmount: 60.0})
	assert.InDelta(t, 60, c.AmountUSD, 1e-9)

	// No USD variant: local amount passes through.
	c = ingest.Cost(ingest.RawCost{ID: "c4", Amount: 42.0})
	assert.InDelta(t, 42, c.AmountUSD, 1e-9)

	// Numeric strings parse; garbage defaults to zero.
	c = ingest.Cost(ingest.RawCost{ID: "c5", AmountUSD: "19.5"})
	assert.InDelta(t, 19.5, c.AmountUSD, 1e-9)
	c = ingest.Cost(ingest.RawCost{ID: "c6", AmountUSD: "lots"})
	assert.Zero(t, c.AmountUSD)
}

func TestCost_DurationMetadata(t *testing.T) {
	inv := true
	c := ingest.Cost(ingest.RawCost{
		ID:                     "c1",
		DurationInvariantSnake: &inv,
		PricingModelSnake:      "per night",
		DailyRate:              12.5,
	})
	require.NotNil(t, c.DurationInvariant)
	assert.True(t, *c.DurationInvariant)
	assert.Equal(t, "per night", c.PricingModel)
	assert.InDelta(t, 12.5, c.DailyRate, 1e-9)
}

func TestDestination_BaselineVariants(t *testing.T) {
	d := ingest.Destination(ingest.RawDestination{ID: "d1", OriginalDurationDays: 7.0})
	assert.Equal(t, 7, d.BaselineDurationDays)

	d = ingest.Destination(ingest.RawDestination{ID: "d2", BaselineDurationDaysSnake: 3.0, OriginalDurationDays: 9.0})
	assert.Equal(t, 3, d.BaselineDurationDays, "snake variant precedes the oldest spelling")
}
