package orphan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/orphan"
	"github.com/pkordes/trip-ledger/backend/internal/validate"
)

var destinations = []domain.Destination{
	{ID: "d1", Name: "Tokyo", City: "Tokyo", Country: "Japan"},
	{ID: "d2", Name: "Kyoto", City: "Kyoto", Country: "Japan"},
}

func TestPropose_SingleCandidateSuggestsReassign(t *testing.T) {
	orphans := []domain.Cost{
		{ID: "c1", DestinationID: "gone", Description: "Ryokan night in KYOTO"},
	}

	proposals := orphan.Propose(orphans, destinations)

	require.Len(t, proposals, 1)
	assert.Equal(t, orphan.ActionReassign, proposals[0].SuggestedAction)
	require.Len(t, proposals[0].Candidates, 1)
	assert.Equal(t, "d2", proposals[0].Candidates[0].ID)
}

func TestPropose_MultipleCandidatesSuggestReview(t *testing.T) {
	orphans := []domain.Cost{
		{ID: "c1", DestinationID: "gone", Notes: "Shinkansen Tokyo - Kyoto"},
	}

	proposals := orphan.Propose(orphans, destinations)

	require.Len(t, proposals, 1)
	assert.Equal(t, orphan.ActionReview, proposals[0].SuggestedAction, "ambiguous matches must never auto-resolve")
	assert.Len(t, proposals[0].Candidates, 2)
}

func TestPropose_NoCandidateSuggestsDelete(t *testing.T) {
	orphans := []domain.Cost{
		{ID: "c1", DestinationID: "gone", Description: "Museum ticket"},
	}

	proposals := orphan.Propose(orphans, destinations)

	require.Len(t, proposals, 1)
	assert.Equal(t, orphan.ActionDelete, proposals[0].SuggestedAction)
	assert.Empty(t, proposals[0].Candidates)
}

func TestReassignCosts(t *testing.T) {
	costs := []domain.Cost{
		{ID: "c1", DestinationID: "gone"},
		{ID: "c2", DestinationID: "d1"},
	}

	out, err := orphan.ReassignCosts(costs, []string{"c1"}, "d2")

	require.NoError(t, err)
	assert.Equal(t, "d2", out[0].DestinationID)
	assert.Equal(t, "d1", out[1].DestinationID, "unlisted costs untouched")
	assert.Equal(t, "gone", costs[0].DestinationID, "input not mutated")
}

func TestReassignCosts_EmptyTargetIsPreconditionViolation(t *testing.T) {
	costs := []domain.Cost{{ID: "c1", DestinationID: "gone"}}

	_, err := orphan.ReassignCosts(costs, []string{"c1"}, "  ")

	assert.ErrorIs(t, err, domain.ErrPrecondition)
	assert.Equal(t, "gone", costs[0].DestinationID)
}

func TestDeleteCostsByDestination(t *testing.T) {
	costs := []domain.Cost{
		{ID: "c1", DestinationID: "d1"},
		{ID: "c2", DestinationID: "d2"},
		{ID: "c3"},
	}

	out := orphan.DeleteCostsByDestination(costs, "d1")

	require.Len(t, out, 2)
	assert.Equal(t, "c2", out[0].ID)
	assert.Equal(t, "c3", out[1].ID)
	assert.Len(t, costs, 3, "input not mutated")
}

func TestUnassignCostsByDestination(t *testing.T) {
	costs := []domain.Cost{
		{ID: "c1", DestinationID: "d1"},
		{ID: "c2", DestinationID: "d2"},
	}

	out := orphan.UnassignCostsByDestination(costs, "d1")

	assert.Empty(t, out[0].DestinationID)
	assert.Equal(t, "d2", out[1].DestinationID)
	assert.Equal(t, "d1", costs[0].DestinationID, "input not mutated")
}

// Reassigning a proposal's cost through validate.Orphans drops the orphan
// count for that cost to zero.
func TestProposeThenReassign_ClearsOrphan(t *testing.T) {
	ds := domain.Dataset{
		Destinations: destinations,
		Costs: []domain.Cost{
			{ID: "c1", DestinationID: "gone", Description: "izakaya in Tokyo"},
		},
	}
	orphans := validate.Orphans(ds)
	require.Len(t, orphans, 1)

	proposals := orphan.Propose(orphans, ds.Destinations)
	require.Equal(t, orphan.ActionReassign, proposals[0].SuggestedAction)

	fixed, err := orphan.ReassignCosts(ds.Costs, []string{proposals[0].Cost.ID}, proposals[0].Candidates[0].ID)
	require.NoError(t, err)

	ds.Costs = fixed
	assert.Empty(t, validate.Orphans(ds))
}
