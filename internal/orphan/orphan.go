// Package orphan proposes and applies resolutions for costs whose
// destination reference no longer resolves.
//
// Proposal and execution are decoupled on purpose: Propose only suggests, so
// a human operator or an automated policy can inspect the suggestions before
// anything is committed, and the apply functions are explicit separate calls.
package orphan

import (
	"fmt"
	"strings"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
)

// Action is the suggested handling for one orphaned cost.
type Action string

// Suggested actions.
const (
	// ActionReassign: exactly one candidate destination matched; safe to
	// reassign automatically.
	ActionReassign Action = "reassign"
	// ActionReview: multiple candidates matched; ambiguous, never
	// auto-resolved.
	ActionReview Action = "review"
	// ActionDelete: no candidate matched.
	ActionDelete Action = "delete"
)

// Proposal pairs an orphaned cost with its candidate destinations and the
// suggested action.
type Proposal struct {
	Cost            domain.Cost          `json:"cost"`
	Candidates      []domain.Destination `json:"candidates"`
	SuggestedAction Action               `json:"suggestedAction"`
}

// Propose searches the destination set for fuzzy textual matches against
// each orphaned cost and suggests an action per cost. Pure computation; no
// input is mutated.
func Propose(orphanedCosts []domain.Cost, destinations []domain.Destination) []Proposal {
	proposals := make([]Proposal, 0, len(orphanedCosts))
	for _, c := range orphanedCosts {
		var candidates []domain.Destination
		for _, d := range destinations {
			if textMatches(c, d) {
				candidates = append(candidates, d)
			}
		}
		action := ActionDelete
		switch len(candidates) {
		case 0:
		case 1:
			action = ActionReassign
		default:
			action = ActionReview
		}
		proposals = append(proposals, Proposal{Cost: c, Candidates: candidates, SuggestedAction: action})
	}
	return proposals
}

// textMatches reports whether the destination's name or city appears as a
// case-insensitive substring of the cost's description or notes.
func textMatches(c domain.Cost, d domain.Destination) bool {
	text := strings.ToLower(c.Description + " " + c.Notes)
	for _, place := range []string{d.Name, d.City} {
		place = strings.ToLower(strings.TrimSpace(place))
		if place != "" && strings.Contains(text, place) {
			return true
		}
	}
	return false
}

// ReassignCosts returns a new cost slice with the listed costs pointed at
// targetID. The caller is responsible for verifying the target destination
// exists; an empty target is a precondition violation and the input is
// returned unmodified alongside the error.
func ReassignCosts(costs []domain.Cost, costIDs []string, targetID string) ([]domain.Cost, error) {
	target := identity.Normalize(targetID)
	if target == "" {
		return nil, fmt.Errorf("%w: reassignment requires a target destination id", domain.ErrPrecondition)
	}
	wanted := make(map[string]struct{}, len(costIDs))
	for _, id := range costIDs {
		wanted[identity.Normalize(id)] = struct{}{}
	}
	out := make([]domain.Cost, len(costs))
	copy(out, costs)
	for i := range out {
		if _, ok := wanted[identity.Normalize(out[i].ID)]; ok {
			out[i].DestinationID = target
		}
	}
	return out, nil
}

// DeleteCostsByDestination returns a new cost slice without the costs
// referencing destinationID.
func DeleteCostsByDestination(costs []domain.Cost, destinationID string) []domain.Cost {
	dest := identity.Normalize(destinationID)
	out := make([]domain.Cost, 0, len(costs))
	for _, c := range costs {
		if identity.Normalize(c.DestinationID) == dest && dest != "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// UnassignCostsByDestination returns a new cost slice with references to
// destinationID cleared, deliberately orphaning those costs for later review.
func UnassignCostsByDestination(costs []domain.Cost, destinationID string) []domain.Cost {
	dest := identity.Normalize(destinationID)
	out := make([]domain.Cost, len(costs))
	copy(out, costs)
	if dest == "" {
		return out
	}
	for i := range out {
		if identity.Normalize(out[i].DestinationID) == dest {
			out[i].DestinationID = ""
		}
	}
	return out
}
