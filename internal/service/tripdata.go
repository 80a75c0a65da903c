// Package service contains the business logic for the Trip Ledger API.
// Services validate inputs, enforce preconditions, and orchestrate the pure
// engine packages (validate, migrate, attribution, orphan) over repo calls.
// No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-ledger/backend/internal/attribution"
	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
	"github.com/pkordes/trip-ledger/backend/internal/migrate"
	"github.com/pkordes/trip-ledger/backend/internal/orphan"
	"github.com/pkordes/trip-ledger/backend/internal/repo"
	"github.com/pkordes/trip-ledger/backend/internal/validate"
)

// TripDataService implements dataset operations for one trip: auditing,
// identifier migration, cost attribution, and orphan resolution.
//
// Every mutating operation follows the same shape: load the dataset, compute
// a complete replacement in memory with the pure engine packages, then
// persist it in a single transactional Replace. Preconditions fail before
// any repo write, so partial application cannot happen.
type TripDataService struct {
	data repo.DatasetRepo
	now  func() time.Time
}

// NewTripDataService constructs a TripDataService backed by the provided
// dataset repo. Trip existence is the repo's concern: Load reports
// domain.ErrNotFound for unknown trips.
func NewTripDataService(data repo.DatasetRepo) *TripDataService {
	return &TripDataService{data: data, now: time.Now}
}

// MigrationResult pairs the migration report with the validator's view of
// the dataset after the run.
type MigrationResult struct {
	Report migrate.Report  `json:"report"`
	After  validate.Report `json:"after"`
}

// Report loads the trip's dataset and returns a fresh integrity report.
func (s *TripDataService) Report(ctx context.Context, tripID uuid.UUID) (validate.Report, error) {
	ds, err := s.data.Load(ctx, tripID)
	if err != nil {
		return validate.Report{}, fmt.Errorf("service.TripDataService.Report: %w", err)
	}
	return validate.Check(ds), nil
}

// Migrate plans and applies an identifier migration for the trip, persists
// the rewritten dataset, and reports what changed. A run that finds no
// candidates is a no-op and performs no write.
func (s *TripDataService) Migrate(ctx context.Context, tripID uuid.UUID, mode migrate.Mode) (MigrationResult, error) {
	if _, err := migrate.ParseMode(string(mode)); err != nil {
		return MigrationResult{}, fmt.Errorf("service.TripDataService.Migrate: %w", err)
	}

	ds, err := s.data.Load(ctx, tripID)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("service.TripDataService.Migrate: %w", err)
	}

	before := validate.Check(ds)
	plan := migrate.NewPlan(ds.Destinations, mode)
	if len(plan.Candidates) == 0 {
		return MigrationResult{
			Report: migrate.Report{},
			After:  before,
		}, nil
	}

	migrated, counts := migrate.Apply(ds, plan, s.now().UTC())
	after := validate.Check(migrated)

	if err := s.data.Replace(ctx, tripID, migrated); err != nil {
		return MigrationResult{}, fmt.Errorf("service.TripDataService.Migrate: %w", err)
	}

	return MigrationResult{
		Report: migrate.Report{
			Migrated: counts,
			Improvements: migrate.Improvements{
				OrphanedCostsFixed: before.Summary.OrphanedCosts - after.Summary.OrphanedCosts,
			},
		},
		After: after,
	}, nil
}

// DestinationCosts attributes the trip's costs to one destination and
// returns the aggregated result.
// Returns domain.ErrNotFound if the destination is not in the dataset.
func (s *TripDataService) DestinationCosts(ctx context.Context, tripID uuid.UUID, destinationID string) (attribution.Result, error) {
	ds, err := s.data.Load(ctx, tripID)
	if err != nil {
		return attribution.Result{}, fmt.Errorf("service.TripDataService.DestinationCosts: %w", err)
	}
	dest, ok := findDestination(ds, destinationID)
	if !ok {
		return attribution.Result{}, fmt.Errorf("service.TripDataService.DestinationCosts: destination %q: %w", destinationID, domain.ErrNotFound)
	}
	return attribution.Attribute(dest, ds.Costs, ds.Destinations), nil
}

// OrphanProposals returns a resolution proposal for every orphaned cost in
// the trip's dataset. Always returns a non-nil slice so callers can safely
// range over it.
func (s *TripDataService) OrphanProposals(ctx context.Context, tripID uuid.UUID) ([]orphan.Proposal, error) {
	ds, err := s.data.Load(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.TripDataService.OrphanProposals: %w", err)
	}
	proposals := orphan.Propose(validate.Orphans(ds), ds.Destinations)
	if proposals == nil {
		proposals = []orphan.Proposal{}
	}
	return proposals, nil
}

// ReassignCosts points the listed costs at targetDestinationID and persists
// the result. The target must name an existing destination; violations
// return domain.ErrPrecondition before anything is written.
func (s *TripDataService) ReassignCosts(ctx context.Context, tripID uuid.UUID, costIDs []string, targetDestinationID string) error {
	if identity.Normalize(targetDestinationID) == "" {
		return fmt.Errorf("service.TripDataService.ReassignCosts: %w: target destination id is required", domain.ErrPrecondition)
	}
	ds, err := s.data.Load(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripDataService.ReassignCosts: %w", err)
	}
	if _, ok := findDestination(ds, targetDestinationID); !ok {
		return fmt.Errorf("service.TripDataService.ReassignCosts: %w: target destination %q does not exist", domain.ErrPrecondition, targetDestinationID)
	}

	costs, err := orphan.ReassignCosts(ds.Costs, costIDs, targetDestinationID)
	if err != nil {
		return fmt.Errorf("service.TripDataService.ReassignCosts: %w", err)
	}
	ds.Costs = costs

	if err := s.data.Replace(ctx, tripID, ds); err != nil {
		return fmt.Errorf("service.TripDataService.ReassignCosts: %w", err)
	}
	return nil
}

// DeleteDestination removes a destination and cascades to its costs per the
// chosen strategy: delete them, unassign them (deliberate orphans), or
// reassign them to another destination. CascadeReassign requires an existing
// reassignTo destination; violations return domain.ErrPrecondition before
// anything is written.
func (s *TripDataService) DeleteDestination(ctx context.Context, tripID uuid.UUID, destinationID string, strategy domain.CascadeStrategy, reassignTo string) error {
	ds, err := s.data.Load(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripDataService.DeleteDestination: %w", err)
	}
	if _, ok := findDestination(ds, destinationID); !ok {
		return fmt.Errorf("service.TripDataService.DeleteDestination: destination %q: %w", destinationID, domain.ErrNotFound)
	}

	switch strategy {
	case domain.CascadeDelete:
		ds.Costs = orphan.DeleteCostsByDestination(ds.Costs, destinationID)
	case domain.CascadeUnassign:
		ds.Costs = orphan.UnassignCostsByDestination(ds.Costs, destinationID)
	case domain.CascadeReassign:
		target, ok := findDestination(ds, reassignTo)
		if !ok || identity.Normalize(target.ID) == identity.Normalize(destinationID) {
			return fmt.Errorf("service.TripDataService.DeleteDestination: %w: reassign target %q does not exist", domain.ErrPrecondition, reassignTo)
		}
		var ids []string
		wanted := identity.Normalize(destinationID)
		for _, c := range ds.Costs {
			if identity.Normalize(c.DestinationID) == wanted {
				ids = append(ids, c.ID)
			}
		}
		costs, err := orphan.ReassignCosts(ds.Costs, ids, target.ID)
		if err != nil {
			return fmt.Errorf("service.TripDataService.DeleteDestination: %w", err)
		}
		ds.Costs = costs
	default:
		return fmt.Errorf("service.TripDataService.DeleteDestination: %w: unknown cascade strategy %q", domain.ErrValidation, strategy)
	}

	ds.Destinations = removeDestination(ds.Destinations, destinationID)
	ds.Legs = dropDestinationFromLegs(ds.Legs, destinationID)

	if err := s.data.Replace(ctx, tripID, ds); err != nil {
		return fmt.Errorf("service.TripDataService.DeleteDestination: %w", err)
	}
	return nil
}

// SaveDestinationCosts pushes the full current cost list for one destination
// to the persistence sink. The destination must exist in the trip's dataset.
func (s *TripDataService) SaveDestinationCosts(ctx context.Context, tripID uuid.UUID, destinationID string, costs []domain.Cost) error {
	ds, err := s.data.Load(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripDataService.SaveDestinationCosts: %w", err)
	}
	if _, ok := findDestination(ds, destinationID); !ok {
		return fmt.Errorf("service.TripDataService.SaveDestinationCosts: destination %q: %w", destinationID, domain.ErrNotFound)
	}
	if err := s.data.SaveDestinationCosts(ctx, tripID, destinationID, costs); err != nil {
		return fmt.Errorf("service.TripDataService.SaveDestinationCosts: %w", err)
	}
	return nil
}

// ---- helpers ---------------------------------------------------------------

func findDestination(ds domain.Dataset, id string) (domain.Destination, bool) {
	wanted := identity.Normalize(id)
	if wanted == "" {
		return domain.Destination{}, false
	}
	for _, d := range ds.Destinations {
		if identity.Normalize(d.ID) == wanted {
			return d, true
		}
	}
	return domain.Destination{}, false
}

func removeDestination(dests []domain.Destination, id string) []domain.Destination {
	wanted := identity.Normalize(id)
	out := make([]domain.Destination, 0, len(dests))
	for _, d := range dests {
		if identity.Normalize(d.ID) == wanted {
			continue
		}
		out = append(out, d)
	}
	return out
}

// dropDestinationFromLegs removes the deleted destination's id from every
// sub-leg list so no dangling reference is left behind.
func dropDestinationFromLegs(legs []domain.Leg, id string) []domain.Leg {
	wanted := identity.Normalize(id)
	out := make([]domain.Leg, len(legs))
	copy(out, legs)
	for i := range out {
		subs := make([]domain.SubLeg, len(out[i].SubLegs))
		copy(subs, out[i].SubLegs)
		for j := range subs {
			kept := make([]string, 0, len(subs[j].DestinationIDs))
			for _, ref := range subs[j].DestinationIDs {
				if identity.Normalize(ref) == wanted {
					continue
				}
				kept = append(kept, ref)
			}
			subs[j].DestinationIDs = kept
		}
		out[i].SubLegs = subs
	}
	return out
}
