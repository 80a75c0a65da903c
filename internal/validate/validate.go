// Package validate audits a dataset for identifier and referential problems.
//
// Check is the audit oracle every other operation reports against: it is
// side-effect-free and safe to re-run after any mutation, and the difference
// between its output before and after a migration or cleanup run is that
// operation's report.
package validate

import (
	"fmt"
	"sort"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
)

// Issue is a single finding. Code is stable for programmatic consumers;
// Message is for humans.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Issue codes.
const (
	CodeDuplicateID    = "duplicate_id"
	CodeOrphanedCosts  = "orphaned_costs"
	CodeLegacyIDs      = "legacy_ids"
	CodeMissingNames   = "missing_names"
	CodeRefFieldNaming = "ref_field_naming"
)

// Summary holds the counts Check always computes, whatever issues it finds.
type Summary struct {
	TotalDestinations int `json:"total_destinations"`
	TotalCosts        int `json:"total_costs"`

	// Counts by identifier classification. LegacyIDs is the combined
	// timestamp + opaque count.
	UUIDIDs      int `json:"uuid_ids"`
	PlaceIDs     int `json:"place_ids"`
	TimestampIDs int `json:"timestamp_ids"`
	LegacyIDs    int `json:"legacy_ids"`

	// OrphanedCosts counts costs whose non-empty normalized reference
	// matches no destination.
	OrphanedCosts int `json:"orphaned_costs"`
}

// Report is the validator output: block-level errors, advisory warnings, and
// the summary counts.
type Report struct {
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Summary  Summary `json:"summary"`
}

// Check scans the dataset and returns a fresh report. Data-quality problems
// are reported, never repaired and never returned as Go errors: a batch with
// malformed records still produces a complete report.
//
// Errors (never auto-fixed): duplicate destination ids — a hard
// data-corruption signal, because picking a winner between two same-id
// destinations risks silent data loss.
// Warnings (advisory): orphaned costs, legacy identifiers, destinations
// missing a name, inconsistent destination-reference field naming.
func Check(ds domain.Dataset) Report {
	report := Report{
		Errors:   []Issue{},
		Warnings: []Issue{},
		Summary: Summary{
			TotalDestinations: len(ds.Destinations),
			TotalCosts:        len(ds.Costs),
		},
	}

	ids := make(map[string]int, len(ds.Destinations))
	missingNames := 0
	for _, d := range ds.Destinations {
		ids[identity.Normalize(d.ID)]++
		switch identity.Classify(d.ID) {
		case identity.KindUUID:
			report.Summary.UUIDIDs++
		case identity.KindPlaceID:
			report.Summary.PlaceIDs++
		case identity.KindTimestampLegacy:
			report.Summary.TimestampIDs++
			report.Summary.LegacyIDs++
		case identity.KindOpaqueLegacy:
			report.Summary.LegacyIDs++
		}
		if d.Name == "" {
			missingNames++
		}
	}

	var dups []string
	for id, n := range ids {
		if n > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups) // deterministic report order
	for _, id := range dups {
		report.Errors = append(report.Errors, Issue{
			Code:    CodeDuplicateID,
			Message: fmt.Sprintf("%d destinations share id %q", ids[id], id),
		})
	}

	namingConflicts := 0
	for _, c := range ds.Costs {
		ref := identity.Normalize(c.DestinationID)
		if ref != "" {
			if _, ok := ids[ref]; !ok {
				report.Summary.OrphanedCosts++
			}
		}
		if c.RefStyle == domain.RefBoth || c.RefStyle == domain.RefNone {
			namingConflicts++
		}
	}

	if report.Summary.OrphanedCosts > 0 {
		report.Warnings = append(report.Warnings, Issue{
			Code:    CodeOrphanedCosts,
			Message: fmt.Sprintf("%d costs reference no existing destination", report.Summary.OrphanedCosts),
		})
	}
	if report.Summary.LegacyIDs > 0 {
		report.Warnings = append(report.Warnings, Issue{
			Code:    CodeLegacyIDs,
			Message: fmt.Sprintf("%d destinations still use legacy identifiers", report.Summary.LegacyIDs),
		})
	}
	if missingNames > 0 {
		report.Warnings = append(report.Warnings, Issue{
			Code:    CodeMissingNames,
			Message: fmt.Sprintf("%d destinations have no name", missingNames),
		})
	}
	if namingConflicts > 0 {
		report.Warnings = append(report.Warnings, Issue{
			Code:    CodeRefFieldNaming,
			Message: fmt.Sprintf("%d costs carried inconsistent destination-reference field naming", namingConflicts),
		})
	}

	return report
}

// Orphans returns the costs whose non-empty normalized reference matches no
// destination, in input order.
func Orphans(ds domain.Dataset) []domain.Cost {
	ids := make(map[string]struct{}, len(ds.Destinations))
	for _, d := range ds.Destinations {
		ids[identity.Normalize(d.ID)] = struct{}{}
	}
	var orphans []domain.Cost
	for _, c := range ds.Costs {
		ref := identity.Normalize(c.DestinationID)
		if ref == "" {
			continue
		}
		if _, ok := ids[ref]; !ok {
			orphans = append(orphans, c)
		}
	}
	return orphans
}
