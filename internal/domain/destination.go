// Package domain contains the core data types for the Trip Ledger backend.
// This package has zero external dependencies and is imported by every other
// internal package (identity, migrate, validate, attribution, orphan, repo,
// service, handler).
//
// All types are plain, JSON-serializable records. The engine packages operate
// on values of these types and return new collections; nothing in this package
// carries behavior beyond small derivation helpers.
package domain

import "time"

// DateLayout is the wire format for all date-only fields: an ISO date in UTC
// with no time component.
const DateLayout = "2006-01-02"

// Destination is a single stop on the trip.
//
// ID is assigned once at creation and mutated only by an explicit migration
// run, never by ordinary edits. Its textual format determines the identifier's
// lifecycle stage (legacy, timestamp, Place ID, UUID) — see internal/identity.
type Destination struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`

	// DurationDays is the currently planned length of stay in days.
	DurationDays int `json:"durationDays,omitempty"`

	// BaselineDurationDays is the length of stay this destination's stored
	// cost line-items were priced against, established at cost-entry time.
	// Zero means "not recorded"; callers derive a baseline from the dates or
	// from DurationDays instead.
	BaselineDurationDays int `json:"baselineDurationDays,omitempty"`

	// ArrivalDate and DepartureDate are DateLayout strings, empty when unknown.
	// When both are set, DepartureDate >= ArrivalDate and
	// DurationDays == daysBetween(arrival, departure) + 1 after any
	// recalculation pass.
	ArrivalDate   string `json:"arrivalDate,omitempty"`
	DepartureDate string `json:"departureDate,omitempty"`

	// PlaceID preserves the mapping-provider identifier when a Place-ID-keyed
	// destination is migrated to a UUID. A Place ID is never discarded, only
	// relocated here.
	PlaceID string `json:"placeId,omitempty"`

	// LegacyID records the pre-migration identifier.
	LegacyID string `json:"legacyId,omitempty"`

	// MigratedAt is the timestamp of the migration run that rewrote ID,
	// nil for destinations that have never been migrated.
	MigratedAt *time.Time `json:"migratedAt,omitempty"`
}

// StayDays returns the inclusive day count between ArrivalDate and
// DepartureDate, or 0 when either date is missing or unparseable.
func (d Destination) StayDays() int {
	if d.ArrivalDate == "" || d.DepartureDate == "" {
		return 0
	}
	arrive, err := time.Parse(DateLayout, d.ArrivalDate)
	if err != nil {
		return 0
	}
	depart, err := time.Parse(DateLayout, d.DepartureDate)
	if err != nil {
		return 0
	}
	days := int(depart.Sub(arrive).Hours()/24) + 1
	if days < 1 {
		return 0
	}
	return days
}
