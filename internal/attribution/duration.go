package attribution

import (
	"strings"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
)

// durationTerms are the daily/nightly phrasings sniffed out of pricing-model
// and free-text fields.
var durationTerms = []string{
	"per night", "per day", "nightly", "daily", "/night", "/day", "each night", "a night",
}

// durations resolves the proration inputs for a destination.
//
// Baseline: BaselineDurationDays when recorded, else the inclusive day count
// between the arrival and departure dates, else DurationDays. Current:
// DurationDays, else the date-derived count. A destination lacking any
// duration signal yields ratio 1 — no scaling.
func durations(d domain.Destination) (ratio float64, base, current int) {
	base = d.BaselineDurationDays
	if base <= 0 {
		base = d.StayDays()
	}
	if base <= 0 {
		base = d.DurationDays
	}

	current = d.DurationDays
	if current <= 0 {
		current = d.StayDays()
	}

	if base <= 0 || current <= 0 {
		return 1, base, current
	}
	return float64(current) / float64(base), base, current
}

// durationSensitive decides whether a cost scales linearly with length of
// stay. The decision is a fixed fallback chain; the first signal wins:
//
//  1. Explicit flags: DurationInvariant forces false, ScaleWithDuration true.
//  2. Pricing-model / unit / frequency fields with daily or nightly phrasing.
//  3. A daily-rate-shaped amount on the record.
//  4. Daily or nightly phrasing in the description or notes.
//  5. Category default: flights are one-time charges, everything else scales.
func durationSensitive(c domain.Cost) bool {
	if c.DurationInvariant != nil && *c.DurationInvariant {
		return false
	}
	if c.ScaleWithDuration != nil && *c.ScaleWithDuration {
		return true
	}
	if hasDurationTerm(c.PricingModel) || hasDurationTerm(c.Frequency) || isDayUnit(c.Unit) {
		return true
	}
	if c.DailyRate > 0 {
		return true
	}
	if hasDurationTerm(c.Description) || hasDurationTerm(c.Notes) {
		return true
	}
	return c.Category != domain.CategoryFlight
}

// isDayUnit accepts both bare units ("night", "days") and phrased ones.
func isDayUnit(unit string) bool {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "night", "nights", "day", "days":
		return true
	}
	return hasDurationTerm(unit)
}

func hasDurationTerm(s string) bool {
	s = strings.ToLower(s)
	for _, term := range durationTerms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
