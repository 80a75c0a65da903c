// Package attribution maps cost line-items to destinations and aggregates
// them into per-category totals, prorating duration-sensitive costs when a
// destination's length of stay has drifted from the baseline its costs were
// priced against.
//
// Matching is an ordered fallback chain (exact id, then name, country, city
// text rules); each rule is an independent predicate composed in a fixed
// priority list so tests can pin the exact precedence.
package attribution

import (
	"math"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
)

// Item is one attributed cost. Base amounts are always retained unscaled so
// repeated recalculation from the original baseline never compounds rounding
// or drift; Amount and AmountUSD carry the duration-scaled values (equal to
// the base when no scaling applied).
type Item struct {
	Cost domain.Cost `json:"cost"`
	Rule MatchRule   `json:"rule"`

	BaseAmount    float64 `json:"baseAmount"`
	BaseAmountUSD float64 `json:"baseAmountUsd"`
	Amount        float64 `json:"amount"`
	AmountUSD     float64 `json:"amountUsd"`
	Scaled        bool    `json:"scaled"`
}

// Result is the attribution output for one destination. Total and ByCategory
// aggregate the USD-normalized, duration-scaled amounts. DurationRatio,
// BaseDuration, and CurrentDuration expose the resolved proration inputs so
// callers can tell when scaling was applied.
type Result struct {
	Total      float64                     `json:"total"`
	ByCategory map[domain.Category]float64 `json:"byCategory"`
	Items      []Item                      `json:"items"`

	DurationRatio   float64 `json:"durationRatio"`
	BaseDuration    int     `json:"baseDuration"`
	CurrentDuration int     `json:"currentDuration"`
}

// Attribute collects the costs belonging to dest and aggregates them.
//
// allDestinations supplies the resolvable-identifier set: a cost whose
// reference resolves to some destination is attributed purely by identifier,
// and the fuzzy text rules only ever see costs whose reference is empty or
// dangling — the heuristic path for datasets where identifier-based
// attribution is known to be unreliable.
func Attribute(dest domain.Destination, allCosts []domain.Cost, allDestinations []domain.Destination) Result {
	ratio, base, current := durations(dest)
	result := Result{
		ByCategory:      map[domain.Category]float64{},
		Items:           []Item{},
		DurationRatio:   ratio,
		BaseDuration:    base,
		CurrentDuration: current,
	}

	resolvable := make(map[string]struct{}, len(allDestinations))
	for _, d := range allDestinations {
		if id := identity.Normalize(d.ID); id != "" {
			resolvable[id] = struct{}{}
		}
	}

	for _, c := range allCosts {
		matched, ok := matchCost(c, dest, resolvable)
		if !ok {
			continue
		}

		item := Item{
			Cost:          c,
			Rule:          matched,
			BaseAmount:    finiteOrZero(c.Amount),
			BaseAmountUSD: finiteOrZero(c.AmountUSD),
		}
		item.Amount = item.BaseAmount
		item.AmountUSD = item.BaseAmountUSD
		if ratio != 1 && durationSensitive(c) {
			item.Amount = item.BaseAmount * ratio
			item.AmountUSD = item.BaseAmountUSD * ratio
			item.Scaled = true
		}

		category := domain.NormalizeCategory(string(c.Category))
		result.ByCategory[category] += item.AmountUSD
		result.Total += item.AmountUSD
		result.Items = append(result.Items, item)
	}

	return result
}

// finiteOrZero guards aggregation against NaN and infinite amounts that
// slipped past ingestion; they count as zero, never as an error.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
