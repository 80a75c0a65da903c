package attribution

import (
	"strings"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
	"github.com/pkordes/trip-ledger/backend/internal/identity"
)

// MatchRule names the rule that attributed a cost to a destination.
type MatchRule string

// Match rules, in fallback order.
const (
	MatchByID      MatchRule = "id"
	MatchByName    MatchRule = "name"
	MatchByCountry MatchRule = "country"
	MatchByCity    MatchRule = "city"
)

// rule is a single independently testable matching predicate.
type rule struct {
	name  MatchRule
	match func(cost domain.Cost, dest domain.Destination) bool
}

// textRules is the fixed fallback order for the fuzzy text rules. Precedence
// is name > country > city; tests pin this order. The text rules are a
// heuristic with a known false-positive surface (a "Tokyo" cost text may
// also contain "Japan"), kept as observed rather than tuned.
var textRules = []rule{
	{MatchByName, func(c domain.Cost, d domain.Destination) bool { return mentions(costText(c), d.Name) }},
	{MatchByCountry, func(c domain.Cost, d domain.Destination) bool { return mentions(costText(c), d.Country) }},
	{MatchByCity, func(c domain.Cost, d domain.Destination) bool { return mentions(costText(c), d.City) }},
}

// matchCost runs the full fallback chain for one cost against one
// destination; the first successful rule wins. The exact-identifier rule is
// always attempted first and preferred. The text rules are consulted only
// when the cost's reference resolves to no destination in resolvable — a
// resolvable id either wins outright or excludes the cost, so a text match
// can never steal a cost whose id points at a different destination.
func matchCost(c domain.Cost, d domain.Destination, resolvable map[string]struct{}) (MatchRule, bool) {
	ref := identity.Normalize(c.DestinationID)
	if ref != "" {
		if ref == identity.Normalize(d.ID) {
			return MatchByID, true
		}
		if _, ok := resolvable[ref]; ok {
			return "", false // belongs to another destination
		}
	}
	for _, r := range textRules {
		if r.match(c, d) {
			return r.name, true
		}
	}
	return "", false
}

func costText(c domain.Cost) string {
	return strings.ToLower(c.Description + " " + c.Notes)
}

// mentions reports whether lowercased text contains place under a common
// preposition ("in X", "to X", "from X") or immediately followed by a space.
func mentions(text, place string) bool {
	place = strings.ToLower(strings.TrimSpace(place))
	if place == "" {
		return false
	}
	for _, pattern := range []string{
		"in " + place,
		"to " + place,
		"from " + place,
		place + " ",
	} {
		if strings.Contains(text, pattern) {
			return true
		}
	}
	return false
}
