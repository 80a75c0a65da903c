package domain

// Leg is a named grouping of destinations by date range. Legs are a filtering
// and proration scope, not an ownership relation: destinations are matched to
// a leg by date or through an explicit sub-leg id list.
type Leg struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	StartDate string   `json:"startDate,omitempty"` // DateLayout, empty when open-ended
	EndDate   string   `json:"endDate,omitempty"`
	SubLegs   []SubLeg `json:"subLegs,omitempty"`
}

// SubLeg groups destinations by explicit id list.
//
// Post-migration, DestinationIDs must reference only identifiers present in
// the current destination set. The rewriter drops or rewrites unresolved
// references; they are never left stale.
type SubLeg struct {
	ID             string   `json:"id"`
	Name           string   `json:"name,omitempty"`
	DestinationIDs []string `json:"destinationIds"`

	// LegacyDestinationIDs is the trail of pre-migration ids for entries a
	// migration run rewrote. Empty for sub-legs no migration ever touched.
	LegacyDestinationIDs []string `json:"legacyDestinationIds,omitempty"`
}
