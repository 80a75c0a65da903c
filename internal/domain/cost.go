package domain

import "time"

// Category is the closed set of cost categories. Unrecognized values fold
// into CategoryOther at ingestion.
type Category string

// Cost categories.
const (
	CategoryAccommodation Category = "accommodation"
	CategoryFlight        Category = "flight"
	CategoryActivity      Category = "activity"
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryOther         Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryAccommodation,
	CategoryFlight,
	CategoryActivity,
	CategoryFood,
	CategoryTransport,
	CategoryOther,
}

// NormalizeCategory maps any string onto the closed category set.
func NormalizeCategory(s string) Category {
	for _, c := range Categories {
		if string(c) == s {
			return c
		}
	}
	return CategoryOther
}

// RefStyle records which destination-reference field spelling(s) a cost
// carried in its raw source record. Historical datasets drifted between
// snake_case and camelCase; the validator warns when a record carried both
// spellings or neither.
type RefStyle string

// Reference-field spellings observed at ingestion.
const (
	RefCamel RefStyle = "camel"
	RefSnake RefStyle = "snake"
	RefBoth  RefStyle = "both"
	RefNone  RefStyle = "none"
)

// Cost is a single priced line item.
//
// DestinationID is a nullable (empty-string) reference to a Destination.ID.
// A cost whose non-empty reference resolves to no destination is orphaned.
type Cost struct {
	ID          string   `json:"id"`
	Category    Category `json:"category"`
	Description string   `json:"description,omitempty"`
	Notes       string   `json:"notes,omitempty"`

	// Amount is the local-currency amount, Currency its ISO code, and
	// AmountUSD the USD-normalized amount used for all aggregation.
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency,omitempty"`
	AmountUSD float64 `json:"amountUsd"`

	DestinationID string `json:"destinationId,omitempty"`

	// LegacyDestinationID preserves the pre-migration reference when a
	// migration run rewrote DestinationID.
	LegacyDestinationID string     `json:"legacyDestinationId,omitempty"`
	MigratedAt          *time.Time `json:"migratedAt,omitempty"`

	// Duration-sensitivity metadata. Explicit flags win over every heuristic:
	// DurationInvariant forces a fixed one-time charge, ScaleWithDuration
	// forces linear scaling with length of stay. When both are nil the
	// attribution engine infers sensitivity from the text fields below and
	// finally from the category.
	DurationInvariant *bool `json:"durationInvariant,omitempty"`
	ScaleWithDuration *bool `json:"scaleWithDuration,omitempty"`

	PricingModel string  `json:"pricingModel,omitempty"`
	Unit         string  `json:"unit,omitempty"`
	Frequency    string  `json:"frequency,omitempty"`
	DailyRate    float64 `json:"dailyRate,omitempty"`

	// RefStyle is ingestion provenance, see RefStyle.
	RefStyle RefStyle `json:"refStyle,omitempty"`
}
