// Package ingest normalizes raw dataset records into the canonical domain
// shapes.
//
// Source datasets drifted across versions: destination references appear as
// destination_id or destinationId, amounts under several historical names,
// ids sometimes as JSON numbers. All of that drift is reconciled exactly
// once, here, so downstream packages see a single record shape and never
// scatter field-name fallback lookups. Malformed values get safe defaults
// (zero amounts, empty strings); a bad record is isolated, never fatal.
package ingest

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkordes/trip-ledger/backend/internal/domain"
)

// RawDestination mirrors a destination record as found on the wire, with
// every historical field spelling. Unknown fields are ignored.
type RawDestination struct {
	ID      any    `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`

	DurationDays      any `json:"durationDays"`
	DurationDaysSnake any `json:"duration_days"`

	BaselineDurationDays      any `json:"baselineDurationDays"`
	BaselineDurationDaysSnake any `json:"baseline_duration_days"`
	OriginalDurationDays      any `json:"originalDurationDays"`

	ArrivalDate        string `json:"arrivalDate"`
	ArrivalDateSnake   string `json:"arrival_date"`
	DepartureDate      string `json:"departureDate"`
	DepartureDateSnake string `json:"departure_date"`

	PlaceID       string `json:"placeId"`
	PlaceIDSnake  string `json:"place_id"`
	LegacyID      string `json:"legacyId"`
	LegacyIDSnake string `json:"legacy_id"`
}

// RawCost mirrors a cost record as found on the wire.
type RawCost struct {
	ID          any    `json:"id"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Currency    string `json:"currency"`

	Amount         any `json:"amount"`
	AmountUSD      any `json:"amountUsd"`
	AmountUSDSnake any `json:"amount_usd"`
	USDAmount      any `json:"usdAmount"`

	DestinationID      *string `json:"destinationId"`
	DestinationIDSnake *string `json:"destination_id"`

	DurationInvariant      *bool  `json:"durationInvariant"`
	DurationInvariantSnake *bool  `json:"duration_invariant"`
	ScaleWithDuration      *bool  `json:"scaleWithDuration"`
	ScaleWithDurationSnake *bool  `json:"scale_with_duration"`
	PricingModel           string `json:"pricingModel"`
	PricingModelSnake      string `json:"pricing_model"`
	Unit                   string `json:"unit"`
	Frequency              string `json:"frequency"`
	DailyRate              any    `json:"dailyRate"`
	DailyRateSnake         any    `json:"daily_rate"`
}

// RawSubLeg mirrors a sub-leg record.
type RawSubLeg struct {
	ID                  any      `json:"id"`
	Name                string   `json:"name"`
	DestinationIDs      []any    `json:"destinationIds"`
	DestinationIDsSnake []any    `json:"destination_ids"`
	LegacyIDs           []string `json:"legacyDestinationIds"`
}

// RawLeg mirrors a leg record.
type RawLeg struct {
	ID             any         `json:"id"`
	Name           string      `json:"name"`
	StartDate      string      `json:"startDate"`
	StartDateSnake string      `json:"start_date"`
	EndDate        string      `json:"endDate"`
	EndDateSnake   string      `json:"end_date"`
	SubLegs        []RawSubLeg `json:"subLegs"`
	SubLegsSnake   []RawSubLeg `json:"sub_legs"`
}

// RawDataset is the top-level wire shape a dataset source supplies.
type RawDataset struct {
	Destinations []RawDestination `json:"destinations"`
	Costs        []RawCost        `json:"costs"`
	Legs         []RawLeg         `json:"legs"`
}

// Dataset decodes and normalizes a raw JSON dataset. Only a malformed
// document is an error; malformed individual values normalize to defaults.
func Dataset(data []byte) (domain.Dataset, error) {
	var raw RawDataset
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.Dataset{}, fmt.Errorf("ingest.Dataset: decode: %w", err)
	}

	ds := domain.Dataset{
		Destinations: make([]domain.Destination, len(raw.Destinations)),
		Costs:        make([]domain.Cost, len(raw.Costs)),
		Legs:         make([]domain.Leg, len(raw.Legs)),
	}
	for i, rd := range raw.Destinations {
		ds.Destinations[i] = Destination(rd)
	}
	for i, rc := range raw.Costs {
		ds.Costs[i] = Cost(rc)
	}
	for i, rl := range raw.Legs {
		ds.Legs[i] = Leg(rl)
	}
	return ds, nil
}

// Destination normalizes one raw destination record.
func Destination(raw RawDestination) domain.Destination {
	d := domain.Destination{
		ID:                   asID(raw.ID),
		Name:                 strings.TrimSpace(raw.Name),
		City:                 strings.TrimSpace(raw.City),
		Country:              strings.TrimSpace(raw.Country),
		DurationDays:         firstInt(raw.DurationDaysSnake, raw.DurationDays),
		BaselineDurationDays: firstInt(raw.BaselineDurationDaysSnake, raw.BaselineDurationDays, raw.OriginalDurationDays),
		ArrivalDate:          firstString(raw.ArrivalDateSnake, raw.ArrivalDate),
		DepartureDate:        firstString(raw.DepartureDateSnake, raw.DepartureDate),
		PlaceID:              firstString(raw.PlaceIDSnake, raw.PlaceID),
		LegacyID:             firstString(raw.LegacyIDSnake, raw.LegacyID),
	}
	// Recalculation invariant: durationDays tracks the inclusive day span
	// whenever the dates can supply one and no explicit duration is set.
	if d.DurationDays <= 0 {
		d.DurationDays = d.StayDays()
	}
	return d
}

// Cost normalizes one raw cost record, resolving the destination-reference
// spelling (snake wins when both are present, matching the historical
// lookup order) and the amount-field fallback chain.
func Cost(raw RawCost) domain.Cost {
	c := domain.Cost{
		ID:          asID(raw.ID),
		Category:    domain.NormalizeCategory(strings.TrimSpace(raw.Category)),
		Description: raw.Description,
		Notes:       raw.Notes,
		Currency:    strings.ToUpper(strings.TrimSpace(raw.Currency)),
		Amount:      asAmount(raw.Amount),

		DurationInvariant: firstBool(raw.DurationInvariantSnake, raw.DurationInvariant),
		ScaleWithDuration: firstBool(raw.ScaleWithDurationSnake, raw.ScaleWithDuration),
		PricingModel:      firstString(raw.PricingModelSnake, raw.PricingModel),
		Unit:              raw.Unit,
		Frequency:         raw.Frequency,
		DailyRate:         asAmount(firstPresent(raw.DailyRateSnake, raw.DailyRate)),
	}

	// USD-normalized amount: first usable historical variant, falling back
	// to the local amount as a passthrough when no USD field exists.
	if v, ok := usableAmount(raw.AmountUSD, raw.AmountUSDSnake, raw.USDAmount); ok {
		c.AmountUSD = v
	} else {
		c.AmountUSD = c.Amount
	}

	snake, camel := raw.DestinationIDSnake, raw.DestinationID
	switch {
	case snake != nil && camel != nil:
		c.RefStyle = domain.RefBoth
		c.DestinationID = strings.TrimSpace(*snake)
	case snake != nil:
		c.RefStyle = domain.RefSnake
		c.DestinationID = strings.TrimSpace(*snake)
	case camel != nil:
		c.RefStyle = domain.RefCamel
		c.DestinationID = strings.TrimSpace(*camel)
	default:
		c.RefStyle = domain.RefNone
	}
	return c
}

// Leg normalizes one raw leg record.
func Leg(raw RawLeg) domain.Leg {
	subs := raw.SubLegs
	if len(subs) == 0 {
		subs = raw.SubLegsSnake
	}
	leg := domain.Leg{
		ID:        asID(raw.ID),
		Name:      strings.TrimSpace(raw.Name),
		StartDate: firstString(raw.StartDateSnake, raw.StartDate),
		EndDate:   firstString(raw.EndDateSnake, raw.EndDate),
		SubLegs:   make([]domain.SubLeg, len(subs)),
	}
	for i, rs := range subs {
		ids := rs.DestinationIDs
		if len(ids) == 0 {
			ids = rs.DestinationIDsSnake
		}
		sub := domain.SubLeg{
			ID:                   asID(rs.ID),
			Name:                 strings.TrimSpace(rs.Name),
			DestinationIDs:       make([]string, 0, len(ids)),
			LegacyDestinationIDs: rs.LegacyIDs,
		}
		for _, id := range ids {
			if s := asID(id); s != "" {
				sub.DestinationIDs = append(sub.DestinationIDs, s)
			}
		}
		leg.SubLegs[i] = sub
	}
	return leg
}

// ---- value coercion helpers ------------------------------------------------

// asID coerces an id value to its string form. Legacy datasets store
// timestamp ids as JSON numbers; those format without an exponent.
func asID(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// asAmount coerces a numeric-ish value to a finite float64, defaulting to 0.
func asAmount(v any) float64 {
	f, ok := numeric(v)
	if !ok {
		return 0
	}
	return f
}

// usableAmount returns the first value in the chain that parses to a finite
// number.
func usableAmount(chain ...any) (float64, bool) {
	for _, v := range chain {
		if f, ok := numeric(v); ok {
			return f, true
		}
	}
	return 0, false
}

func numeric(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func firstInt(chain ...any) int {
	for _, v := range chain {
		if f, ok := numeric(v); ok && f > 0 {
			return int(f)
		}
	}
	return 0
}

func firstString(chain ...string) string {
	for _, s := range chain {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func firstBool(chain ...*bool) *bool {
	for _, b := range chain {
		if b != nil {
			return b
		}
	}
	return nil
}

func firstPresent(chain ...any) any {
	for _, v := range chain {
		if v != nil {
			return v
		}
	}
	return nil
}
