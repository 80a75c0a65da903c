package domain

// Dataset is the full in-memory working set for one trip: every destination,
// cost line item, and leg grouping.
//
// Engine operations (validation, migration planning and apply, attribution,
// orphan resolution) take a Dataset value and return new collections rather
// than mutating the input. The host layer owns the single mutable reference
// and swaps in each result — a unidirectional-update discipline that keeps
// partial rewrites impossible by construction.
type Dataset struct {
	Destinations []Destination `json:"destinations"`
	Costs        []Cost        `json:"costs"`
	Legs         []Leg         `json:"legs"`
}

// Clone returns a deep copy of the dataset. Mutating the copy never affects
// the receiver.
func (ds Dataset) Clone() Dataset {
	out := Dataset{
		Destinations: make([]Destination, len(ds.Destinations)),
		Costs:        make([]Cost, len(ds.Costs)),
		Legs:         make([]Leg, len(ds.Legs)),
	}
	copy(out.Destinations, ds.Destinations)
	copy(out.Costs, ds.Costs)
	for i, leg := range ds.Legs {
		out.Legs[i] = leg
		out.Legs[i].SubLegs = make([]SubLeg, len(leg.SubLegs))
		for j, sub := range leg.SubLegs {
			out.Legs[i].SubLegs[j] = sub
			out.Legs[i].SubLegs[j].DestinationIDs = append([]string(nil), sub.DestinationIDs...)
			out.Legs[i].SubLegs[j].LegacyDestinationIDs = append([]string(nil), sub.LegacyDestinationIDs...)
		}
	}
	return out
}

// CascadeStrategy selects what happens to a destination's costs when the
// destination itself is deleted.
type CascadeStrategy string

// Cascade strategies for destination deletion.
const (
	// CascadeDelete removes the destination's costs along with it.
	CascadeDelete CascadeStrategy = "delete"
	// CascadeUnassign clears the costs' destination reference, deliberately
	// orphaning them for later review.
	CascadeUnassign CascadeStrategy = "unassign"
	// CascadeReassign moves the costs to another destination, which must exist.
	CascadeReassign CascadeStrategy = "reassign"
)
