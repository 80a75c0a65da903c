// Package identity classifies destination identifiers and mints new ones.
//
// Identifier formats encode lifecycle stage: the oldest datasets used
// sequential or timestamp-shaped ids, a middle generation keyed destinations
// by mapping-provider Place IDs, and the current format is a random UUID v4.
// Classification is pure string inspection; nothing here touches a clock or
// treats a timestamp-shaped id as a time value.
package identity

import (
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind is the classification of a destination identifier.
type Kind string

// Identifier kinds, newest format first.
const (
	// KindUUID is the current format: canonical textual UUID v4.
	KindUUID Kind = "uuid"
	// KindPlaceID is a mapping-provider place identifier.
	KindPlaceID Kind = "place_id"
	// KindTimestampLegacy is an integer in a plausible Unix-epoch range.
	// A historical artifact of id generation, not a time value.
	KindTimestampLegacy Kind = "timestamp"
	// KindOpaqueLegacy is anything else, including empty identifiers.
	KindOpaqueLegacy Kind = "legacy"
)

// uuidV4 matches the canonical 8-4-4-4-12 form with version nibble 4 and an
// RFC 4122 variant nibble, case-insensitive.
var uuidV4 = regexp.MustCompile(`^(?i)[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// placeIDPrefixes are the mapping-provider prefixes seen across dataset
// generations. ChIJ covers the vast majority of place ids in the wild.
var placeIDPrefixes = []string{"ChIJ", "GhIJ", "EiQ"}

// Epoch-seconds bounds for timestamp-shaped legacy ids: [2000-01-01,
// 2100-01-01). Some datasets carry the millisecond equivalents (JS Date.now()
// era), so the same window is also accepted at millisecond resolution.
const (
	epochMinSec = 946684800
	epochMaxSec = 4102444800
)

// Normalize trims an identifier to its comparable string form. Missing
// identifiers normalize to the empty string. All identifier equality checks
// must compare normalized values.
func Normalize(id string) string {
	return strings.TrimSpace(id)
}

// Classify returns exactly one Kind for any input string.
// Classify is stable under Normalize: Classify(Normalize(id)) == Classify(id).
func Classify(id string) Kind {
	id = Normalize(id)
	switch {
	case id == "":
		return KindOpaqueLegacy
	case uuidV4.MatchString(id):
		return KindUUID
	case hasPlaceIDPrefix(id):
		return KindPlaceID
	case isEpochShaped(id):
		return KindTimestampLegacy
	default:
		return KindOpaqueLegacy
	}
}

func hasPlaceIDPrefix(id string) bool {
	for _, p := range placeIDPrefixes {
		if strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}

func isEpochShaped(id string) bool {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return false
	}
	if n >= epochMinSec && n < epochMaxSec {
		return true
	}
	return n >= epochMinSec*1000 && n < epochMaxSec*1000
}

// NewUUID mints a random v4 UUID string. It draws from the platform's
// cryptographically strong source; if that source is unavailable it falls
// back to a pseudo-random generator and fixes up the version and variant
// bits itself.
func NewUUID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	return pseudoUUID()
}

func pseudoUUID() string {
	var b [16]byte
	hi, lo := rand.Uint64(), rand.Uint64()
	for i := 0; i < 8; i++ {
		b[i] = byte(hi >> (8 * i))
		b[8+i] = byte(lo >> (8 * i))
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
	return uuid.UUID(b).String()
}
