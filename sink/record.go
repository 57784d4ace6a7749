package sink

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"tusk/credential"
)

// Record is one captured credential as stored by a sink.
type Record struct {
	ID           string    `json:"id"`
	CapturedAt   time.Time `json:"captured_at"`
	CardType     string    `json:"card_type"`
	Format       string    `json:"format,omitempty"`
	BitLength    int       `json:"bit_length"`
	FacilityCode uint32    `json:"facility_code"`
	CardNumber   uint32    `json:"card_number"`
	Hex          string    `json:"hex"`
	Raw          string    `json:"raw"`

	// Gallagher only.
	RegionCode *uint8 `json:"region_code,omitempty"`
	IssueLevel *uint8 `json:"issue_level,omitempty"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// newID returns a ULID for t. IDs made within the same millisecond sort
// in creation order.
func newID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// NewRecord builds the record for c captured at t.
func NewRecord(c credential.Credential, t time.Time) Record {
	r := Record{
		ID:           newID(t),
		CapturedAt:   t.UTC(),
		CardType:     c.Kind.String(),
		Format:       c.Format,
		BitLength:    c.BitLength,
		FacilityCode: c.FacilityCode,
		CardNumber:   c.CardNumber,
		Hex:          c.Hex,
		Raw:          c.Raw,
	}
	if g := c.Gallagher; g != nil {
		region, issue := g.RegionCode, g.IssueLevel
		r.RegionCode = &region
		r.IssueLevel = &issue
	}
	return r
}
