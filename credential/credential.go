// Package credential decodes captured Wiegand frames into access-control
// credentials. Decoding is a pure function of the frame.
package credential

import (
	"tusk/wiegand"
)

// Kind identifies the card family a frame was decoded as.
type Kind int

const (
	KindUnknown Kind = iota
	KindHID
	KindGallagher
)

func (k Kind) String() string {
	switch k {
	case KindHID:
		return "hid"
	case KindGallagher:
		return "gallagher"
	default:
		return "unknown"
	}
}

// Credential is the decoded content of one frame.
type Credential struct {
	Kind         Kind
	Format       string // e.g. "H10301", "Cardax"
	BitLength    int
	FacilityCode uint32
	CardNumber   uint32
	Hex          string
	Raw          string // captured bits as '0'/'1'

	// Gallagher is set only for KindGallagher.
	Gallagher *GallagherFields
}

// GallagherFields are the Cardax-specific fields.
type GallagherFields struct {
	RegionCode uint8
	IssueLevel uint8
	Checksum   uint8 // as read from the card, not verified unless configured
}

// Config holds decoder options.
type Config struct {
	VerifyGallagherChecksum bool `yaml:"verify_gallagher_checksum"`
}

// Decoder dispatches frames to the format decoders by bit length.
type Decoder struct {
	verifyChecksum bool
}

// New creates a Decoder.
func New(cfg Config) *Decoder {
	return &Decoder{verifyChecksum: cfg.VerifyGallagherChecksum}
}

// Decode decodes f with default options.
func Decode(f wiegand.Frame) (Credential, error) {
	return (&Decoder{}).Decode(f)
}

// Decode returns a KindUnknown credential and a nil error for lengths no
// format is registered for. A Gallagher-length frame that fails to parse
// returns KindUnknown and an error wrapping ErrMalformed.
func (d *Decoder) Decode(f wiegand.Frame) (Credential, error) {
	if f.Count == GallagherBits {
		return decodeGallagher(f, d.verifyChecksum)
	}
	if c, ok := decodeHID(f); ok {
		return c, nil
	}
	return unknown(f), nil
}

func unknown(f wiegand.Frame) Credential {
	return Credential{
		Kind:      KindUnknown,
		BitLength: f.Count,
		Raw:       f.String(),
	}
}
