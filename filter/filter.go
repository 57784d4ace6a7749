// Package filter decides which decoded credentials are worth recording.
package filter

import (
	"sync"

	"tusk/credential"
	"tusk/wiegand"
)

// Verdict is the result of checking a credential.
type Verdict int

const (
	Accept Verdict = iota
	Duplicate
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Accept:
		return "accept"
	case Duplicate:
		return "duplicate"
	default:
		return "invalid"
	}
}

// Filter remembers the last emitted frame and suppresses back-to-back
// repeats of it.
type Filter struct {
	mu   sync.Mutex
	last wiegand.Frame
	set  bool
}

func New() *Filter {
	return &Filter{}
}

// Valid reports whether c is a plausible credential: a supported length,
// a known kind, and at least one non-zero identifying field.
func Valid(c credential.Credential) bool {
	n := c.BitLength
	if (n < credential.MinHIDBits || n > credential.MaxHIDBits) && n != credential.GallagherBits {
		return false
	}
	if c.Kind == credential.KindUnknown {
		return false
	}
	return c.FacilityCode != 0 || c.CardNumber != 0
}

// Check classifies c, decoded from f. It does not record anything; call
// Commit once the credential has actually been emitted.
func (fl *Filter) Check(c credential.Credential, f wiegand.Frame) Verdict {
	if !Valid(c) {
		return Invalid
	}

	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.set && fl.last.Equal(f) {
		return Duplicate
	}
	return Accept
}

func (fl *Filter) Commit(f wiegand.Frame) {
	fl.mu.Lock()
	fl.last = f
	fl.set = true
	fl.mu.Unlock()
}

// Reset forgets the last emitted frame so the next read is never a
// duplicate.
func (fl *Filter) Reset() {
	fl.mu.Lock()
	fl.last = wiegand.Frame{}
	fl.set = false
	fl.mu.Unlock()
}

// Last returns the last emitted frame, if any.
func (fl *Filter) Last() (wiegand.Frame, bool) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	return fl.last, fl.set
}
