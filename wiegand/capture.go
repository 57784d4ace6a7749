package wiegand

import (
	"sync"
	"sync/atomic"
	"time"
)

// DefaultSilence is how long the data lines must stay idle before the
// accumulated bits are treated as a complete frame.
const DefaultSilence = 25 * time.Millisecond

// Capture accumulates bits from the two Wiegand data lines.
//
// Zero and One are called from edge handlers and only touch fixed-size
// state under a short lock. TakeFrame is the only way to observe the
// accumulated bits, and it resets the state in the same critical section.
type Capture struct {
	mu       sync.Mutex
	bits     [MaxBits]uint8
	count    int
	deadline time.Time

	silence time.Duration
	now     func() time.Time
	dropped atomic.Uint64
}

// NewCapture creates a capture engine with the given silence window.
// A zero silence uses DefaultSilence.
func NewCapture(silence time.Duration) *Capture {
	if silence <= 0 {
		silence = DefaultSilence
	}
	return &Capture{
		silence: silence,
		now:     time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (c *Capture) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Zero records a pulse on DATA0.
func (c *Capture) Zero() {
	c.Bit(0)
}

// One records a pulse on DATA1.
func (c *Capture) One() {
	c.Bit(1)
}

// Bit records a single bit and pushes the silence deadline out.
func (c *Capture) Bit(v uint8) {
	c.mu.Lock()
	if c.count < MaxBits {
		c.bits[c.count] = v & 1
		c.count++
	} else {
		c.dropped.Add(1)
	}
	c.deadline = c.now().Add(c.silence)
	c.mu.Unlock()
}

// TakeFrame returns the completed frame once the silence window has
// elapsed with at least one bit captured, and resets capture state.
func (c *Capture) TakeFrame(now time.Time) (Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.count == 0 || now.Before(c.deadline) {
		return Frame{}, false
	}

	f := Frame{Bits: c.bits, Count: c.count}
	c.bits = [MaxBits]uint8{}
	c.count = 0
	c.deadline = time.Time{}
	return f, true
}

// Pending returns the number of bits accumulated for the frame in progress.
func (c *Capture) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Dropped returns how many edges arrived after the buffer was full.
func (c *Capture) Dropped() uint64 {
	return c.dropped.Load()
}
