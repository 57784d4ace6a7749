package indicator

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Neopixel command strings for the external neopixel tool. Colours are
// BBGGRR.
const (
	neoConnectionLost = "@2 !150000 001010"
	neoNormalIdle     = "@3 !150000 400000"
	neoRecorded       = "@1 !50000 8000"
	neoDuplicate      = "@1 !50000 8080"
	neoRejected       = "@2 !10000 ff"
	neoTerminated     = "@0 010101"
)

// Neopixel implements Indicator using an external neopixel tool via named pipe.
type Neopixel struct {
	mu         sync.Mutex
	pipe       io.WriteCloser
	idleString string
}

// NewNeopixel creates a new Neopixel indicator.
func NewNeopixel(pipePath string) (*Neopixel, error) {
	f, err := os.OpenFile(pipePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open neopixel pipe %s: %w", pipePath, err)
	}
	return newNeopixel(f), nil
}

func newNeopixel(w io.WriteCloser) *Neopixel {
	return &Neopixel{
		pipe:       w,
		idleString: neoConnectionLost, // Start with connection lost until connected
	}
}

// Idle implements Indicator.Idle.
func (n *Neopixel) Idle() {
	n.mu.Lock()
	s := n.idleString
	n.mu.Unlock()
	n.write(s)
}

// Recorded implements Indicator.Recorded.
func (n *Neopixel) Recorded(info *ReadInfo) {
	n.write(neoRecorded)
}

// Duplicate implements Indicator.Duplicate.
func (n *Neopixel) Duplicate(info *ReadInfo) {
	n.write(neoDuplicate)
}

// Rejected implements Indicator.Rejected.
func (n *Neopixel) Rejected(info *ReadInfo) {
	n.write(neoRejected)
}

// DecodeError implements Indicator.DecodeError.
func (n *Neopixel) DecodeError(info *ReadInfo) {
	n.write(neoRejected)
}

// Connected updates the idle string to normal.
func (n *Neopixel) Connected() {
	n.mu.Lock()
	n.idleString = neoNormalIdle
	n.mu.Unlock()
}

// ConnectionLost implements Indicator.ConnectionLost.
func (n *Neopixel) ConnectionLost() {
	n.mu.Lock()
	n.idleString = neoConnectionLost
	n.mu.Unlock()
	n.write(neoConnectionLost)
}

// Shutdown implements Indicator.Shutdown.
func (n *Neopixel) Shutdown() {
	n.write(neoTerminated)
}

// Release implements Indicator.Release.
func (n *Neopixel) Release() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pipe == nil {
		return nil
	}
	err := n.pipe.Close()
	n.pipe = nil
	return err
}

func (n *Neopixel) write(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pipe != nil {
		n.pipe.Write([]byte(s))
	}
}
