// Package button watches an optional push button that toggles capture.
package button

import (
	"sync"
	"time"
)

// DefaultDebounce is the line debounce period.
const DefaultDebounce = 2 * time.Millisecond

// minGap drops presses closer together than a person can make them.
const minGap = 250 * time.Millisecond

// Config holds configuration for the button line.
type Config struct {
	Chip string `yaml:"chip"`
	Pin  int    `yaml:"pin"` // 0 = no button
}

// presser filters raw press events by their kernel timestamps.
type presser struct {
	mu      sync.Mutex
	last    time.Duration
	seen    bool
	onPress func()
}

func (p *presser) press(ts time.Duration) {
	p.mu.Lock()
	if p.seen && ts-p.last < minGap {
		p.mu.Unlock()
		return
	}
	p.last = ts
	p.seen = true
	p.mu.Unlock()

	if p.onPress != nil {
		p.onPress()
	}
}
