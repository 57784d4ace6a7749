//go:build linux

package button

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

// Button handles a push button wired between a GPIO line and ground.
type Button struct {
	line *gpiocdev.Line
	presser
}

// New requests the button line. Returns nil if no pin is configured.
func New(cfg Config, onPress func()) (*Button, error) {
	if cfg.Pin == 0 {
		return nil, nil
	}
	if cfg.Chip == "" {
		cfg.Chip = "gpiochip0"
	}

	b := &Button{presser: presser{onPress: onPress}}

	var err error
	b.line, err = gpiocdev.RequestLine(cfg.Chip, cfg.Pin,
		gpiocdev.WithPullUp,
		gpiocdev.WithFallingEdge,
		gpiocdev.WithDebounce(DefaultDebounce),
		gpiocdev.WithEventHandler(b.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request button line %s:%d: %w", cfg.Chip, cfg.Pin, err)
	}

	log.Printf("Button on %s line %d", cfg.Chip, cfg.Pin)
	return b, nil
}

func (b *Button) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventFallingEdge {
		return
	}
	b.press(evt.Timestamp)
}

// Release releases the GPIO line.
func (b *Button) Release() error {
	if b.line == nil {
		return nil
	}
	return b.line.Close()
}
