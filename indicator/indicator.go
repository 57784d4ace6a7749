package indicator

import (
	"time"

	"tusk/display"
)

// Indicator is the interface for read feedback implementations (LEDs, neopixels, screen).
type Indicator interface {
	// Idle sets the indicator to the ready state.
	Idle()

	// Recorded signals a credential was stored.
	Recorded(info *ReadInfo)

	// Duplicate signals a repeat of the last stored credential.
	Duplicate(info *ReadInfo)

	// Rejected signals a read that failed validation.
	Rejected(info *ReadInfo)

	// DecodeError signals a frame that could not be decoded.
	DecodeError(info *ReadInfo)

	// Connected marks the uplink as up; Idle shows the normal ready state.
	Connected()

	// ConnectionLost sets the indicator to connection lost state.
	ConnectionLost()

	// Shutdown sets the indicator to shutdown state.
	Shutdown()

	// Release releases any hardware resources.
	Release() error
}

// Config holds configuration for indicator implementations.
type Config struct {
	// GPIO LED pins (nil = not configured)
	GreenPin  *uint8 `yaml:"green_pin"`
	YellowPin *uint8 `yaml:"yellow_pin"`
	RedPin    *uint8 `yaml:"red_pin"`

	// Neopixel pipe path (empty = not configured)
	NeopixelPipe string `yaml:"neopixel_pipe"`

	// Framebuffer display (true = enabled)
	VideoEnabled bool `yaml:"video_enabled"`

	// How long read feedback is shown before returning to idle.
	Hold time.Duration `yaml:"hold"`
}

// DefaultHold is used when Config.Hold is zero.
const DefaultHold = 500 * time.Millisecond

// HoldOrDefault returns the configured hold time.
func (c Config) HoldOrDefault() time.Duration {
	if c.Hold <= 0 {
		return DefaultHold
	}
	return c.Hold
}

// New creates an Indicator based on the provided configuration.
// Returns a Multi indicator if more than one output is configured.
func New(cfg Config) (Indicator, error) {
	var indicators []Indicator

	// Add GPIO indicator if any pins configured
	if cfg.GreenPin != nil || cfg.YellowPin != nil || cfg.RedPin != nil {
		gpio, err := NewGPIO(cfg.GreenPin, cfg.YellowPin, cfg.RedPin)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, gpio)
	}

	// Add Neopixel indicator if pipe configured
	if cfg.NeopixelPipe != "" {
		neo, err := NewNeopixel(cfg.NeopixelPipe)
		if err != nil {
			return nil, err
		}
		indicators = append(indicators, neo)
	}

	if cfg.VideoEnabled {
		if !display.ScreenSupported() {
			releaseAll(indicators)
			return nil, display.ErrScreenNotCompiled
		}
		fb, err := display.OpenFramebuffer(display.DefaultDevice)
		if err != nil {
			releaseAll(indicators)
			return nil, err
		}
		indicators = append(indicators, NewVideo(fb))
	}

	if len(indicators) == 0 {
		return &Noop{}, nil
	}
	if len(indicators) == 1 {
		return indicators[0], nil
	}
	return NewMulti(indicators...), nil
}

func releaseAll(indicators []Indicator) {
	for _, ind := range indicators {
		ind.Release()
	}
}
