package wiegand

import (
	"errors"
	"time"
)

// ErrNotSupported is returned when a GPIO driver is unavailable on this platform.
var ErrNotSupported = errors.New("gpio driver not supported on this platform")

// Config holds the data line configuration.
type Config struct {
	Driver   string        `yaml:"driver"`    // "cdev" (default), "sysfs", "none"
	Chip     string        `yaml:"chip"`      // gpiochip for cdev, default "gpiochip0"
	Data0Pin int           `yaml:"data0_pin"` // DATA0, pulses low for a 0 bit
	Data1Pin int           `yaml:"data1_pin"` // DATA1, pulses low for a 1 bit
	Silence  time.Duration `yaml:"silence"`   // idle time that ends a frame
	Debounce time.Duration `yaml:"debounce"`  // cdev only, 0 disables
}

// Lines is an open pair of data lines feeding a Capture.
type Lines interface {
	Close() error
}

type noLines struct{}

func (noLines) Close() error { return nil }
