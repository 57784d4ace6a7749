// Package reader provides frame sources other than the GPIO data lines.
package reader

import (
	"context"

	"tusk/wiegand"
)

// FrameReader is the interface for bridge readers that deliver whole
// frames. Read blocks until a frame is read or ctx is cancelled.
type FrameReader interface {
	Read(ctx context.Context) (wiegand.Frame, error)

	// Close releases any resources held by the reader.
	Close() error
}

// Config holds serial bridge settings. An empty device disables the bridge.
type Config struct {
	Device string `yaml:"device"` // e.g., "/dev/serial0", "/dev/ttyUSB0"
	Baud   int    `yaml:"baud"`
}

// New creates a FrameReader for cfg, or returns nil if none is configured.
func New(cfg Config) (FrameReader, error) {
	if cfg.Device == "" {
		return nil, nil
	}
	s, err := NewSerial(cfg.Device, cfg.Baud)
	if err != nil {
		return nil, err
	}
	return s, nil
}
