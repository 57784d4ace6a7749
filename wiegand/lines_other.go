//go:build !linux

package wiegand

// Open only supports driver "none" on non-linux platforms.
func Open(cfg Config, c *Capture) (Lines, error) {
	if cfg.Driver == "none" {
		return noLines{}, nil
	}
	return nil, ErrNotSupported
}
