// Package sink stores captured credential records.
package sink

import (
	"context"
	"fmt"
)

// Sink is an append-only record store that can be read back and cleared.
type Sink interface {
	Append(ctx context.Context, r Record) error
	ReadAll(ctx context.Context) ([]Record, error)
	Clear(ctx context.Context) error
	Close() error
}

// Config selects and configures the record sink.
type Config struct {
	Type string `yaml:"type"` // "jsonl" (default) or "sqlite"
	Path string `yaml:"path"`
}

// DefaultPath is used when no path is configured.
const DefaultPath = "cards.jsonl"

// New opens the sink described by cfg.
func New(cfg Config) (Sink, error) {
	switch cfg.Type {
	case "", "jsonl":
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		return NewJSONL(path)
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("sqlite sink requires a path")
		}
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown sink type %q", cfg.Type)
	}
}
