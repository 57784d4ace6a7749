package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"tusk/button"
	"tusk/credential"
	"tusk/eventpipe"
	"tusk/indicator"
	"tusk/mqtt"
	"tusk/reader"
	"tusk/sink"
	"tusk/wiegand"
)

// Config is the main configuration structure for tusk.
type Config struct {
	// MQTT connection settings
	MQTT mqtt.Config `yaml:"mqtt"`

	// Wiegand data lines
	Wiegand wiegand.Config `yaml:"wiegand"`

	// Decoder options
	Decoder credential.Config `yaml:"decoder"`

	// Record sink
	Sink sink.Config `yaml:"sink"`

	// Serial bridge (optional frame source)
	Serial reader.Config `yaml:"serial"`

	// Named pipe for bench commands
	EventPipe eventpipe.Config `yaml:"event_pipe"`

	// Indicator configuration
	Indicator indicator.Config `yaml:"indicator"`

	// Capture toggle button
	Button button.Config `yaml:"button"`

	// General settings
	ClientID     string        `yaml:"client_id"`
	SettingsFile string        `yaml:"settings_file"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// loadConfig reads the YAML config file at path.
func loadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.SettingsFile == "" {
		cfg.SettingsFile = "settings.yml"
	}
	return &cfg, nil
}
