// Package settings is the named-string configuration source: Wi-Fi
// parameters the device serves and the capture-enabled flag.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v2"
)

// Setting names.
const (
	SSID           = "ssid"
	Password       = "password"
	Channel        = "channel"
	HideSSID       = "hidessid"
	CaptureEnabled = "capture_enabled"
)

// Defaults holds the value of every known setting on a fresh device.
var Defaults = map[string]string{
	SSID:           "Tusk",
	Password:       "12345678",
	Channel:        "1",
	HideSSID:       "0",
	CaptureEnabled: "1",
}

// ErrUnknown is returned when setting a name that is not in Defaults.
var ErrUnknown = errors.New("unknown setting")

// Source reads and writes named string settings.
type Source interface {
	Get(name string) string
	Set(name, value string) error
}

// Store is a Source backed by a YAML file. With an empty path it keeps
// values in memory only.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// Open loads the settings file at path. A missing file yields defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path, values: make(map[string]string, len(Defaults))}
	for k, v := range Defaults {
		s.values[k] = v
	}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var stored map[string]string
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode settings file: %w", err)
	}
	for k, v := range stored {
		if _, ok := Defaults[k]; ok {
			s.values[k] = v
		}
	}
	return s, nil
}

// Get returns the value of name, or "" if it is unknown.
func (s *Store) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Set updates name and persists the whole set.
func (s *Store) Set(name, value string) error {
	if _, ok := Defaults[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknown, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.values[name]
	s.values[name] = value
	if err := s.save(); err != nil {
		s.values[name] = old
		return err
	}
	return nil
}

// Names returns the known setting names in sorted order.
func Names() []string {
	names := make([]string, 0, len(Defaults))
	for k := range Defaults {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename settings file: %w", err)
	}
	return nil
}

// Bool reads name as a flag. "1", "true", "on" and "yes" are true.
func Bool(src Source, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(src.Get(name)))
	if err == nil {
		return v
	}
	switch strings.ToLower(strings.TrimSpace(src.Get(name))) {
	case "on", "yes":
		return true
	}
	return false
}

// Int reads name as an integer, returning def if it does not parse.
func Int(src Source, name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(src.Get(name)))
	if err != nil {
		return def
	}
	return v
}

// AccessPoint is the typed view of the Wi-Fi settings.
type AccessPoint struct {
	SSID     string
	Password string
	Channel  int
	Hidden   bool
}

// LoadAccessPoint reads the Wi-Fi settings from src. A channel that does
// not parse falls back to the default.
func LoadAccessPoint(src Source) AccessPoint {
	def, _ := strconv.Atoi(Defaults[Channel])
	return AccessPoint{
		SSID:     src.Get(SSID),
		Password: src.Get(Password),
		Channel:  Int(src, Channel, def),
		Hidden:   Bool(src, HideSSID),
	}
}

// FormatBool is the stored form of a flag.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
