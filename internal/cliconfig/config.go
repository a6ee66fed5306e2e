package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Destination kinds accepted in the destinations table.
const (
	KindPrinter = "printer"
	KindPDF     = "pdf"
)

// Default values for a batch.
const (
	DefaultStartSerial     = 1
	DefaultCopies          = 1
	DefaultPrinter         = "HP LaserJet P4014"
	DefaultPaper           = "Legal"
	DefaultFont            = "Arial"
	DefaultFontSize        = 12
	DefaultConverter       = "soffice"
	DefaultPause           = 500 * time.Millisecond
	DefaultMonitorTimeout  = 120 * time.Second
	DefaultMonitorInterval = 2 * time.Second
)

// DestinationConfig is one entry of the destinations table.
type DestinationConfig struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"`
	Queue string `toml:"queue"`
}

// Point is a label coordinate in points from the bottom-left corner.
type Point struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// Config holds CLI configuration for stamper.
type Config struct {
	Template  string
	OutputDir string
	WorkDir   string

	StartSerial int
	Copies      int
	Printer     string
	Paper       string

	Wait            bool
	MonitorTimeout  time.Duration
	MonitorInterval time.Duration

	Font      string
	FontSize  float64
	Converter string
	Pause     time.Duration
	Verbose   bool

	Destinations []DestinationConfig

	// Placement overrides the label coordinate per paper size, keyed by
	// the lower-case paper name.
	Placement map[string]Point
}

// DefaultDestinations returns the destinations known without a config file.
func DefaultDestinations() []DestinationConfig {
	return []DestinationConfig{
		{Name: DefaultPrinter, Kind: KindPrinter, Queue: "HP_LaserJet_P4014"},
		{Name: "Save as PDF", Kind: KindPDF, Queue: "PDF"},
	}
}

// DefaultConfig returns a Config with default values. Paths are left empty
// and filled by ResolvePaths.
func DefaultConfig() Config {
	return Config{
		StartSerial:     DefaultStartSerial,
		Copies:          DefaultCopies,
		Printer:         DefaultPrinter,
		Paper:           DefaultPaper,
		Wait:            true,
		MonitorTimeout:  DefaultMonitorTimeout,
		MonitorInterval: DefaultMonitorInterval,
		Font:            DefaultFont,
		FontSize:        DefaultFontSize,
		Converter:       DefaultConverter,
		Pause:           DefaultPause,
		Destinations:    DefaultDestinations(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.StartSerial < 0 {
		return fmt.Errorf("start must not be negative")
	}
	if c.Copies <= 0 {
		return fmt.Errorf("copies must be positive")
	}
	if strings.TrimSpace(c.Printer) == "" {
		return fmt.Errorf("printer is required")
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("font size must be positive")
	}
	if c.Converter == "" {
		c.Converter = DefaultConverter
	}
	if c.Pause < 0 {
		return fmt.Errorf("pause must not be negative")
	}
	if c.MonitorTimeout <= 0 {
		return fmt.Errorf("monitor timeout must be positive")
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("monitor interval must be positive")
	}

	if len(c.Destinations) == 0 {
		return fmt.Errorf("at least one destination is required")
	}
	for i, d := range c.Destinations {
		if d.Name == "" {
			return fmt.Errorf("destination %d: name is required", i)
		}
		switch d.Kind {
		case KindPrinter:
			if d.Queue == "" {
				return fmt.Errorf("destination %q: queue is required", d.Name)
			}
		case KindPDF:
		default:
			return fmt.Errorf("destination %q: unknown kind %q", d.Name, d.Kind)
		}
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value from a pointer, so zero can be configured.
// Values below min are rejected.
func (s *configSetter) setIntPtr(flag string, value *int, min int, dst *int) error {
	if value == nil || s.changed[flag] {
		return nil
	}
	if *value < min {
		return fmt.Errorf("%s must be at least %d, got %d", flag, min, *value)
	}
	*dst = *value
	return nil
}

// setFloatPtr sets a positive float64 value from a pointer.
func (s *configSetter) setFloatPtr(flag string, value *float64, dst *float64) error {
	if value == nil || s.changed[flag] {
		return nil
	}
	if *value <= 0 {
		return fmt.Errorf("%s must be positive, got %v", flag, *value)
	}
	*dst = *value
	return nil
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Values below min are rejected.
func (s *configSetter) setIntFromString(flag, value string, min int, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < min {
		return fmt.Errorf("%s must be at least %d, got %d", flag, min, i)
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to a positive float64 and sets the destination.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return fmt.Errorf("%s must be positive, got %v", flag, f)
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
