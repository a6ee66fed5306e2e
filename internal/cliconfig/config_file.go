package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Template        string              `toml:"template"`
	OutputDir       string              `toml:"output_dir"`
	WorkDir         string              `toml:"work_dir"`
	StartSerial     *int                `toml:"start"`
	Copies          *int                `toml:"copies"`
	Printer         string              `toml:"printer"`
	Paper           string              `toml:"paper"`
	Wait            *bool               `toml:"wait"`
	MonitorTimeout  string              `toml:"monitor_timeout"`
	MonitorInterval string              `toml:"monitor_interval"`
	Font            string              `toml:"font"`
	FontSize        *float64            `toml:"font_size"`
	Converter       string              `toml:"converter"`
	Pause           string              `toml:"pause"`
	Verbose         *bool               `toml:"verbose"`
	Destinations    []DestinationConfig `toml:"destinations"`
	Placement       map[string]Point    `toml:"placement"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.stamper/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".stamper", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
// A destinations table replaces the built-in one; placement entries are
// merged per paper size.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("template", fc.Template, &cfg.Template)
	s.setString("output-dir", fc.OutputDir, &cfg.OutputDir)
	s.setString("work-dir", fc.WorkDir, &cfg.WorkDir)
	s.setString("printer", fc.Printer, &cfg.Printer)
	s.setString("paper", fc.Paper, &cfg.Paper)
	s.setString("font", fc.Font, &cfg.Font)
	s.setString("converter", fc.Converter, &cfg.Converter)

	if err := s.setIntPtr("start", fc.StartSerial, 0, &cfg.StartSerial); err != nil {
		return err
	}
	if err := s.setIntPtr("copies", fc.Copies, 1, &cfg.Copies); err != nil {
		return err
	}
	if err := s.setFloatPtr("font-size", fc.FontSize, &cfg.FontSize); err != nil {
		return err
	}

	if err := s.setDuration("monitor-timeout", fc.MonitorTimeout, &cfg.MonitorTimeout); err != nil {
		return err
	}
	if err := s.setDuration("monitor-interval", fc.MonitorInterval, &cfg.MonitorInterval); err != nil {
		return err
	}
	if err := s.setDuration("pause", fc.Pause, &cfg.Pause); err != nil {
		return err
	}

	s.setBool("wait", fc.Wait, &cfg.Wait)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	if len(fc.Destinations) > 0 {
		cfg.Destinations = append([]DestinationConfig(nil), fc.Destinations...)
	}
	for paper, p := range fc.Placement {
		if p.X < 0 || p.Y < 0 {
			return fmt.Errorf("placement %q: coordinates must not be negative", paper)
		}
		if cfg.Placement == nil {
			cfg.Placement = map[string]Point{}
		}
		cfg.Placement[strings.ToLower(paper)] = p
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
