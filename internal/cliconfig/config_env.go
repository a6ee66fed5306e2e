package cliconfig

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables that are already
// set are left alone.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" || !FileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (STAMPER_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("template", os.Getenv("STAMPER_TEMPLATE"), &cfg.Template)
	s.setString("output-dir", os.Getenv("STAMPER_OUTPUT_DIR"), &cfg.OutputDir)
	s.setString("work-dir", os.Getenv("STAMPER_WORK_DIR"), &cfg.WorkDir)
	s.setString("printer", os.Getenv("STAMPER_PRINTER"), &cfg.Printer)
	s.setString("paper", os.Getenv("STAMPER_PAPER"), &cfg.Paper)
	s.setString("font", os.Getenv("STAMPER_FONT"), &cfg.Font)
	s.setString("converter", os.Getenv("STAMPER_CONVERTER"), &cfg.Converter)

	if err := s.setIntFromString("start", os.Getenv("STAMPER_START"), 0, &cfg.StartSerial); err != nil {
		return err
	}
	if err := s.setIntFromString("copies", os.Getenv("STAMPER_COPIES"), 1, &cfg.Copies); err != nil {
		return err
	}
	if err := s.setFloatFromString("font-size", os.Getenv("STAMPER_FONT_SIZE"), &cfg.FontSize); err != nil {
		return err
	}

	if err := s.setDuration("monitor-timeout", os.Getenv("STAMPER_MONITOR_TIMEOUT"), &cfg.MonitorTimeout); err != nil {
		return err
	}
	if err := s.setDuration("monitor-interval", os.Getenv("STAMPER_MONITOR_INTERVAL"), &cfg.MonitorInterval); err != nil {
		return err
	}
	if err := s.setDuration("pause", os.Getenv("STAMPER_PAUSE"), &cfg.Pause); err != nil {
		return err
	}

	s.setBoolFromString("wait", os.Getenv("STAMPER_WAIT"), &cfg.Wait)
	s.setBoolFromString("verbose", os.Getenv("STAMPER_VERBOSE"), &cfg.Verbose)

	return nil
}
