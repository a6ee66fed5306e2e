package cliconfig

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	falseVal := false
	zero := 0
	negative := -3
	copies25, copies5 := 25, 5
	size14, sizeNeg := 14.0, -2.0

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Template:       "/srv/stamp.docx",
				Copies:         &copies25,
				Printer:        "Save as PDF",
				Paper:          "A4",
				MonitorTimeout: "30s",
				FontSize:       &size14,
				Wait:           &falseVal,
				Verbose:        &trueVal,
			},
			changed: map[string]bool{},
			initial: Config{Wait: true},
			expected: Config{
				Template:       "/srv/stamp.docx",
				Copies:         25,
				Printer:        "Save as PDF",
				Paper:          "A4",
				MonitorTimeout: 30 * time.Second,
				FontSize:       14,
				Wait:           false,
				Verbose:        true,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Printer: "Save as PDF",
				Copies:  &copies5,
			},
			changed: map[string]bool{"printer": true},
			initial: Config{Printer: "HP LaserJet P4014", Copies: 1},
			expected: Config{
				Printer: "HP LaserJet P4014", // unchanged because flag was set
				Copies:  5,
			},
		},
		{
			name:       "start serial zero is applied",
			fileConfig: FileConfig{StartSerial: &zero},
			changed:    map[string]bool{},
			initial:    Config{StartSerial: 1},
			expected:   Config{StartSerial: 0},
		},
		{
			name:       "pause zero is applied",
			fileConfig: FileConfig{Pause: "0s"},
			changed:    map[string]bool{},
			initial:    Config{Pause: DefaultPause},
			expected:   Config{Pause: 0},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{MonitorInterval: "soon"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "returns error for zero copies",
			fileConfig: FileConfig{Copies: &zero},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "returns error for negative copies",
			fileConfig: FileConfig{Copies: &negative},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "returns error for negative start",
			fileConfig: FileConfig{StartSerial: &negative},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "returns error for negative font size",
			fileConfig: FileConfig{FontSize: &sizeNeg},
			changed:    map[string]bool{},
			wantErr:    true,
		},
		{
			name:       "flag wins over invalid copies",
			fileConfig: FileConfig{Copies: &zero},
			changed:    map[string]bool{"copies": true},
			initial:    Config{Copies: 2},
			expected:   Config{Copies: 2},
		},
		{
			name: "returns error for negative placement",
			fileConfig: FileConfig{
				Placement: map[string]Point{"legal": {X: -1, Y: 10}},
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("config = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestApplyFileConfig_Tables(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Placement = map[string]Point{"legal": {X: 1, Y: 2}}

	fc := FileConfig{
		Destinations: []DestinationConfig{{Name: "Office", Kind: KindPrinter, Queue: "office"}},
		Placement:    map[string]Point{"Letter": {X: 100, Y: 200}},
	}
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig() error = %v", err)
	}

	if len(cfg.Destinations) != 1 || cfg.Destinations[0].Queue != "office" {
		t.Errorf("Destinations = %+v, want the file table", cfg.Destinations)
	}
	want := map[string]Point{"legal": {X: 1, Y: 2}, "letter": {X: 100, Y: 200}}
	if !reflect.DeepEqual(cfg.Placement, want) {
		t.Errorf("Placement = %+v, want %+v", cfg.Placement, want)
	}
}

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
template = "/srv/stamps/stamp.docx"
start = 0
copies = 3
printer = "Save as PDF"
paper = "Letter"
wait = false
pause = "1s"
font = "Courier"
font_size = 10.5

[[destinations]]
name = "Save as PDF"
kind = "pdf"
queue = "PDF"

[[destinations]]
name = "Front Desk"
kind = "printer"
queue = "front_desk"

[placement.legal]
x = 268
y = 680
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Template != "/srv/stamps/stamp.docx" {
		t.Errorf("Template = %q", fc.Template)
	}
	if fc.StartSerial == nil || *fc.StartSerial != 0 {
		t.Errorf("StartSerial = %v, want 0", fc.StartSerial)
	}
	if fc.Copies == nil || *fc.Copies != 3 || fc.FontSize == nil || *fc.FontSize != 10.5 || fc.Pause != "1s" {
		t.Errorf("copies/font size/pause = %v/%v/%q", fc.Copies, fc.FontSize, fc.Pause)
	}
	if fc.Wait == nil || *fc.Wait {
		t.Errorf("Wait = %v, want false", fc.Wait)
	}
	if len(fc.Destinations) != 2 || fc.Destinations[1] != (DestinationConfig{Name: "Front Desk", Kind: "printer", Queue: "front_desk"}) {
		t.Errorf("Destinations = %+v", fc.Destinations)
	}
	if fc.Placement["legal"] != (Point{X: 268, Y: 680}) {
		t.Errorf("Placement = %+v", fc.Placement)
	}
}

func TestLoadFileConfig_Errors(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadFileConfig() on missing file: expected error")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("copies = [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig() on invalid TOML: expected error")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := DefaultConfigPath()
	if !strings.HasSuffix(path, filepath.Join(".stamper", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %q", path)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "x")
	if FileExists(p) {
		t.Error("FileExists() = true for missing file")
	}
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if !FileExists(p) {
		t.Error("FileExists() = false for existing file")
	}
}
