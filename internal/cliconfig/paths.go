package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultTemplateName is the template looked up next to the executable.
const DefaultTemplateName = "stamp.docx"

// ExecutableDir returns the directory of the running binary with symlinks
// resolved, or the working directory when that fails.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// ResolvePaths fills empty paths with their defaults and makes every path
// absolute. The template and output directory default to baseDir, the work
// directory to the system temp dir.
func ResolvePaths(cfg *Config, baseDir string) error {
	if cfg.Template == "" {
		cfg.Template = filepath.Join(baseDir, DefaultTemplateName)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = baseDir
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = os.TempDir()
	}

	for _, p := range []*string{&cfg.Template, &cfg.OutputDir, &cfg.WorkDir} {
		abs, err := filepath.Abs(expandHome(*p))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(p string) string {
	if len(p) < 2 || p[0] != '~' || p[1] != '/' {
		return p
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(h, p[2:])
}
