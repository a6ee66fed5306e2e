package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/stamper/internal/domain"
)

const dirName = "stamper"

// Workspace owns the transient artifacts of a batch.
// Each unit gets its own directory named after its label.
type Workspace struct {
	root string
}

// NewWorkspace creates a workspace under base. An empty base means the
// system temp directory.
func NewWorkspace(base string) *Workspace {
	if base == "" {
		base = os.TempDir()
	}
	return &Workspace{root: filepath.Join(base, dirName)}
}

// Root returns the workspace directory.
func (w *Workspace) Root() string {
	return w.root
}

// UnitDir is the transient directory of one unit.
type UnitDir struct {
	Path string
	unit domain.Unit
}

// Prepare creates a fresh directory for the unit, discarding leftovers
// from an earlier run with the same serial.
func (w *Workspace) Prepare(u domain.Unit) (*UnitDir, error) {
	dir := filepath.Join(w.root, u.Label())
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear work dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &UnitDir{Path: dir, unit: u}, nil
}

// Composed is the path of the stamped page.
func (d *UnitDir) Composed() string {
	return filepath.Join(d.Path, d.unit.OutputName())
}

// Remove deletes the unit directory and everything in it.
func (d *UnitDir) Remove() error {
	return os.RemoveAll(d.Path)
}
