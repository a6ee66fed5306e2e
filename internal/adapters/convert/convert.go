// Package convert turns the stamp template into a PDF.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bft-labs/stamper/internal/adapters/command"
	"github.com/bft-labs/stamper/internal/adapters/fs"
	"github.com/bft-labs/stamper/internal/ports"
)

// DefaultCommand is the LibreOffice binary used for conversion.
const DefaultCommand = "soffice"

// ForTemplate returns the converter suited to the template: PDF templates
// are passed through, everything else goes through LibreOffice.
func ForTemplate(template, cmd string, runner command.Runner) ports.Converter {
	if strings.EqualFold(filepath.Ext(template), ".pdf") {
		return Passthrough{}
	}
	return NewSoffice(cmd, runner)
}

// Soffice converts documents with a headless LibreOffice.
type Soffice struct {
	cmd    string
	runner command.Runner
}

// NewSoffice creates a LibreOffice converter. Empty cmd means DefaultCommand,
// nil runner executes real processes.
func NewSoffice(cmd string, runner command.Runner) *Soffice {
	if cmd == "" {
		cmd = DefaultCommand
	}
	if runner == nil {
		runner = command.ExecRunner{}
	}
	return &Soffice{cmd: cmd, runner: runner}
}

// Open starts a session with a private LibreOffice profile, so a desktop
// instance of LibreOffice does not capture the conversion.
func (s *Soffice) Open(ctx context.Context) (ports.ConversionSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	profile, err := os.MkdirTemp("", "stamper-soffice-")
	if err != nil {
		return nil, fmt.Errorf("create converter profile: %w", err)
	}
	return &sofficeSession{soffice: s, profile: profile}, nil
}

type sofficeSession struct {
	soffice *Soffice
	profile string

	once     sync.Once
	closeErr error
}

// Convert runs LibreOffice on src and returns the produced PDF path.
func (s *sofficeSession) Convert(ctx context.Context, src, outDir string) (string, error) {
	args := []string{
		"-env:UserInstallation=" + fileURL(s.profile),
		"--headless",
		"--norestore",
		"--convert-to", "pdf",
		"--outdir", outDir,
		src,
	}
	if _, err := s.soffice.runner.Run(ctx, s.soffice.cmd, args...); err != nil {
		return "", fmt.Errorf("convert %s: %w", filepath.Base(src), err)
	}

	out := filepath.Join(outDir, pdfName(src))
	if !fs.NonEmpty(out) {
		return "", fmt.Errorf("convert %s: no output produced", filepath.Base(src))
	}
	return out, nil
}

// Close removes the private profile.
func (s *sofficeSession) Close() error {
	s.once.Do(func() {
		s.closeErr = os.RemoveAll(s.profile)
	})
	return s.closeErr
}

// Passthrough serves templates that already are PDF documents.
type Passthrough struct{}

// Open implements ports.Converter.
func (Passthrough) Open(ctx context.Context) (ports.ConversionSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return passthroughSession{}, nil
}

type passthroughSession struct{}

// Convert copies src into outDir so callers can always delete the result.
func (passthroughSession) Convert(ctx context.Context, src, outDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out := filepath.Join(outDir, pdfName(src))
	if err := fs.CopyFile(src, out); err != nil {
		return "", fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	return out, nil
}

func (passthroughSession) Close() error { return nil }

func pdfName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".pdf"
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
