// Package pdf implements the stamp compositor on top of pdfcpu.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/bft-labs/stamper/internal/adapters/fs"
	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

// Defaults for the stamp label.
const (
	DefaultFont         = "Arial"
	DefaultFallbackFont = "Helvetica"
	DefaultFontSize     = 12
)

// DefaultPoint is where the label is drawn on the legal-size template,
// in points from the bottom-left corner.
var DefaultPoint = Point{X: 268, Y: 680}

// Point is a page-space coordinate in points from the bottom-left corner.
type Point struct {
	X float64
	Y float64
}

// Config controls how the label is drawn.
type Config struct {
	// Font is the preferred font family.
	Font string

	// FallbackFont is used when Font is not available.
	FallbackFont string

	// FontSize is the label size in points.
	FontSize float64

	// Paper selects the entry of Placement to use.
	Paper domain.PaperSize

	// Placement maps paper sizes to label coordinates. Sizes without an
	// entry use DefaultPoint.
	Placement map[domain.PaperSize]Point
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Font:         DefaultFont,
		FallbackFont: DefaultFallbackFont,
		FontSize:     DefaultFontSize,
		Paper:        domain.PaperLegal,
	}
}

// Compositor implements ports.Compositor.
type Compositor struct {
	cfg    Config
	conf   *model.Configuration
	logger ports.Logger

	font     string
	resolved bool
}

// NewCompositor creates a compositor.
func NewCompositor(cfg Config, logger ports.Logger) *Compositor {
	if cfg.Font == "" {
		cfg.Font = DefaultFont
	}
	if cfg.FallbackFont == "" {
		cfg.FallbackFont = DefaultFallbackFont
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = DefaultFontSize
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	return &Compositor{cfg: cfg, conf: conf, logger: logger}
}

// Point returns the coordinate the label is drawn at.
func (c *Compositor) Point() Point {
	if p, ok := c.cfg.Placement[c.cfg.Paper]; ok {
		return p
	}
	return DefaultPoint
}

// Compose writes a single-page copy of src to dst with the serial label on top.
func (c *Compositor) Compose(ctx context.Context, src, dst string, serial int) (ports.Stamp, error) {
	label := domain.FormatLabel(serial)
	stamp := ports.Stamp{Path: dst, Label: label}

	if err := ctx.Err(); err != nil {
		return stamp, err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return stamp, fmt.Errorf("read source: %w", err)
	}

	pages, err := api.PageCount(bytes.NewReader(data), c.conf)
	if err != nil {
		return stamp, fmt.Errorf("read source: %w", err)
	}
	if pages < 1 {
		return stamp, domain.ErrEmptyDocument
	}

	var first bytes.Buffer
	if err := api.Trim(bytes.NewReader(data), &first, []string{"1"}, c.conf); err != nil {
		return stamp, fmt.Errorf("extract first page: %w", err)
	}

	stamp.Font = c.fontName()
	desc := c.description(stamp.Font)

	wm, err := api.TextWatermark(label, desc, true, false, types.POINTS)
	if err != nil {
		return stamp, fmt.Errorf("build label: %w", err)
	}

	err = fs.WriteAtomic(dst, func(w io.Writer) error {
		return api.AddWatermarks(bytes.NewReader(first.Bytes()), w, []string{"1"}, wm, c.conf)
	})
	if err != nil {
		return stamp, fmt.Errorf("draw label: %w", err)
	}

	return stamp, nil
}

// description builds the pdfcpu stamp description for the label.
func (c *Compositor) description(fontName string) string {
	p := c.Point()
	return fmt.Sprintf(
		"fontname:%s, points:%g, position:bl, offset:%g %g, scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1",
		fontName, c.cfg.FontSize, p.X, p.Y,
	)
}

// fontName resolves the font once per compositor and warns on fallback.
func (c *Compositor) fontName() string {
	if c.resolved {
		return c.font
	}
	c.resolved = true
	c.font = c.cfg.Font

	if !fontAvailable(c.cfg.Font) {
		c.logger.Warn("font not available, using fallback",
			ports.String("font", c.cfg.Font),
			ports.String("fallback", c.cfg.FallbackFont),
		)
		c.font = c.cfg.FallbackFont
	}
	return c.font
}

func fontAvailable(name string) bool {
	return font.IsCoreFont(name) || font.IsUserFont(name)
}
