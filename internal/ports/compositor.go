package ports

import "context"

// Stamp describes a composed page.
type Stamp struct {
	// Path is the composed document.
	Path string

	// Label is the text drawn on the page.
	Label string

	// Font is the font actually used, after any fallback.
	Font string
}

// Compositor overlays a serial label onto the first page of a document.
type Compositor interface {
	// Compose writes a single-page copy of src to dst with the label for
	// serial drawn on it. src is never modified.
	Compose(ctx context.Context, src, dst string, serial int) (Stamp, error)
}
