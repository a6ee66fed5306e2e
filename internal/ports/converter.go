package ports

import "context"

// Converter produces PDF renderings of the template.
type Converter interface {
	// Open starts a conversion session. The caller must Close it.
	Open(ctx context.Context) (ConversionSession, error)
}

// ConversionSession is an acquired conversion engine.
type ConversionSession interface {
	// Convert renders src into outDir and returns the path of the PDF.
	// The call blocks until the engine has finished.
	Convert(ctx context.Context, src, outDir string) (string, error)

	// Close releases the engine. It is safe to call more than once.
	Close() error
}
