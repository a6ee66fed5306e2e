package app

import (
	"github.com/bft-labs/stamper/internal/domain"
	"github.com/bft-labs/stamper/internal/ports"
)

// LogProgress reports progress through a logger.
type LogProgress struct {
	logger ports.Logger
}

// NewLogProgress creates a progress reporter writing to logger.
func NewLogProgress(logger ports.Logger) *LogProgress {
	return &LogProgress{logger: logger}
}

// Start implements ports.Progress.
func (p *LogProgress) Start(total int) {
	p.logger.Debug("progress started", ports.Int("total", total))
}

// Step implements ports.Progress. Steps are logged at info so the
// operator sees them without verbose output.
func (p *LogProgress) Step(done, total int, unit domain.Unit) {
	pct := 0
	if total > 0 {
		pct = done * 100 / total
	}
	p.logger.Info("progress",
		ports.Int("done", done),
		ports.Int("total", total),
		ports.Int("percent", pct),
		ports.String("label", unit.Label()),
	)
}

// Reset implements ports.Progress.
func (p *LogProgress) Reset() {
	p.logger.Debug("progress reset")
}
