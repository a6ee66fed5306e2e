package ports

import "github.com/bft-labs/stamper/internal/domain"

// Progress receives batch progress updates.
type Progress interface {
	// Start is called once with the number of units in the batch.
	Start(total int)

	// Step is called when a unit begins.
	Step(done, total int, unit domain.Unit)

	// Reset is called when the batch ends.
	Reset()
}
