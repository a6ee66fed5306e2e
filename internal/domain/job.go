package domain

import "fmt"

// Job is one batch run. It is built once from operator input and not
// modified while the batch executes.
type Job struct {
	// StartSerial is the serial of the first stamp.
	StartSerial int

	// Copies is the number of stamps to produce.
	Copies int

	// Destination is the logical destination name.
	Destination string

	// Paper is the paper size applied to physical devices.
	Paper PaperSize
}

// Validate checks the batch parameters.
func (j Job) Validate() error {
	if j.StartSerial < 0 {
		return fmt.Errorf("%w: starting serial must not be negative (got %d)", ErrInvalidJob, j.StartSerial)
	}
	if j.Copies <= 0 {
		return fmt.Errorf("%w: copy count must be positive (got %d)", ErrInvalidJob, j.Copies)
	}
	if j.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidJob)
	}
	return nil
}

// Unit returns the i-th unit of the batch.
func (j Job) Unit(i int) Unit {
	return Unit{Index: i, Serial: j.StartSerial + i}
}

// Units returns every unit of the batch in processing order.
func (j Job) Units() []Unit {
	units := make([]Unit, 0, j.Copies)
	for i := 0; i < j.Copies; i++ {
		units = append(units, j.Unit(i))
	}
	return units
}

// LastSerial returns the serial of the final unit.
func (j Job) LastSerial() int {
	return j.StartSerial + j.Copies - 1
}
