package domain

import "fmt"

// LabelWidth is the minimum number of digits in a stamp label.
const LabelWidth = 5

// Unit is one stamp within a batch. It lives only for one iteration.
type Unit struct {
	// Index is the zero-based position within the batch.
	Index int

	// Serial is the number printed on the stamp.
	Serial int
}

// Label returns the serial as printed on the stamp.
func (u Unit) Label() string {
	return FormatLabel(u.Serial)
}

// OutputName returns the file name used when the stamp is saved as PDF.
func (u Unit) OutputName() string {
	return "stamp_" + u.Label() + ".pdf"
}

// FormatLabel renders a serial zero-padded to LabelWidth digits.
// Serials wider than LabelWidth are rendered in full, never truncated.
func FormatLabel(serial int) string {
	return fmt.Sprintf("%0*d", LabelWidth, serial)
}
