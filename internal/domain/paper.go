package domain

import "strings"

// PaperSize is a paper size a physical device can be configured with.
type PaperSize int

const (
	PaperLetter PaperSize = iota
	PaperLegal
	PaperA4
)

// Device-mode paper constants as defined by the Windows DEVMODE structure.
const (
	dmPaperLetter = 1
	dmPaperLegal  = 5
	dmPaperA4     = 9
)

// PaperSizes lists the supported sizes in display order.
var PaperSizes = []PaperSize{PaperLegal, PaperLetter, PaperA4}

// ParsePaperSize maps a user-supplied name to a PaperSize.
// Matching is case-insensitive. The bool is false when the name was not
// recognized, in which case the result is PaperLetter.
func ParsePaperSize(s string) (PaperSize, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legal":
		return PaperLegal, true
	case "letter":
		return PaperLetter, true
	case "a4":
		return PaperA4, true
	default:
		return PaperLetter, false
	}
}

// String returns the lower-case name used in configuration.
func (p PaperSize) String() string {
	switch p {
	case PaperLegal:
		return "legal"
	case PaperA4:
		return "a4"
	default:
		return "letter"
	}
}

// Media returns the spooler media keyword for the size.
func (p PaperSize) Media() string {
	switch p {
	case PaperLegal:
		return "Legal"
	case PaperA4:
		return "A4"
	default:
		return "Letter"
	}
}

// DevModeCode returns the device-mode paper constant for the size.
func (p PaperSize) DevModeCode() int {
	switch p {
	case PaperLegal:
		return dmPaperLegal
	case PaperA4:
		return dmPaperA4
	default:
		return dmPaperLetter
	}
}
