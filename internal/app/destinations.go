package app

import (
	"fmt"
	"strings"

	"github.com/bft-labs/stamper/internal/domain"
)

// DestinationKind tells the dispatcher how to deliver a stamp.
type DestinationKind string

const (
	// KindPrinter is a physical device.
	KindPrinter DestinationKind = "printer"
	// KindPDF is the save-as-PDF pseudo-printer.
	KindPDF DestinationKind = "pdf"
)

// Destination maps a logical destination name to its spooler queue.
type Destination struct {
	Name  string
	Kind  DestinationKind
	Queue string
}

// Destinations is the configured destination table.
type Destinations []Destination

// Lookup finds a destination by name. Exact matches win over
// case-insensitive ones.
func (d Destinations) Lookup(name string) (Destination, error) {
	for _, dest := range d {
		if dest.Name == name {
			return dest, nil
		}
	}
	for _, dest := range d {
		if strings.EqualFold(dest.Name, name) {
			return dest, nil
		}
	}
	return Destination{}, fmt.Errorf("%w: %q (known: %s)", domain.ErrUnknownDestination, name, strings.Join(d.Names(), ", "))
}

// Names returns the destination names in table order.
func (d Destinations) Names() []string {
	names := make([]string, 0, len(d))
	for _, dest := range d {
		names = append(names, dest.Name)
	}
	return names
}

// Validate checks that every entry is usable.
func (d Destinations) Validate() error {
	seen := map[string]bool{}
	for i, dest := range d {
		if dest.Name == "" {
			return fmt.Errorf("destination %d: name is required", i)
		}
		if dest.Kind != KindPrinter && dest.Kind != KindPDF {
			return fmt.Errorf("destination %q: unknown kind %q", dest.Name, dest.Kind)
		}
		if dest.Kind == KindPrinter && dest.Queue == "" {
			return fmt.Errorf("destination %q: queue is required", dest.Name)
		}
		key := strings.ToLower(dest.Name)
		if seen[key] {
			return fmt.Errorf("destination %q: duplicate name", dest.Name)
		}
		seen[key] = true
	}
	return nil
}
