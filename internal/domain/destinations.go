package domain

import "slices"

// DefaultDestinations is the destination set used when none is configured.
var DefaultDestinations = []string{
	"Moscow",
	"Saint Petersburg",
	"Kazan",
	"Yekaterinburg",
	"Novosibirsk",
}

// Destinations is the closed set of destination names a trip may use.
// Order is preserved for display.
type Destinations []string

// Contains reports whether name is a recognised destination. Matching is exact.
func (d Destinations) Contains(name string) bool {
	return slices.Contains(d, name)
}

// List returns a copy of the set so callers cannot mutate it.
func (d Destinations) List() []string {
	return slices.Clone([]string(d))
}
