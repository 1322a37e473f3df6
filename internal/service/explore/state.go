// Package explore holds the map screen state: the viewport seeded from the
// device position, the stacks filter, and the developers returned by the last
// search. Every event is a pure function from State to State; Session wires
// those functions to the location provider and the search service.
package explore

import "github.com/mekedron/devradar-cli/internal/domain"

// Phase is the coarse screen state.
type Phase string

const (
	PhaseUnpositioned Phase = "unpositioned"
	PhaseNoResults    Phase = "no_results"
	PhaseResults      Phase = "results"
)

// LocationStatus records how the initial position request ended.
type LocationStatus string

const (
	LocationPending     LocationStatus = "pending"
	LocationFixed       LocationStatus = "fixed"
	LocationDenied      LocationStatus = "denied"
	LocationUnavailable LocationStatus = "unavailable"
)

// State is the whole screen. Values are replaced, never mutated in place.
type State struct {
	Viewport *domain.Viewport
	Filter   string
	Results  []domain.Developer
	Location LocationStatus
	Notice   string
	// Err is the failure of the latest search, kept until the next success.
	Err error
	// LastSeq is the sequence of the most recently dispatched search.
	LastSeq uint64
	// AppliedSeq is the sequence whose response produced Results.
	AppliedSeq uint64
}

// NewState returns the initial, unpositioned screen.
func NewState() State {
	return State{Location: LocationPending}
}

// Positioned reports whether a viewport exists.
func (s State) Positioned() bool {
	return s.Viewport != nil
}

// Phase maps the state onto Unpositioned / Positioned(no results) / Positioned(results).
func (s State) Phase() Phase {
	switch {
	case s.Viewport == nil:
		return PhaseUnpositioned
	case len(s.Results) == 0:
		return PhaseNoResults
	default:
		return PhaseResults
	}
}
