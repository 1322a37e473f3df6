package explore

import "github.com/mekedron/devradar-cli/internal/domain"

// PositionFixed seeds the viewport from the first successful fix.
// Later fixes are ignored; the viewport then only moves through RegionChanged.
func PositionFixed(s State, fix domain.Coordinate, span float64) State {
	if s.Viewport != nil {
		return s
	}
	if span <= 0 {
		span = domain.DefaultSpan
	}
	viewport := domain.ViewportAt(fix, span)
	s.Viewport = &viewport
	s.Location = LocationFixed
	return s
}

// PositionUnavailable leaves the screen unpositioned and records why.
func PositionUnavailable(s State, status LocationStatus) State {
	if s.Viewport != nil {
		return s
	}
	s.Location = status
	return s
}

// RegionChanged replaces the viewport wholesale with the region reported by the map.
// There is no map before the first fix, so the event is dropped while unpositioned.
func RegionChanged(s State, region domain.Viewport) State {
	if s.Viewport == nil {
		return s
	}
	next := region
	s.Viewport = &next
	return s
}
