package domain

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSpan is the latitude/longitude delta used to seed a viewport from a fix.
const DefaultSpan = 0.04

// ErrInvalidViewport is returned when a region fails structural checks.
var ErrInvalidViewport = errors.New("invalid viewport")

// Coordinate identifies a point on earth.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Valid reports whether the coordinate is finite and within WGS84 bounds.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Viewport is the visible map region: a center point plus span.
type Viewport struct {
	Latitude       float64 `json:"latitude" yaml:"latitude"`
	Longitude      float64 `json:"longitude" yaml:"longitude"`
	LatitudeDelta  float64 `json:"latitude_delta" yaml:"latitude_delta"`
	LongitudeDelta float64 `json:"longitude_delta" yaml:"longitude_delta"`
}

// ViewportAt centers a viewport on the coordinate with an equal span on both axes.
func ViewportAt(c Coordinate, span float64) Viewport {
	return Viewport{
		Latitude:       c.Lat,
		Longitude:      c.Lon,
		LatitudeDelta:  span,
		LongitudeDelta: span,
	}
}

// Center returns the viewport center.
func (v Viewport) Center() Coordinate {
	return Coordinate{Lat: v.Latitude, Lon: v.Longitude}
}

// Validate checks the center and that both deltas are positive.
func (v Viewport) Validate() error {
	if !v.Center().Valid() {
		return fmt.Errorf("%w: center %.6f,%.6f out of range", ErrInvalidViewport, v.Latitude, v.Longitude)
	}
	if !(v.LatitudeDelta > 0) || !(v.LongitudeDelta > 0) {
		return fmt.Errorf("%w: deltas must be positive", ErrInvalidViewport)
	}
	return nil
}
