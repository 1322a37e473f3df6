package location

import (
	"context"
	"errors"

	"github.com/mekedron/devradar-cli/internal/domain"
)

// ErrPermissionDenied is returned when a position is requested without permission.
var ErrPermissionDenied = errors.New("location permission denied")

// Provider grants location permission and supplies one-time position fixes.
type Provider interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context, highAccuracy bool) (domain.Coordinate, error)
}

// Fixed always grants permission and reports the same coordinate.
type Fixed struct {
	Coordinate domain.Coordinate
}

// RequestPermission always grants.
func (Fixed) RequestPermission(context.Context) (bool, error) {
	return true, nil
}

// CurrentPosition returns the fixed coordinate.
func (f Fixed) CurrentPosition(context.Context, bool) (domain.Coordinate, error) {
	return f.Coordinate, nil
}

// Denied never grants permission.
type Denied struct{}

// RequestPermission always denies.
func (Denied) RequestPermission(context.Context) (bool, error) {
	return false, nil
}

// CurrentPosition always fails.
func (Denied) CurrentPosition(context.Context, bool) (domain.Coordinate, error) {
	return domain.Coordinate{}, ErrPermissionDenied
}

// AddressGeocoder resolves free-text addresses.
type AddressGeocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinate, error)
}

// Address reports the geocoded position of a user-supplied address.
type Address struct {
	Geocoder AddressGeocoder
	Query    string
}

// RequestPermission grants: the user typed the address themselves.
func (a Address) RequestPermission(context.Context) (bool, error) {
	return a.Geocoder != nil, nil
}

// CurrentPosition geocodes the address.
func (a Address) CurrentPosition(ctx context.Context, _ bool) (domain.Coordinate, error) {
	if a.Geocoder == nil {
		return domain.Coordinate{}, ErrLocationLookup
	}
	return a.Geocoder.Geocode(ctx, a.Query)
}
