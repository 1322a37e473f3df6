package location

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mekedron/devradar-cli/internal/domain"
)

// DefaultIPLocatorURL returns the caller's approximate position from its public IP.
const DefaultIPLocatorURL = "http://ip-api.com/json/?fields=status,message,lat,lon"

type ipLocatorResult struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// IPLocator approximates the device position from its public IP address.
// Permission is granted only when the user opted in.
type IPLocator struct {
	lookupClient
	url     string
	granted bool
}

// NewIPLocator creates an IP locator; granted carries the user's opt-in.
func NewIPLocator(url string, granted bool, opts ...Option) *IPLocator {
	if strings.TrimSpace(url) == "" {
		url = DefaultIPLocatorURL
	}
	return &IPLocator{
		lookupClient: newLookupClient(opts),
		url:          url,
		granted:      granted,
	}
}

// RequestPermission reports the stored opt-in.
func (l *IPLocator) RequestPermission(context.Context) (bool, error) {
	return l.granted, nil
}

// CurrentPosition looks up the public IP position. IP lookups have city-level
// accuracy, so highAccuracy cannot be honored and is ignored.
func (l *IPLocator) CurrentPosition(ctx context.Context, _ bool) (domain.Coordinate, error) {
	if !l.granted {
		return domain.Coordinate{}, ErrPermissionDenied
	}
	body, err := l.get(ctx, l.url)
	if err != nil {
		return domain.Coordinate{}, err
	}

	var payload ipLocatorResult
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	if payload.Status != "" && payload.Status != "success" {
		return domain.Coordinate{}, fmt.Errorf("%w: %s", ErrLocationLookup, payload.Message)
	}
	if payload.Lat == nil || payload.Lon == nil {
		return domain.Coordinate{}, ErrLocationLookup
	}
	coord := domain.Coordinate{Lat: *payload.Lat, Lon: *payload.Lon}
	if !coord.Valid() {
		return domain.Coordinate{}, fmt.Errorf("%w: coordinate %.6f,%.6f out of range", ErrLocationLookup, coord.Lat, coord.Lon)
	}
	return coord, nil
}
