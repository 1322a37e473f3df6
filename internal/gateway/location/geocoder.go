package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mekedron/devradar-cli/internal/domain"
	"golang.org/x/time/rate"
)

// DefaultNominatimURL is the OSM geocoding endpoint.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"

const userAgent = "devradar-cli-go/1.0"

// ErrLocationLookup is returned when geocoding or IP lookup fails.
var ErrLocationLookup = errors.New("error when trying to get location")

// Geocoder resolves addresses to coordinates.
type Geocoder struct {
	lookupClient
	baseURL string
	limiter *rate.Limiter
}

type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", text, err)
		}
		*c = coordinate(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*c = coordinate(value)
		return nil
	}

	return fmt.Errorf("coordinate must be a string or number")
}

type nominatimResult struct {
	Lat coordinate `json:"lat"`
	Lon coordinate `json:"lon"`
}

// NewGeocoder creates a Nominatim client. Nominatim allows one request per second.
func NewGeocoder(baseURL string, opts ...Option) *Geocoder {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultNominatimURL
	}
	return &Geocoder{
		lookupClient: newLookupClient(opts),
		baseURL:      baseURL,
		limiter:      rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// Geocode resolves an address using OSM Nominatim. Results outside WGS84
// bounds are rejected.
func (g *Geocoder) Geocode(ctx context.Context, address string) (domain.Coordinate, error) {
	query := url.Values{}
	query.Set("q", address)
	query.Set("format", "json")
	query.Set("limit", "1")

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return domain.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
		}
	}
	body, err := g.get(ctx, g.baseURL+"?"+query.Encode())
	if err != nil {
		return domain.Coordinate{}, err
	}

	var payload []nominatimResult
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Coordinate{}, fmt.Errorf("%w: %v", ErrLocationLookup, err)
	}
	if len(payload) == 0 {
		return domain.Coordinate{}, ErrLocationLookup
	}
	coord := domain.Coordinate{
		Lat: float64(payload[0].Lat),
		Lon: float64(payload[0].Lon),
	}
	if !coord.Valid() {
		return domain.Coordinate{}, fmt.Errorf("%w: coordinate %.6f,%.6f out of range", ErrLocationLookup, coord.Lat, coord.Lon)
	}
	return coord, nil
}
