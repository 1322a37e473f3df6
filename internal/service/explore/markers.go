package explore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mekedron/devradar-cli/internal/domain"
)

// SearchPlaceholder is the hint shown in an empty search input.
const SearchPlaceholder = "Search devs by stacks"

// ErrMarkerNotFound is returned when activating a popover that is not rendered.
var ErrMarkerNotFound = errors.New("marker not found")

// Popover is the expandable summary of one marker.
type Popover struct {
	Title  string `json:"title" yaml:"title"`
	Bio    string `json:"bio" yaml:"bio"`
	Stacks string `json:"stacks" yaml:"stacks"`
}

// Marker places one developer on the map.
type Marker struct {
	Key       string            `json:"key" yaml:"key"`
	Handle    string            `json:"github_username" yaml:"github_username"`
	Position  domain.Coordinate `json:"position" yaml:"position"`
	AvatarURL string            `json:"avatar_url" yaml:"avatar_url"`
	Popover   Popover           `json:"popover" yaml:"popover"`
}

// MapView is the rendered map region.
type MapView struct {
	Region domain.Viewport `json:"region" yaml:"region"`
}

// SearchForm is the rendered filter input.
type SearchForm struct {
	Filter      string `json:"filter" yaml:"filter"`
	Placeholder string `json:"placeholder" yaml:"placeholder"`
}

// View is everything the screen draws for one state.
// Map and Form are nil and Markers is empty until a viewport exists.
type View struct {
	Phase    Phase          `json:"phase" yaml:"phase"`
	Location LocationStatus `json:"location" yaml:"location"`
	Map      *MapView       `json:"map" yaml:"map"`
	Form     *SearchForm    `json:"form" yaml:"form"`
	Markers  []Marker       `json:"markers" yaml:"markers"`
	// Skipped counts results dropped for missing or malformed coordinates.
	Skipped int    `json:"skipped" yaml:"skipped"`
	Notice  string `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// Render projects the state onto the screen. It never mutates the results and
// never filters them, except for entries without a usable position.
func Render(s State) View {
	view := View{
		Phase:    s.Phase(),
		Location: s.Location,
		Markers:  []Marker{},
	}
	if s.Viewport == nil {
		return view
	}
	view.Map = &MapView{Region: *s.Viewport}
	view.Form = &SearchForm{Filter: s.Filter, Placeholder: SearchPlaceholder}
	view.Notice = s.Notice

	markers := make([]Marker, 0, len(s.Results))
	for _, developer := range s.Results {
		marker, ok := markerFor(developer)
		if !ok {
			view.Skipped++
			continue
		}
		markers = append(markers, marker)
	}
	view.Markers = markers
	return view
}

func markerFor(developer domain.Developer) (Marker, bool) {
	if developer.Position == nil || !developer.Position.Valid() {
		return Marker{}, false
	}
	return Marker{
		Key:       developer.ID,
		Handle:    developer.Handle,
		Position:  *developer.Position,
		AvatarURL: developer.AvatarURL,
		Popover: Popover{
			Title:  developer.Name,
			Bio:    developer.Bio,
			Stacks: strings.Join(developer.Stacks, ", "),
		},
	}, true
}

// Marker looks up a rendered marker by key.
func (v View) Marker(key string) (Marker, bool) {
	for _, marker := range v.Markers {
		if marker.Key == key {
			return marker, true
		}
	}
	return Marker{}, false
}

// Activate returns the navigation event for a marker's popover. The event only
// carries the developer handle; the detail screen loads everything else.
func Activate(v View, key string) (domain.NavigationEvent, error) {
	marker, ok := v.Marker(key)
	if !ok {
		return domain.NavigationEvent{}, fmt.Errorf("%w: %s", ErrMarkerNotFound, key)
	}
	return domain.NavigationEvent{
		Screen: domain.ProfileScreen,
		Handle: marker.Handle,
	}, nil
}
