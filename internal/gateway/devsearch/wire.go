package devsearch

import (
	"encoding/json"
	"strings"

	"github.com/mekedron/devradar-cli/internal/domain"
)

// wireDeveloper mirrors the search service document.
type wireDeveloper struct {
	ID             string          `json:"_id"`
	GithubUsername string          `json:"github_username"`
	Name           string          `json:"name"`
	Bio            string          `json:"bio"`
	AvatarURL      string          `json:"avatar_url"`
	Stacks         []string        `json:"stacks"`
	Techs          []string        `json:"techs"`
	Location       json.RawMessage `json:"location"`
}

// wirePoint is a GeoJSON point; coordinates are ordered [longitude, latitude].
type wirePoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (w wireDeveloper) toDomain() domain.Developer {
	stacks := w.Stacks
	if len(stacks) == 0 {
		stacks = w.Techs
	}
	id := strings.TrimSpace(w.ID)
	if id == "" {
		id = strings.TrimSpace(w.GithubUsername)
	}
	return domain.Developer{
		ID:        id,
		Handle:    strings.TrimSpace(w.GithubUsername),
		Name:      w.Name,
		Bio:       w.Bio,
		AvatarURL: w.AvatarURL,
		Stacks:    append([]string(nil), stacks...),
		Position:  decodePosition(w.Location),
	}
}

// decodePosition swaps the service's [lon, lat] pair into a Coordinate.
// Missing or malformed locations decode to nil.
func decodePosition(raw json.RawMessage) *domain.Coordinate {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var point wirePoint
	if err := json.Unmarshal(raw, &point); err != nil {
		return nil
	}
	if len(point.Coordinates) != 2 {
		return nil
	}
	coord := domain.Coordinate{Lat: point.Coordinates[1], Lon: point.Coordinates[0]}
	if !coord.Valid() {
		return nil
	}
	return &coord
}

func decodeDevelopers(payload []wireDeveloper) []domain.Developer {
	developers := make([]domain.Developer, 0, len(payload))
	for _, item := range payload {
		developers = append(developers, item.toDomain())
	}
	return developers
}
