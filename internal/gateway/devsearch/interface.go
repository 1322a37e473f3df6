package devsearch

import (
	"context"

	"github.com/mekedron/devradar-cli/internal/domain"
)

// Query holds the only inputs of a developer search.
type Query struct {
	Latitude  float64
	Longitude float64
	Stacks    string
}

// API describes the remote developer search used by the explore session.
type API interface {
	Search(ctx context.Context, query Query) ([]domain.Developer, error)
}
