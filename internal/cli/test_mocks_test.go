package cli

import (
	"context"
	"sync"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/gateway/devsearch"
	"github.com/mekedron/devradar-cli/internal/gateway/location"
)

type testSearchAPI struct {
	mu       sync.Mutex
	queries  []devsearch.Query
	searchFn func(context.Context, devsearch.Query) ([]domain.Developer, error)
}

func (m *testSearchAPI) Search(ctx context.Context, query devsearch.Query) ([]domain.Developer, error) {
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func (m *testSearchAPI) recorded() []devsearch.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]devsearch.Query(nil), m.queries...)
}

type testProfiles struct {
	profile domain.Profile
	err     error
}

func (m *testProfiles) Find(context.Context, string) (domain.Profile, error) {
	if m.err != nil {
		return domain.Profile{}, m.err
	}
	return m.profile, nil
}

type testConfigManager struct {
	cfg     domain.Config
	loadErr error
	saves   int
}

func (m *testConfigManager) Path() string {
	return "/tmp/test-config.json"
}

func (m *testConfigManager) Load(context.Context) (domain.Config, error) {
	if m.loadErr != nil {
		return domain.Config{}, m.loadErr
	}
	return m.cfg, nil
}

func (m *testConfigManager) Save(_ context.Context, cfg domain.Config) error {
	m.cfg = cfg
	m.saves++
	return nil
}

type testGeocoder struct {
	coordinate domain.Coordinate
	err        error
	queries    []string
}

func (m *testGeocoder) Geocode(_ context.Context, address string) (domain.Coordinate, error) {
	m.queries = append(m.queries, address)
	if m.err != nil {
		return domain.Coordinate{}, m.err
	}
	return m.coordinate, nil
}

type testNavigator struct {
	mu     sync.Mutex
	events []domain.NavigationEvent
}

func (m *testNavigator) Navigate(_ context.Context, event domain.NavigationEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func testIPLocator(coordinate domain.Coordinate) (IPLocatorFactory, *[]bool) {
	optIns := []bool{}
	return func(optIn bool) location.Provider {
		optIns = append(optIns, optIn)
		if !optIn {
			return location.Denied{}
		}
		return location.Fixed{Coordinate: coordinate}
	}, &optIns
}

func developer(id, handle string, lat, lon float64, stacks ...string) domain.Developer {
	return domain.Developer{
		ID:        id,
		Handle:    handle,
		Name:      "Dev " + handle,
		Bio:       "Bio of " + handle,
		AvatarURL: "https://avatars.example/" + handle,
		Stacks:    stacks,
		Position:  &domain.Coordinate{Lat: lat, Lon: lon},
	}
}
