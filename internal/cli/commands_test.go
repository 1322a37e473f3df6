package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mekedron/devradar-cli/internal/config"
	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/gateway/devsearch"
)

type searchPayload struct {
	Data struct {
		Phase   string `json:"phase"`
		Skipped int    `json:"skipped"`
		Markers []struct {
			Key    string `json:"key"`
			Handle string `json:"github_username"`
		} `json:"markers"`
		Request struct {
			Seq      uint64  `json:"seq"`
			Latitude float64 `json:"latitude"`
			Stacks   string  `json:"stacks"`
		} `json:"request"`
		Page struct {
			Total int `json:"total"`
		} `json:"page"`
	} `json:"data"`
	Warnings []string       `json:"warnings"`
	Error    map[string]any `json:"error"`
}

func runCLI(t *testing.T, deps Dependencies, args ...string) (int, string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := Execute(context.Background(), args, deps, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func runExplore(t *testing.T, deps Dependencies, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(deps)
	stdout := &bytes.Buffer{}
	root.SetIn(strings.NewReader(input))
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"explore"}, args...))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestSearchCommandJSON(t *testing.T) {
	api := &testSearchAPI{
		searchFn: func(context.Context, devsearch.Query) ([]domain.Developer, error) {
			return []domain.Developer{
				developer("dev-1", "octocat", 60.171, 24.941, "Go", "Rust"),
				developer("dev-2", "hubot", 60.165, 24.932, "Go"),
				{ID: "dev-3", Handle: "ghost"},
			}, nil
		},
	}
	deps := Dependencies{Search: api}

	code, out, _ := runCLI(t, deps, "search", "--lat", "60.17", "--lon", "24.94", "--stacks", " Go,Rust ", "--format", "json")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, out)
	}
	queries := api.recorded()
	if len(queries) != 1 {
		t.Fatalf("expected one search, got %d", len(queries))
	}
	if queries[0] != (devsearch.Query{Latitude: 60.17, Longitude: 24.94, Stacks: " Go,Rust "}) {
		t.Fatalf("unexpected query: %+v", queries[0])
	}

	var payload searchPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if payload.Data.Phase != "results" {
		t.Fatalf("expected results phase, got %q", payload.Data.Phase)
	}
	if len(payload.Data.Markers) != 2 || payload.Data.Markers[0].Handle != "octocat" {
		t.Fatalf("unexpected markers: %+v", payload.Data.Markers)
	}
	if payload.Data.Skipped != 1 || len(payload.Warnings) != 1 {
		t.Fatalf("expected one skipped result with a warning, got %d / %v", payload.Data.Skipped, payload.Warnings)
	}
	if payload.Data.Request.Seq != 1 || payload.Data.Request.Stacks != " Go,Rust " {
		t.Fatalf("unexpected request: %+v", payload.Data.Request)
	}
}

func TestSearchCommandRegionMovesCenter(t *testing.T) {
	api := &testSearchAPI{}
	deps := Dependencies{Search: api}

	code, out, _ := runCLI(t, deps, "search", "--lat", "60.17", "--lon", "24.94", "--region", "59.33,18.06")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, out)
	}
	queries := api.recorded()
	if len(queries) != 1 || queries[0].Latitude != 59.33 || queries[0].Longitude != 18.06 {
		t.Fatalf("expected search around the panned center, got %+v", queries)
	}
	if !strings.Contains(out, "No developers found.") {
		t.Fatalf("expected empty result message, got %q", out)
	}
}

func TestSearchCommandRejectsBadRegion(t *testing.T) {
	api := &testSearchAPI{}
	code, out, _ := runCLI(t, Dependencies{Search: api}, "search", "--lat", "60.17", "--lon", "24.94", "--region", "north", "--format", "json")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out, codeInvalidArgument) {
		t.Fatalf("expected invalid argument code, got %s", out)
	}
	if len(api.recorded()) != 0 {
		t.Fatal("expected no search for a rejected region")
	}
}

func TestSearchCommandWithoutLocation(t *testing.T) {
	api := &testSearchAPI{}
	deps := Dependencies{
		Search:   api,
		Profiles: &testProfiles{profile: domain.Profile{Name: "default"}},
	}

	code, out, _ := runCLI(t, deps, "search", "--stacks", "go", "--format", "json")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out, codeLocationUnavailable) {
		t.Fatalf("expected location unavailable code, got %s", out)
	}
	if len(api.recorded()) != 0 {
		t.Fatal("expected no search without a viewport")
	}
}

func TestSearchCommandUpstreamError(t *testing.T) {
	api := &testSearchAPI{
		searchFn: func(context.Context, devsearch.Query) ([]domain.Developer, error) {
			return nil, &devsearch.UpstreamRequestError{Method: "GET", URL: "http://localhost:3333/search", StatusCode: 500}
		},
	}

	code, out, _ := runCLI(t, Dependencies{Search: api}, "search", "--lat", "60.17", "--lon", "24.94")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(out, "status 500") {
		t.Fatalf("expected status hint, got %q", out)
	}
}

func TestSearchCommandTablePagination(t *testing.T) {
	api := &testSearchAPI{
		searchFn: func(context.Context, devsearch.Query) ([]domain.Developer, error) {
			return []domain.Developer{
				developer("dev-1", "octocat", 60.171, 24.941, "Go"),
				developer("dev-2", "hubot", 60.165, 24.932, "Go"),
				developer("dev-3", "defunkt", 60.160, 24.930, "Ruby"),
			}, nil
		},
	}

	code, out, _ := runCLI(t, Dependencies{Search: api}, "search", "--lat", "60.17", "--lon", "24.94", "--limit", "2", "--page", "2")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, out)
	}
	if !strings.Contains(out, "KEY\tGITHUB") {
		t.Fatalf("expected table header, got %q", out)
	}
	if !strings.Contains(out, "defunkt") || strings.Contains(out, "octocat") {
		t.Fatalf("expected only the second page, got %q", out)
	}
	if !strings.Contains(out, "showing 3-3 of 3") {
		t.Fatalf("expected page footer, got %q", out)
	}
}

func TestLocateCommandUsesAddress(t *testing.T) {
	geocoder := &testGeocoder{coordinate: domain.Coordinate{Lat: 60.1699, Lon: 24.9384}}
	deps := Dependencies{Geocoder: geocoder}

	code, out, _ := runCLI(t, deps, "locate", "--address", "Kamppi, Helsinki", "--span", "0.1")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, out)
	}
	if len(geocoder.queries) != 1 || geocoder.queries[0] != "Kamppi, Helsinki" {
		t.Fatalf("unexpected geocoder queries: %v", geocoder.queries)
	}
	if !strings.Contains(out, "center: 60.169900, 24.938400") || !strings.Contains(out, "span: 0.1000 x 0.1000") {
		t.Fatalf("unexpected viewport output: %q", out)
	}
}

func TestLocateCommandIPLocatorNeedsOptIn(t *testing.T) {
	ipLocator, _ := testIPLocator(domain.Coordinate{Lat: 52.52, Lon: 13.40})
	deps := Dependencies{IPLocator: ipLocator}

	code, out, _ := runCLI(t, deps, "locate")
	if code != 1 || !strings.Contains(out, "permission was not granted") {
		t.Fatalf("expected denial without opt-in, got %d %q", code, out)
	}

	code, out, _ = runCLI(t, deps, "locate", "--allow-location", "--format", "json")
	if code != 0 {
		t.Fatalf("expected exit 0 with opt-in, got %d: %s", code, out)
	}
	if !strings.Contains(out, `"latitude": 52.52`) {
		t.Fatalf("expected located viewport, got %s", out)
	}
}

func TestExploreCommandSession(t *testing.T) {
	api := &testSearchAPI{
		searchFn: func(context.Context, devsearch.Query) ([]domain.Developer, error) {
			return []domain.Developer{developer("dev-1", "octocat", 60.171, 24.941, "Go", "Rust")}, nil
		},
	}
	navigator := &testNavigator{}
	deps := Dependencies{Search: api, Navigator: navigator}

	input := "filter go, rust\nsearch\nwait\nmarkers\nopen dev-1\nopen nope\nbogus\nquit\nsearch\n"
	out, err := runExplore(t, deps, input, "--lat", "60.17", "--lon", "24.94")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	queries := api.recorded()
	if len(queries) != 1 || queries[0].Stacks != "go, rust" {
		t.Fatalf("expected one search with the typed filter, got %+v", queries)
	}
	if len(navigator.events) != 1 || navigator.events[0] != (domain.NavigationEvent{Screen: domain.ProfileScreen, Handle: "octocat"}) {
		t.Fatalf("unexpected navigation events: %+v", navigator.events)
	}
	for _, want := range []string{"searching #1", "Dev octocat", "stacks: Go, Rust", `marker "nope" not found`, `unknown command "bogus"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestExplorePanMovesSearchCenter(t *testing.T) {
	api := &testSearchAPI{}
	out, err := runExplore(t, Dependencies{Search: api}, "pan 59.33 18.06\nsearch\n", "--lat", "60.17", "--lon", "24.94")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	queries := api.recorded()
	if len(queries) != 1 || queries[0].Latitude != 59.33 || queries[0].Longitude != 18.06 {
		t.Fatalf("expected search around the panned center, got %+v", queries)
	}
	if !strings.Contains(out, "center: 59.330000, 18.060000") {
		t.Fatalf("expected panned viewport in output:\n%s", out)
	}
}

func TestExploreWithoutLocationDisablesSearch(t *testing.T) {
	api := &testSearchAPI{}
	out, err := runExplore(t, Dependencies{Search: api}, "filter go\npan 1 2\nsearch\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(api.recorded()) != 0 {
		t.Fatal("expected no search while unpositioned")
	}
	if !strings.Contains(out, "search is unavailable") || !strings.Contains(out, "no map yet") {
		t.Fatalf("expected unavailable messages, got:\n%s", out)
	}
}

func TestConfigureCreatesProfile(t *testing.T) {
	store := &testConfigManager{loadErr: config.ErrConfigNotFound}
	code, out, stderr := runCLI(t, Dependencies{Config: store}, "configure", "--profile-name", "home", "--lat", "60.17", "--lon", "24.94", "--allow-location")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if !strings.Contains(out, "Config was created") {
		t.Fatalf("unexpected output: %q", out)
	}
	if len(store.cfg.Profiles) != 1 {
		t.Fatalf("expected one profile, got %+v", store.cfg.Profiles)
	}
	profile := store.cfg.Profiles[0]
	if profile.Name != "home" || !profile.IsDefault || !profile.AllowLocation {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if profile.Location == nil || *profile.Location != (domain.Coordinate{Lat: 60.17, Lon: 24.94}) {
		t.Fatalf("unexpected saved location: %+v", profile.Location)
	}
}

func TestConfigureUpdatesExistingProfile(t *testing.T) {
	store := &testConfigManager{cfg: domain.Config{Profiles: []domain.Profile{{Name: "home", IsDefault: true}}}}

	code, _, stderr := runCLI(t, Dependencies{Config: store}, "configure", "--span", "0.1")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if len(store.cfg.Profiles) != 1 || store.cfg.Profiles[0].Span != 0.1 {
		t.Fatalf("expected default profile span update, got %+v", store.cfg.Profiles)
	}

	code, _, stderr = runCLI(t, Dependencies{Config: store}, "configure", "--profile-name", "work", "--lat", "59.33", "--lon", "18.06")
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if len(store.cfg.Profiles) != 2 || store.cfg.Profiles[1].Name != "work" || store.cfg.Profiles[1].IsDefault {
		t.Fatalf("expected a new non-default profile, got %+v", store.cfg.Profiles)
	}

	code, _, stderr = runCLI(t, Dependencies{Config: store}, "configure")
	if code != 1 || !strings.Contains(stderr, "provide --lat/--lon") {
		t.Fatalf("expected update without fields to fail, got %d %q", code, stderr)
	}
	if store.saves != 2 {
		t.Fatalf("expected two saves, got %d", store.saves)
	}
}

func TestConfigureRejectsPartialCoordinates(t *testing.T) {
	store := &testConfigManager{loadErr: errors.New("missing")}
	code, _, stderr := runCLI(t, Dependencies{Config: store}, "configure", "--lat", "60.17")
	if code != 1 || !strings.Contains(stderr, "--lat and --lon") {
		t.Fatalf("expected partial coordinates to fail, got %d %q", code, stderr)
	}
	if store.saves != 0 {
		t.Fatal("expected nothing saved")
	}
}

func TestUnknownCommandExitsTwo(t *testing.T) {
	code, _, stderr := runCLI(t, Dependencies{}, "teleport")
	if code != 2 || !strings.Contains(stderr, "No such command 'teleport'") {
		t.Fatalf("unexpected unknown command handling: %d %q", code, stderr)
	}
}

func TestExploreFilterKeepsTypedText(t *testing.T) {
	api := &testSearchAPI{}
	out, err := runExplore(t, Dependencies{Search: api}, "filter\t Go, Rust \nsearch\n", "--lat", "60.17", "--lon", "24.94")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	queries := api.recorded()
	if len(queries) != 1 || queries[0].Stacks != " Go, Rust " {
		t.Fatalf("expected the filter text as typed, got %+v", queries)
	}
	if strings.Contains(out, "unknown command") {
		t.Fatalf("expected tab separated command to parse, got:\n%s", out)
	}
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		line string
		name string
		rest string
	}{
		{line: "filter go", name: "filter", rest: "go"},
		{line: "  filter\tgo, rust  ", name: "filter", rest: "go, rust  "},
		{line: "filter", name: "filter", rest: ""},
		{line: "filter  ", name: "filter", rest: " "},
		{line: "   ", name: "", rest: ""},
	}
	for _, tc := range cases {
		name, rest := splitCommand(tc.line)
		if name != tc.name || rest != tc.rest {
			t.Fatalf("splitCommand(%q) = %q, %q; want %q, %q", tc.line, name, rest, tc.name, tc.rest)
		}
	}
}
