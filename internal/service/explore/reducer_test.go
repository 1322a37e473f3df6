package explore

import (
	"errors"
	"testing"

	"github.com/mekedron/devradar-cli/internal/domain"
)

func positioned(t *testing.T, lat, lon float64) State {
	t.Helper()
	return PositionFixed(NewState(), domain.Coordinate{Lat: lat, Lon: lon}, domain.DefaultSpan)
}

func developerAt(id, handle string, lat, lon float64) domain.Developer {
	return domain.Developer{
		ID:       id,
		Handle:   handle,
		Name:     "Dev " + id,
		Stacks:   []string{"Go", "React"},
		Position: &domain.Coordinate{Lat: lat, Lon: lon},
	}
}

func TestUnpositionedRendersNothing(t *testing.T) {
	view := Render(NewState())
	if view.Phase != PhaseUnpositioned {
		t.Fatalf("expected unpositioned phase, got %s", view.Phase)
	}
	if view.Map != nil || view.Form != nil || len(view.Markers) != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
}

func TestPositionFixedSeedsDefaultSpan(t *testing.T) {
	state := positioned(t, 10, 20)
	want := domain.Viewport{Latitude: 10, Longitude: 20, LatitudeDelta: 0.04, LongitudeDelta: 0.04}
	if state.Viewport == nil || *state.Viewport != want {
		t.Fatalf("expected viewport %+v, got %+v", want, state.Viewport)
	}
	if state.Location != LocationFixed {
		t.Fatalf("expected fixed location status, got %s", state.Location)
	}
	if state.Phase() != PhaseNoResults {
		t.Fatalf("expected no-results phase, got %s", state.Phase())
	}
}

func TestPositionFixedIgnoresLaterFixes(t *testing.T) {
	state := positioned(t, 10, 20)
	state = PositionFixed(state, domain.Coordinate{Lat: 1, Lon: 1}, 1)
	if state.Viewport.Latitude != 10 || state.Viewport.LatitudeDelta != 0.04 {
		t.Fatalf("expected first fix to stick, got %+v", state.Viewport)
	}
}

func TestPositionUnavailableKeepsUnpositioned(t *testing.T) {
	state := PositionUnavailable(NewState(), LocationDenied)
	if state.Positioned() {
		t.Fatal("expected no viewport after denial")
	}
	if state.Location != LocationDenied {
		t.Fatalf("expected denied status, got %s", state.Location)
	}
	if _, _, ok := SearchDispatched(state); ok {
		t.Fatal("expected search to be refused without a viewport")
	}
}

func TestRegionChangedReplacesViewportWholesale(t *testing.T) {
	state := positioned(t, 10, 20)
	region := domain.Viewport{Latitude: 5, Longitude: 6, LatitudeDelta: 0.1, LongitudeDelta: 0.1}
	state = RegionChanged(state, region)
	if *state.Viewport != region {
		t.Fatalf("expected viewport %+v, got %+v", region, *state.Viewport)
	}

	_, req, ok := SearchDispatched(state)
	if !ok {
		t.Fatal("expected search to dispatch")
	}
	if req.Latitude != 5 || req.Longitude != 6 {
		t.Fatalf("expected search around 5,6 got %v,%v", req.Latitude, req.Longitude)
	}
}

func TestRegionChangedIgnoredWhileUnpositioned(t *testing.T) {
	state := RegionChanged(NewState(), domain.Viewport{Latitude: 1, Longitude: 1, LatitudeDelta: 1, LongitudeDelta: 1})
	if state.Positioned() {
		t.Fatal("expected region change to be dropped before the first fix")
	}
}

func TestRegionChangedDoesNotAliasCallerValue(t *testing.T) {
	region := domain.Viewport{Latitude: 5, Longitude: 6, LatitudeDelta: 0.1, LongitudeDelta: 0.1}
	before := positioned(t, 10, 20)
	after := RegionChanged(before, region)
	if before.Viewport.Latitude != 10 {
		t.Fatalf("expected previous state untouched, got %+v", before.Viewport)
	}
	region.Latitude = 99
	if after.Viewport.Latitude != 5 {
		t.Fatalf("expected state to own its viewport, got %+v", after.Viewport)
	}
}

func TestSearchDispatchedUsesCurrentViewportAndFilter(t *testing.T) {
	state := positioned(t, 10, 20)
	state = FilterChanged(state, " go,  React ")

	state, req, ok := SearchDispatched(state)
	if !ok {
		t.Fatal("expected search to dispatch")
	}
	want := SearchRequest{Seq: 1, Latitude: 10, Longitude: 20, Stacks: " go,  React "}
	if req != want {
		t.Fatalf("expected request %+v, got %+v", want, req)
	}
	if state.LastSeq != 1 {
		t.Fatalf("expected last seq 1, got %d", state.LastSeq)
	}
	query := req.Query()
	if query.Latitude != 10 || query.Longitude != 20 || query.Stacks != " go,  React " {
		t.Fatalf("unexpected query %+v", query)
	}
}

func TestSearchResolvedReplacesResults(t *testing.T) {
	state := positioned(t, 10, 20)
	state, req, _ := SearchDispatched(state)
	state, applied := SearchResolved(state, SearchResponse{
		Seq:        req.Seq,
		Developers: []domain.Developer{developerAt("a", "ada", 1, 2), developerAt("b", "bob", 3, 4)},
	})
	if !applied {
		t.Fatal("expected response to apply")
	}
	if state.Phase() != PhaseResults || len(state.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", state.Results)
	}

	state, req, _ = SearchDispatched(state)
	state, _ = SearchResolved(state, SearchResponse{Seq: req.Seq, Developers: []domain.Developer{developerAt("c", "cy", 5, 6)}})
	if len(state.Results) != 1 || state.Results[0].ID != "c" {
		t.Fatalf("expected results replaced wholesale, got %+v", state.Results)
	}
}

func TestEmptyResponseClearsMarkersOnly(t *testing.T) {
	state := positioned(t, 10, 20)
	state, req, _ := SearchDispatched(state)
	state, _ = SearchResolved(state, SearchResponse{Seq: req.Seq, Developers: []domain.Developer{developerAt("a", "ada", 1, 2)}})
	viewportBefore := *state.Viewport

	state, req, _ = SearchDispatched(state)
	state, _ = SearchResolved(state, SearchResponse{Seq: req.Seq, Developers: []domain.Developer{}})

	view := Render(state)
	if len(view.Markers) != 0 {
		t.Fatalf("expected zero markers, got %d", len(view.Markers))
	}
	if view.Phase != PhaseNoResults {
		t.Fatalf("expected no-results phase, got %s", view.Phase)
	}
	if *state.Viewport != viewportBefore {
		t.Fatalf("expected viewport unchanged, got %+v", *state.Viewport)
	}
}

func TestOutOfOrderResponsesKeepLatestRequest(t *testing.T) {
	state := positioned(t, 10, 20)
	state = FilterChanged(state, "Go")
	state, first, _ := SearchDispatched(state)
	state = FilterChanged(state, "Rust")
	state, second, _ := SearchDispatched(state)

	state, applied := SearchResolved(state, SearchResponse{Seq: second.Seq, Developers: []domain.Developer{developerAt("rust", "ferris", 1, 1)}})
	if !applied {
		t.Fatal("expected latest response to apply")
	}
	state, applied = SearchResolved(state, SearchResponse{Seq: first.Seq, Developers: []domain.Developer{developerAt("go", "gopher", 2, 2)}})
	if applied {
		t.Fatal("expected stale response to be discarded")
	}
	if len(state.Results) != 1 || state.Results[0].ID != "rust" {
		t.Fatalf("expected results of the later request, got %+v", state.Results)
	}
	if state.AppliedSeq != second.Seq {
		t.Fatalf("expected applied seq %d, got %d", second.Seq, state.AppliedSeq)
	}
}

func TestFailedSearchKeepsPreviousResults(t *testing.T) {
	state := positioned(t, 10, 20)
	state, req, _ := SearchDispatched(state)
	state, _ = SearchResolved(state, SearchResponse{Seq: req.Seq, Developers: []domain.Developer{developerAt("a", "ada", 1, 2)}})

	state, req, _ = SearchDispatched(state)
	state, applied := SearchResolved(state, SearchResponse{Seq: req.Seq, Err: errors.New("boom")})
	if !applied {
		t.Fatal("expected failure of latest request to be applied")
	}
	if len(state.Results) != 1 {
		t.Fatalf("expected previous results kept, got %+v", state.Results)
	}
	if state.Notice == "" || state.Err == nil {
		t.Fatal("expected inline notice and error")
	}

	state, req, _ = SearchDispatched(state)
	state, _ = SearchResolved(state, SearchResponse{Seq: req.Seq, Developers: nil})
	if state.Notice != "" || state.Err != nil {
		t.Fatalf("expected notice cleared by a successful search, got %q", state.Notice)
	}
}
