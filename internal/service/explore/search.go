package explore

import (
	"fmt"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/gateway/devsearch"
)

// SearchRequest is one dispatched search. Seq increases with every dispatch.
type SearchRequest struct {
	Seq       uint64  `json:"seq" yaml:"seq"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Stacks    string  `json:"stacks" yaml:"stacks"`
}

// Query converts the request into search service parameters.
func (r SearchRequest) Query() devsearch.Query {
	return devsearch.Query{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Stacks:    r.Stacks,
	}
}

// SearchResponse is the outcome of the request with the same Seq.
type SearchResponse struct {
	Seq        uint64
	Developers []domain.Developer
	Err        error
}

// FilterChanged stores the filter text verbatim.
func FilterChanged(s State, text string) State {
	s.Filter = text
	return s
}

// SearchDispatched builds a request from the current viewport center and filter.
// It returns false when there is no viewport to search around.
func SearchDispatched(s State) (State, SearchRequest, bool) {
	if s.Viewport == nil {
		return s, SearchRequest{}, false
	}
	s.LastSeq++
	req := SearchRequest{
		Seq:       s.LastSeq,
		Latitude:  s.Viewport.Latitude,
		Longitude: s.Viewport.Longitude,
		Stacks:    s.Filter,
	}
	return s, req, true
}

// SearchResolved applies a response if it belongs to the latest dispatched
// request; older responses are discarded. A failed search keeps the previous
// results on screen and sets an inline notice.
func SearchResolved(s State, res SearchResponse) (State, bool) {
	if res.Seq != s.LastSeq {
		return s, false
	}
	if res.Err != nil {
		s.Notice = fmt.Sprintf("search failed: %v", res.Err)
		s.Err = res.Err
		return s, true
	}
	results := make([]domain.Developer, len(res.Developers))
	copy(results, res.Developers)
	s.Results = results
	s.AppliedSeq = res.Seq
	s.Notice = ""
	s.Err = nil
	return s, true
}
