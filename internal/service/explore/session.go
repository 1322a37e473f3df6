package explore

import (
	"context"
	"errors"
	"sync"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/gateway/devsearch"
	"github.com/mekedron/devradar-cli/internal/gateway/location"
	"github.com/mekedron/devradar-cli/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Navigator receives popover navigation events.
type Navigator interface {
	Navigate(ctx context.Context, event domain.NavigationEvent) error
}

// Session applies screen events one at a time and runs searches in the background.
type Session struct {
	mu        sync.Mutex
	state     State
	provider  location.Provider
	search    devsearch.API
	navigator Navigator
	span      float64
	logger    *zap.Logger
	onChange  func(View)
	inflight  errgroup.Group
}

// Option applies Session options.
type Option func(*Session)

// WithSpan overrides the span used to seed the viewport.
func WithSpan(span float64) Option {
	return func(s *Session) {
		if span > 0 {
			s.span = span
		}
	}
}

// WithLogger sets the event logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		s.logger = logging.OrNop(logger)
	}
}

// WithNavigator sets the detail screen dispatcher.
func WithNavigator(navigator Navigator) Option {
	return func(s *Session) {
		s.navigator = navigator
	}
}

// OnChange registers a callback invoked with the new view after a background
// search response is applied.
func OnChange(fn func(View)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// NewSession creates an unpositioned session.
func NewSession(provider location.Provider, search devsearch.API, opts ...Option) *Session {
	s := &Session{
		state:    NewState(),
		provider: provider,
		search:   search,
		span:     domain.DefaultSpan,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize asks for location permission and one high accuracy fix. Denial and
// fix failures leave the session unpositioned; nothing is retried.
func (s *Session) Initialize(ctx context.Context) View {
	if s.State().Positioned() {
		return s.View()
	}
	if s.provider == nil {
		return s.apply(func(st State) State { return PositionUnavailable(st, LocationUnavailable) })
	}

	granted, err := s.provider.RequestPermission(ctx)
	if err != nil || !granted {
		s.logger.Debug("location permission not granted", zap.Bool("granted", granted), zap.Error(err))
		return s.apply(func(st State) State { return PositionUnavailable(st, LocationDenied) })
	}

	fix, err := s.provider.CurrentPosition(ctx, true)
	if err != nil {
		status := LocationUnavailable
		if errors.Is(err, location.ErrPermissionDenied) {
			status = LocationDenied
		}
		s.logger.Debug("position fix failed", zap.Error(err))
		return s.apply(func(st State) State { return PositionUnavailable(st, status) })
	}

	s.logger.Debug("position fixed", zap.Float64("lat", fix.Lat), zap.Float64("lon", fix.Lon))
	return s.apply(func(st State) State { return PositionFixed(st, fix, s.span) })
}

// RegionChanged replaces the viewport after a pan or zoom.
func (s *Session) RegionChanged(region domain.Viewport) View {
	s.logger.Debug("region changed",
		zap.Float64("lat", region.Latitude),
		zap.Float64("lon", region.Longitude),
		zap.Float64("lat_delta", region.LatitudeDelta),
		zap.Float64("lon_delta", region.LongitudeDelta),
	)
	return s.apply(func(st State) State { return RegionChanged(st, region) })
}

// SetFilter replaces the stacks filter.
func (s *Session) SetFilter(text string) View {
	return s.apply(func(st State) State { return FilterChanged(st, text) })
}

// TriggerSearch dispatches a search for the current viewport center and filter.
// The response is applied in the background; use Wait to block until it lands.
func (s *Session) TriggerSearch(ctx context.Context) (SearchRequest, bool) {
	s.mu.Lock()
	next, req, ok := SearchDispatched(s.state)
	s.state = next
	s.mu.Unlock()
	if !ok {
		s.logger.Debug("search skipped: no viewport")
		return SearchRequest{}, false
	}
	s.logger.Debug("search dispatched",
		zap.Uint64("seq", req.Seq),
		zap.Float64("lat", req.Latitude),
		zap.Float64("lon", req.Longitude),
		zap.String("stacks", req.Stacks),
	)

	s.inflight.Go(func() error {
		var developers []domain.Developer
		var err error
		if s.search == nil {
			err = devsearch.ErrUpstream
		} else {
			developers, err = s.search.Search(ctx, req.Query())
		}
		s.resolve(SearchResponse{Seq: req.Seq, Developers: developers, Err: err})
		// Upstream failures live in State.Err; only cancellation reaches Wait.
		return ctx.Err()
	})
	return req, true
}

func (s *Session) resolve(res SearchResponse) {
	s.mu.Lock()
	next, applied := SearchResolved(s.state, res)
	s.state = next
	view := Render(next)
	s.mu.Unlock()

	if !applied {
		s.logger.Debug("stale search response discarded", zap.Uint64("seq", res.Seq))
		return
	}
	if res.Err != nil {
		s.logger.Debug("search failed", zap.Uint64("seq", res.Seq), zap.Error(res.Err))
	} else {
		s.logger.Debug("search applied", zap.Uint64("seq", res.Seq), zap.Int("results", len(res.Developers)))
	}
	if s.onChange != nil {
		s.onChange(view)
	}
}

// Wait blocks until every dispatched search has resolved. It returns the
// context error of a search that was cancelled before it resolved.
func (s *Session) Wait() error {
	return s.inflight.Wait()
}

// Open activates the popover of a rendered marker and dispatches navigation.
func (s *Session) Open(ctx context.Context, key string) (domain.NavigationEvent, error) {
	event, err := Activate(s.View(), key)
	if err != nil {
		return domain.NavigationEvent{}, err
	}
	s.logger.Debug("navigate", zap.String("screen", event.Screen), zap.String("handle", event.Handle))
	if s.navigator == nil {
		return event, nil
	}
	if err := s.navigator.Navigate(ctx, event); err != nil {
		return event, err
	}
	return event, nil
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View renders the current state.
func (s *Session) View() View {
	return Render(s.State())
}

func (s *Session) apply(update func(State) State) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = update(s.state)
	return Render(s.state)
}
