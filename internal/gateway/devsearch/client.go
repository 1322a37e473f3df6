package devsearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the search service used when no override is configured.
	DefaultBaseURL   = "http://localhost:3333"
	searchPath       = "/search"
	defaultUserAgent = "devradar-cli-go/1.0"
)

// ErrUpstream indicates search service failure.
var ErrUpstream = errors.New("[devradar] error when trying to get response from search api")

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries the developer search service.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// Option applies Client options.
type Option func(*Client)

// WithHTTPClient replaces default HTTP client.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL replaces the search service address.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithRequestMinInterval limits request burst by enforcing minimum delay between upstream calls.
func WithRequestMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithLogger sets the request trace logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// NewClient creates a search service client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    DefaultBaseURL,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetLogger swaps the trace logger after construction.
func (c *Client) SetLogger(logger *zap.Logger) {
	c.logger = logging.OrNop(logger)
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search lists developers near the coordinate whose stacks match the filter text.
// The filter is forwarded verbatim; tag splitting happens server side.
func (c *Client) Search(ctx context.Context, query Query) ([]domain.Developer, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(query.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(query.Longitude, 'f', -1, 64))
	params.Set("stacks", query.Stacks)

	raw, err := c.doRequest(ctx, http.MethodGet, c.baseURL+searchPath, params)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return []domain.Developer{}, nil
	}
	var payload []wireDeveloper
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &UpstreamRequestError{
			Method: http.MethodGet,
			URL:    c.baseURL + searchPath,
			Body:   string(raw),
			Cause:  fmt.Errorf("decode response body: %w", err),
		}
	}
	return decodeDevelopers(payload), nil
}

func (c *Client) doRequest(ctx context.Context, method, rawURL string, params url.Values) ([]byte, error) {
	if len(params) > 0 {
		rawURL = rawURL + "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	startedAt := time.Now()
	c.logger.Debug("[http] ->", zap.String("method", method), zap.String("url", rawURL))

	res, err := c.httpClient.Do(req)
	if err != nil {
		upstreamErr := &UpstreamRequestError{Method: method, URL: rawURL, Cause: err}
		c.traceDone(method, rawURL, 0, 0, startedAt, upstreamErr)
		return nil, upstreamErr
	}
	defer func() {
		_ = res.Body.Close()
	}()

	rawResponse, err := io.ReadAll(res.Body)
	if err != nil {
		upstreamErr := &UpstreamRequestError{
			Method:     method,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Cause:      fmt.Errorf("read response body: %w", err),
		}
		c.traceDone(method, rawURL, res.StatusCode, 0, startedAt, upstreamErr)
		return nil, upstreamErr
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		upstreamErr := &UpstreamRequestError{
			Method:     method,
			URL:        rawURL,
			StatusCode: res.StatusCode,
			Body:       string(rawResponse),
		}
		c.traceDone(method, rawURL, res.StatusCode, len(rawResponse), startedAt, upstreamErr)
		return nil, upstreamErr
	}
	c.traceDone(method, rawURL, res.StatusCode, len(rawResponse), startedAt, nil)
	return rawResponse, nil
}

func (c *Client) traceDone(method, rawURL string, statusCode int, responseBytes int, startedAt time.Time, reqErr error) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Duration("duration", time.Since(startedAt).Round(time.Millisecond)),
	}
	if reqErr != nil {
		c.logger.Debug("[http] <-", append(fields, zap.Error(reqErr))...)
		return
	}
	c.logger.Debug("[http] <-", append(fields, zap.Int("status", statusCode), zap.Int("bytes", responseBytes))...)
}
