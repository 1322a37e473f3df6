package location

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mekedron/devradar-cli/internal/logging"
	"go.uber.org/zap"
)

// Option configures the geocoder and the IP locator.
type Option func(*lookupClient)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *lookupClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the request trace logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *lookupClient) {
		c.logger = logging.OrNop(logger)
	}
}

type lookupClient struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func newLookupClient(opts []Option) lookupClient {
	c := lookupClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// SetLogger swaps the trace logger after construction.
func (c *lookupClient) SetLogger(logger *zap.Logger) {
	c.logger = logging.OrNop(logger)
}

// get fetches rawURL and returns the body of a 2xx response. Every failure
// wraps ErrLocationLookup.
func (c lookupClient) get(ctx context.Context, rawURL string) ([]byte, error) {
	logger := logging.OrNop(c.logger)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	startedAt := time.Now()
	logger.Debug("[http] ->", zap.String("method", http.MethodGet), zap.String("url", rawURL))
	done := func(status int, size int, err error) {
		fields := []zap.Field{
			zap.String("method", http.MethodGet),
			zap.String("url", rawURL),
			zap.Duration("duration", time.Since(startedAt).Round(time.Millisecond)),
		}
		if err != nil {
			logger.Debug("[http] <-", append(fields, zap.Int("status", status), zap.Error(err))...)
			return
		}
		logger.Debug("[http] <-", append(fields, zap.Int("status", status), zap.Int("bytes", size))...)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrLocationLookup, err)
		done(0, 0, err)
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		err = fmt.Errorf("%w: read response body: %v", ErrLocationLookup, err)
		done(res.StatusCode, 0, err)
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		err = fmt.Errorf("%w: status %d", ErrLocationLookup, res.StatusCode)
		done(res.StatusCode, len(body), err)
		return nil, err
	}
	done(res.StatusCode, len(body), nil)
	return body, nil
}
