package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/mekedron/devradar-cli/internal/domain"
)

const defaultProfileBaseURL = "https://github.com"

// profileLinkNavigator stands in for the detail screen: it prints the link of
// the developer profile named by the navigation event.
type profileLinkNavigator struct {
	out     io.Writer
	baseURL string
}

func newProfileLinkNavigator(out io.Writer, baseURL string) *profileLinkNavigator {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultProfileBaseURL
	}
	return &profileLinkNavigator{out: out, baseURL: strings.TrimRight(baseURL, "/")}
}

func (n *profileLinkNavigator) Navigate(_ context.Context, event domain.NavigationEvent) error {
	if strings.TrimSpace(event.Handle) == "" {
		return fmt.Errorf("navigation event has no developer handle")
	}
	_, err := fmt.Fprintf(n.out, "%s: %s\n", event.Screen, profileURL(n.baseURL, event.Handle))
	return err
}

func profileURL(baseURL, handle string) string {
	return baseURL + "/" + url.PathEscape(handle)
}

// lockedWriter serializes writes from the input loop and background search callbacks.
type lockedWriter struct {
	mu  sync.Mutex
	out io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.out.Write(p)
}
