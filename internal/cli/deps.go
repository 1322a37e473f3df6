package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/gateway/devsearch"
	"github.com/mekedron/devradar-cli/internal/gateway/location"
	"github.com/mekedron/devradar-cli/internal/service/explore"
	"go.uber.org/zap"
)

var unknownCommandPattern = regexp.MustCompile(`unknown command "([^"]+)"`)

// ProfileResolver resolves profile selections.
type ProfileResolver interface {
	Find(ctx context.Context, profileName string) (domain.Profile, error)
}

// ConfigManager stores profile config payloads.
type ConfigManager interface {
	Path() string
	Load(ctx context.Context) (domain.Config, error)
	Save(ctx context.Context, cfg domain.Config) error
}

// IPLocatorFactory builds the device locator for the given opt-in.
type IPLocatorFactory func(optIn bool) location.Provider

// Dependencies wires runtime services.
type Dependencies struct {
	Search    devsearch.API
	Profiles  ProfileResolver
	Geocoder  location.AddressGeocoder
	IPLocator IPLocatorFactory
	Config    ConfigManager
	Navigator explore.Navigator
	Logger    *zap.Logger
	Version   string
}

var errVersionShown = fmt.Errorf("version shown")

// Execute runs the CLI with injected dependencies.
func Execute(ctx context.Context, args []string, deps Dependencies, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand(deps)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil || err == errVersionShown {
		return 0
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	if matches := unknownCommandPattern.FindStringSubmatch(err.Error()); len(matches) > 1 {
		_, _ = fmt.Fprintf(stderr, "No such command '%s'\n", matches[1])
		return 2
	}

	if msg := err.Error(); msg != "" {
		_, _ = fmt.Fprintln(stderr, msg)
	}
	return 1
}
