package main

import (
	"context"
	"os"

	"github.com/mekedron/devradar-cli/internal/cli"
	"github.com/mekedron/devradar-cli/internal/config"
	"github.com/mekedron/devradar-cli/internal/gateway/devsearch"
	locationgateway "github.com/mekedron/devradar-cli/internal/gateway/location"
	"github.com/mekedron/devradar-cli/internal/logging"
	"github.com/mekedron/devradar-cli/internal/service/profile"
)

var version = "dev"

func main() {
	settings, err := config.LoadSettings()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	store, err := config.NewStore(settings.ConfigPath)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	// DEVRADAR_DEBUG traces every upstream request; --verbose does the same per command.
	logger := logging.New(os.Stderr, settings.Debug)

	deps := cli.Dependencies{
		Search: devsearch.NewClient(
			devsearch.WithBaseURL(settings.APIURL),
			devsearch.WithRequestMinInterval(settings.RequestMinInterval()),
			devsearch.WithLogger(logger),
		),
		Profiles: profile.NewResolver(store),
		Geocoder: locationgateway.NewGeocoder(settings.GeocoderURL, locationgateway.WithLogger(logger)),
		IPLocator: func(optIn bool) locationgateway.Provider {
			return locationgateway.NewIPLocator(settings.IPLocatorURL, optIn, locationgateway.WithLogger(logger))
		},
		Config:  store,
		Logger:  logger,
		Version: version,
	}

	exitCode := cli.Execute(context.Background(), os.Args[1:], deps, os.Stdout, os.Stderr)
	_ = logger.Sync()
	os.Exit(exitCode)
}
