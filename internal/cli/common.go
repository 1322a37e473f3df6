package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/gateway/devsearch"
	"github.com/mekedron/devradar-cli/internal/gateway/location"
	"github.com/mekedron/devradar-cli/internal/logging"
	"github.com/mekedron/devradar-cli/internal/service/explore"
	"github.com/mekedron/devradar-cli/internal/service/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

type globalFlags struct {
	Format        string
	Profile       string
	Address       string
	Lat           float64
	Lon           float64
	AllowLocation bool
	Span          float64
	Output        string
	Verbose       bool
}

const sharedGlobalFlagAnnotation = "devradar_cli_shared_global"

const (
	codeInvalidArgument     = "DEVRADAR_INVALID_ARGUMENT"
	codeLocationUnavailable = "DEVRADAR_LOCATION_UNAVAILABLE"
	codeUpstreamError       = "DEVRADAR_UPSTREAM_ERROR"
	codeProfileError        = "DEVRADAR_PROFILE_ERROR"
	codeMarkerNotFound      = "DEVRADAR_MARKER_NOT_FOUND"
)

func addGlobalFlags(cmd *cobra.Command, flags *globalFlags) {
	addSharedGlobalFlag(cmd, "format", func() {
		cmd.Flags().StringVar(&flags.Format, "format", "table", "Output format: table, json, or yaml.")
	})
	addSharedGlobalFlag(cmd, "profile", func() {
		cmd.Flags().StringVar(&flags.Profile, "profile", "", "Profile name for saved local defaults.")
	})
	addSharedGlobalFlag(cmd, "address", func() {
		cmd.Flags().StringVar(&flags.Address, "address", "", "Use this address as the current position. Geocoded to coordinates. Cannot be combined with --lat/--lon.")
	})
	addSharedGlobalFlag(cmd, "lat", func() {
		cmd.Flags().Float64Var(&flags.Lat, "lat", 0, "Current latitude (requires --lon).")
	})
	addSharedGlobalFlag(cmd, "lon", func() {
		cmd.Flags().Float64Var(&flags.Lon, "lon", 0, "Current longitude (requires --lat).")
	})
	addSharedGlobalFlag(cmd, "allow-location", func() {
		cmd.Flags().BoolVar(&flags.AllowLocation, "allow-location", false, "Grant location permission: approximate the current position from the public IP address.")
	})
	addSharedGlobalFlag(cmd, "span", func() {
		cmd.Flags().Float64Var(&flags.Span, "span", 0, "Initial viewport span in degrees (default: profile span or 0.04).")
	})
	addSharedGlobalFlag(cmd, "output", func() {
		cmd.Flags().StringVar(&flags.Output, "output", "", "Also write the rendered output to this file.")
	})
	addSharedGlobalFlag(cmd, "verbose", func() {
		cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "Enable verbose output (prints upstream request trace, screen events, and detailed error diagnostics).")
	})
}

func addSharedGlobalFlag(cmd *cobra.Command, name string, register func()) {
	if cmd.Flags().Lookup(name) != nil {
		return
	}
	register()
	flag := cmd.Flags().Lookup(name)
	if flag == nil {
		return
	}
	if flag.Annotations == nil {
		flag.Annotations = map[string][]string{}
	}
	flag.Annotations[sharedGlobalFlagAnnotation] = []string{"true"}
}

func resolveProfileLabel(profileName string) string {
	profile := strings.TrimSpace(profileName)
	if profile == "" {
		return "anonymous"
	}
	return profile
}

func parseOutputFormat(format string) (output.Format, error) {
	return output.ParseFormat(format)
}

func writeTable(cmd *cobra.Command, text string, outputPath string) error {
	if err := output.WriteOutput(cmd.OutOrStdout(), text, outputPath); err != nil {
		return err
	}
	return nil
}

func writeMachinePayload(cmd *cobra.Command, env output.Envelope, format output.Format, outputPath string) error {
	rendered, err := output.RenderPayload(env, format)
	if err != nil {
		return err
	}
	if err := output.WriteOutput(cmd.OutOrStdout(), rendered, outputPath); err != nil {
		return err
	}
	return nil
}

func emitError(
	cmd *cobra.Command,
	format output.Format,
	profile string,
	outputPath string,
	code string,
	message string,
) error {
	if format == output.FormatTable {
		if err := output.WriteOutput(cmd.OutOrStdout(), message, outputPath); err != nil {
			return err
		}
		return &exitError{code: 1}
	}
	env := output.BuildEnvelope(profile, nil, []string{}, map[string]any{
		"code":    code,
		"message": message,
	})
	if err := writeMachinePayload(cmd, env, format, outputPath); err != nil {
		return err
	}
	return &exitError{code: 1}
}

// resolveLocationProvider picks where the initial position fix comes from:
// --address, then --lat/--lon, then the profile location, then IP geolocation
// when the user opted in. Anything else denies permission.
func resolveLocationProvider(
	ctx context.Context,
	cmd *cobra.Command,
	deps Dependencies,
	flags globalFlags,
	format output.Format,
) (location.Provider, domain.Profile, error) {
	latSet := cmd.Flags().Changed("lat")
	lonSet := cmd.Flags().Changed("lon")
	label := resolveProfileLabel(flags.Profile)

	if address := strings.TrimSpace(flags.Address); address != "" {
		if latSet || lonSet {
			return nil, domain.Profile{}, emitError(cmd, format, label, flags.Output, codeInvalidArgument,
				"Do not combine --address with --lat/--lon. Use either --address or both --lat and --lon.")
		}
		if deps.Geocoder == nil {
			return nil, domain.Profile{}, emitError(cmd, format, label, flags.Output, codeLocationUnavailable,
				"Address geocoder is not available.")
		}
		profile := findProfileOrAnonymous(ctx, deps, flags.Profile)
		return location.Address{Geocoder: deps.Geocoder, Query: address}, profile, nil
	}

	if latSet != lonSet {
		return nil, domain.Profile{}, emitError(cmd, format, label, flags.Output, codeInvalidArgument,
			"Both --lat and --lon must be provided together.")
	}
	if latSet {
		coord := domain.Coordinate{Lat: flags.Lat, Lon: flags.Lon}
		if !coord.Valid() {
			return nil, domain.Profile{}, emitError(cmd, format, label, flags.Output, codeInvalidArgument,
				"--lat must be within [-90, 90] and --lon within [-180, 180].")
		}
		profile := findProfileOrAnonymous(ctx, deps, flags.Profile)
		return location.Fixed{Coordinate: coord}, profile, nil
	}

	profile := domain.Profile{Name: label}
	if deps.Profiles != nil {
		found, err := deps.Profiles.Find(ctx, flags.Profile)
		if err != nil {
			return nil, domain.Profile{}, emitError(cmd, format, profileNameForError(flags.Profile), flags.Output, codeProfileError, err.Error())
		}
		profile = found
	}
	if profile.Location != nil {
		return location.Fixed{Coordinate: *profile.Location}, profile, nil
	}
	if deps.IPLocator == nil {
		return location.Denied{}, profile, nil
	}
	provider := deps.IPLocator(flags.AllowLocation || profile.AllowLocation)
	setVerboseLogger(cmd, provider)
	return provider, profile, nil
}

func findProfileOrAnonymous(ctx context.Context, deps Dependencies, profileName string) domain.Profile {
	if deps.Profiles == nil {
		return domain.Profile{Name: resolveProfileLabel(profileName)}
	}
	profile, err := deps.Profiles.Find(ctx, profileName)
	if err != nil {
		return domain.Profile{Name: resolveProfileLabel(profileName)}
	}
	return profile
}

func profileNameForError(profileName string) string {
	if strings.TrimSpace(profileName) == "" {
		return "default"
	}
	return profileName
}

func resolveSpan(flags globalFlags, profile domain.Profile) float64 {
	if flags.Span > 0 {
		return flags.Span
	}
	return profile.ResolvedSpan()
}

func commandLogger(cmd *cobra.Command, deps Dependencies, flags globalFlags) *zap.Logger {
	if flags.Verbose {
		return logging.New(cmd.ErrOrStderr(), true)
	}
	return logging.OrNop(deps.Logger)
}

func newExploreSession(
	cmd *cobra.Command,
	deps Dependencies,
	flags globalFlags,
	provider location.Provider,
	profile domain.Profile,
	opts ...explore.Option,
) *explore.Session {
	navigator := deps.Navigator
	if navigator == nil {
		navigator = newProfileLinkNavigator(cmd.OutOrStdout(), "")
	}
	base := []explore.Option{
		explore.WithSpan(resolveSpan(flags, profile)),
		explore.WithLogger(commandLogger(cmd, deps, flags)),
		explore.WithNavigator(navigator),
	}
	return explore.NewSession(provider, deps.Search, append(base, opts...)...)
}

func emitLocationUnavailable(cmd *cobra.Command, format output.Format, profile string, outputPath string, status explore.LocationStatus) error {
	message := "Location is unavailable; nothing to show."
	if status == explore.LocationDenied {
		message = "Location permission was not granted. Pass --allow-location, --address, or --lat/--lon, or save a location with configure."
	}
	return emitError(cmd, format, profile, outputPath, codeLocationUnavailable, message)
}

func emitUpstreamError(
	cmd *cobra.Command,
	format output.Format,
	profile string,
	outputPath string,
	verbose bool,
	err error,
) error {
	if err == nil {
		err = devsearch.ErrUpstream
	}
	if verbose {
		return emitError(cmd, format, profile, outputPath, codeUpstreamError, err.Error())
	}

	message := devsearch.ErrUpstream.Error() + " (use --verbose for details)"
	var upstreamErr *devsearch.UpstreamRequestError
	if errors.As(err, &upstreamErr) && upstreamErr.StatusCode > 0 {
		message = fmt.Sprintf("%s (status %d, use --verbose for details)", devsearch.ErrUpstream.Error(), upstreamErr.StatusCode)
	}
	return emitError(cmd, format, profile, outputPath, codeUpstreamError, message)
}

// parseRegion reads "lat,lon" or "lat,lon,latDelta,lonDelta". Missing deltas
// are taken from fallback.
func parseRegion(raw string, fallback domain.Viewport) (domain.Viewport, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 2 && len(fields) != 4 {
		return domain.Viewport{}, fmt.Errorf("region must be lat,lon or lat,lon,lat_delta,lon_delta")
	}
	values := make([]float64, len(fields))
	for i, field := range fields {
		value, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return domain.Viewport{}, fmt.Errorf("invalid region value %q", field)
		}
		values[i] = value
	}
	region := domain.Viewport{
		Latitude:       values[0],
		Longitude:      values[1],
		LatitudeDelta:  fallback.LatitudeDelta,
		LongitudeDelta: fallback.LongitudeDelta,
	}
	if len(values) == 4 {
		region.LatitudeDelta = values[2]
		region.LongitudeDelta = values[3]
	}
	if err := region.Validate(); err != nil {
		return domain.Viewport{}, err
	}
	return region, nil
}

func requiredArg(name string) string {
	return fmt.Sprintf("%s is required", name)
}
