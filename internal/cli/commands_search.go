package cli

import (
	"fmt"
	"strings"

	"github.com/mekedron/devradar-cli/internal/service/explore"
	"github.com/mekedron/devradar-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newSearchCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags
	var stacks string
	var region string
	var limit int
	var limitSet bool
	var offset int
	var offsetSet bool
	var page int
	var pageSet bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search developers around the current position by stacks.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			var limitPtr *int
			if limitSet {
				limitPtr = &limit
			}
			resolvedOffset, err := resolvePageOffset(limit, limitSet, offset, offsetSet, page, pageSet)
			if err != nil {
				return err
			}

			provider, profile, err := resolveLocationProvider(cmd.Context(), cmd, deps, flags, format)
			if err != nil {
				return err
			}
			session := newExploreSession(cmd, deps, flags, provider, profile)
			view := session.Initialize(cmd.Context())
			if view.Map == nil {
				return emitLocationUnavailable(cmd, format, profile.Name, flags.Output, view.Location)
			}

			if strings.TrimSpace(region) != "" {
				moved, err := parseRegion(region, view.Map.Region)
				if err != nil {
					return emitError(cmd, format, profile.Name, flags.Output, codeInvalidArgument, fmt.Sprintf("--region: %v", err))
				}
				session.RegionChanged(moved)
			}
			session.SetFilter(stacks)

			request, ok := session.TriggerSearch(cmd.Context())
			if !ok {
				return emitLocationUnavailable(cmd, format, profile.Name, flags.Output, session.State().Location)
			}
			if err := session.Wait(); err != nil {
				return err
			}

			state := session.State()
			if state.Err != nil {
				return emitUpstreamError(cmd, format, profile.Name, flags.Output, flags.Verbose, state.Err)
			}

			view = explore.Render(state)
			markers, meta := paginateRows(view.Markers, limitPtr, resolvedOffset)
			if format == output.FormatTable {
				return writeTable(cmd, buildMarkerTable(view, markers, meta), flags.Output)
			}
			var warnings []string
			if view.Skipped > 0 {
				warnings = append(warnings, fmt.Sprintf("%d result(s) without coordinates were skipped", view.Skipped))
			}
			env := output.BuildEnvelope(profile.Name, viewPayload(view, markers, meta, &request), warnings, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}

	cmd.Flags().StringVar(&stacks, "stacks", "", "Comma separated stacks to match, sent verbatim (empty matches any).")
	cmd.Flags().StringVar(&region, "region", "", "Pan the map before searching: lat,lon or lat,lon,lat_delta,lon_delta.")
	cmd.Flags().IntVar(&limit, "limit", 0, "Limit returned markers")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset returned markers")
	cmd.Flags().IntVar(&page, "page", 0, "1-based page number (requires --limit; cannot be combined with --offset)")
	addGlobalFlags(cmd, &flags)
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		limitSet = cmd.Flags().Changed("limit")
		offsetSet = cmd.Flags().Changed("offset")
		pageSet = cmd.Flags().Changed("page")
	}

	return cmd
}
