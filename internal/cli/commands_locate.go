package cli

import (
	"github.com/mekedron/devradar-cli/internal/service/output"
	"github.com/spf13/cobra"
)

func newLocateCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Resolve the current position and show the initial map viewport.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
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

			if format == output.FormatTable {
				return writeTable(cmd, buildViewportText(view), flags.Output)
			}
			env := output.BuildEnvelope(profile.Name, map[string]any{
				"phase":    view.Phase,
				"location": view.Location,
				"viewport": view.Map.Region,
			}, nil, nil)
			return writeMachinePayload(cmd, env, format, flags.Output)
		},
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}
