package cli

import (
	"fmt"
	"strings"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newConfigureCommand(deps Dependencies) *cobra.Command {
	var profileName string
	var lat float64
	var lon float64
	var allowLocation bool
	var span float64
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Create and manage local profile location defaults.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if deps.Config == nil {
				return fmt.Errorf("config store is not available")
			}
			latSet := cmd.Flags().Changed("lat")
			lonSet := cmd.Flags().Changed("lon")
			allowSet := cmd.Flags().Changed("allow-location")
			spanSet := cmd.Flags().Changed("span")
			if latSet != lonSet {
				return fmt.Errorf("both --lat and --lon must be provided together")
			}
			var saved *domain.Coordinate
			if latSet {
				coord := domain.Coordinate{Lat: lat, Lon: lon}
				if !coord.Valid() {
					return fmt.Errorf("--lat must be within [-90, 90] and --lon within [-180, 180]")
				}
				saved = &coord
			}
			if spanSet && span <= 0 {
				return fmt.Errorf("--span must be > 0")
			}

			existingCfg, loadErr := deps.Config.Load(cmd.Context())
			hasExisting := loadErr == nil
			if hasExisting && !overwrite {
				if saved == nil && !allowSet && !spanSet {
					return fmt.Errorf("provide --lat/--lon, --allow-location, or --span to update the profile")
				}
				lookup := ""
				if cmd.Flags().Changed("profile-name") {
					lookup = profileName
				}
				index := findProfileIndex(existingCfg, lookup)
				if index < 0 {
					existingCfg.Profiles = append(existingCfg.Profiles, domain.Profile{Name: profileName})
					index = len(existingCfg.Profiles) - 1
				}
				if saved != nil {
					existingCfg.Profiles[index].Location = saved
				}
				if allowSet {
					existingCfg.Profiles[index].AllowLocation = allowLocation
				}
				if spanSet {
					existingCfg.Profiles[index].Span = span
				}
				if err := deps.Config.Save(cmd.Context(), existingCfg); err != nil {
					return err
				}
				return writeTable(cmd, fmt.Sprintf("Profile %q updated in %s", existingCfg.Profiles[index].Name, deps.Config.Path()), "")
			}

			cfg := domain.Config{
				Profiles: []domain.Profile{
					{
						Name:          profileName,
						IsDefault:     true,
						Location:      saved,
						AllowLocation: allowLocation,
						Span:          span,
					},
				},
			}
			if err := deps.Config.Save(cmd.Context(), cfg); err != nil {
				return err
			}
			return writeTable(cmd, fmt.Sprintf("Config was created at %s", deps.Config.Path()), "")
		},
	}

	cmd.Flags().StringVar(&profileName, "profile-name", "Default", "Profile name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Saved latitude used as the current position (requires --lon).")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Saved longitude used as the current position (requires --lat).")
	cmd.Flags().BoolVar(&allowLocation, "allow-location", false, "Allow IP geolocation when no location is saved.")
	cmd.Flags().Float64Var(&span, "span", 0, "Initial viewport span in degrees (default 0.04).")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing config")
	return cmd
}

// findProfileIndex matches by name first; an empty name selects the default profile.
func findProfileIndex(cfg domain.Config, profileName string) int {
	trimmed := strings.TrimSpace(profileName)
	if trimmed != "" {
		for i, profile := range cfg.Profiles {
			if strings.EqualFold(strings.TrimSpace(profile.Name), trimmed) {
				return i
			}
		}
		return -1
	}
	for i, profile := range cfg.Profiles {
		if profile.IsDefault {
			return i
		}
	}
	if len(cfg.Profiles) == 1 {
		return 0
	}
	return -1
}
