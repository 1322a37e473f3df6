package cli

import (
	"runtime/debug"
	"strings"

	"github.com/mekedron/devradar-cli/internal/service/output"
	"github.com/spf13/cobra"
)

const (
	devVersion         = "dev"
	goDevelMainVersion = "(devel)"
	vcsRevisionKey     = "vcs.revision"
	vcsModifiedKey     = "vcs.modified"
	shortRevisionLen   = 12
)

var readBuildInfo = debug.ReadBuildInfo

// buildVersion describes the running binary. Version is the release tag
// injected at link time, or the best guess from the embedded build info.
type buildVersion struct {
	Version  string `json:"version" yaml:"version"`
	Revision string `json:"revision,omitempty" yaml:"revision,omitempty"`
	Modified bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
	Go       string `json:"go,omitempty" yaml:"go,omitempty"`
}

func readVersion(injected string) buildVersion {
	v := buildVersion{Version: strings.TrimSpace(injected)}
	if info, ok := readBuildInfo(); ok && info != nil {
		v.Go = info.GoVersion
		v.Revision, v.Modified = vcsRevision(info.Settings)
		if v.Version == "" || v.Version == devVersion {
			v.Version = versionFromBuild(info.Main.Version, v.Revision, v.Modified, v.Version)
		}
	}
	if v.Version == "" {
		v.Version = devVersion
	}
	return v
}

func versionFromBuild(mainVersion, revision string, modified bool, fallback string) string {
	mainVersion = strings.TrimSpace(mainVersion)
	switch {
	case mainVersion != "" && mainVersion != goDevelMainVersion:
		return mainVersion
	case revision != "" && modified:
		return revision + "-dirty"
	case revision != "":
		return revision
	default:
		return fallback
	}
}

func vcsRevision(settings []debug.BuildSetting) (string, bool) {
	var revision string
	modified := false
	for _, setting := range settings {
		switch setting.Key {
		case vcsRevisionKey:
			revision = strings.TrimSpace(setting.Value)
		case vcsModifiedKey:
			modified = strings.EqualFold(strings.TrimSpace(setting.Value), "true")
		}
	}
	if len(revision) > shortRevisionLen {
		revision = revision[:shortRevisionLen]
	}
	return revision, modified
}

func newVersionCommand(deps Dependencies) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show CLI version and build details.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseOutputFormat(format)
			if err != nil {
				return err
			}
			info := readVersion(deps.Version)
			if parsed == output.FormatTable {
				return writeTable(cmd, info.Version, "")
			}
			env := output.BuildEnvelope(resolveProfileLabel(""), info, nil, nil)
			return writeMachinePayload(cmd, env, parsed, "")
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table (version only), json, or yaml (with revision and Go version).")
	return cmd
}
