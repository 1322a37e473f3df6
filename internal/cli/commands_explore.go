package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mekedron/devradar-cli/internal/service/explore"
	"github.com/mekedron/devradar-cli/internal/service/output"
	"github.com/spf13/cobra"
)

const exploreHelp = `commands:
  filter <stacks>                      replace the stacks filter (empty clears it)
  pan <lat> <lon> [<lat_d> <lon_d>]    move the map; deltas default to the current span
  search                               search around the map center with the current filter
  wait                                 block until pending searches finish
  markers                              list the rendered markers
  view                                 show the viewport and search form
  open <marker-key>                    open the profile behind a marker popover
  help                                 show this help
  quit                                 leave the session`

func newExploreCommand(deps Dependencies) *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Interactive map session: pan, filter, search, and open developer profiles.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := parseOutputFormat(flags.Format)
			if err != nil {
				return err
			}
			provider, profile, err := resolveLocationProvider(cmd.Context(), cmd, deps, flags, format)
			if err != nil {
				return err
			}

			screen := &exploreScreen{
				out:     &lockedWriter{out: cmd.OutOrStdout()},
				format:  format,
				profile: profile.Name,
			}
			opts := []explore.Option{explore.OnChange(screen.printResults)}
			if deps.Navigator == nil {
				opts = append(opts, explore.WithNavigator(newProfileLinkNavigator(screen.out, "")))
			}
			screen.session = newExploreSession(cmd, deps, flags, provider, profile, opts...)

			view := screen.session.Initialize(cmd.Context())
			screen.printView(view)
			if view.Map == nil {
				screen.println(locationMessage(view.Location))
			}
			return screen.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	addGlobalFlags(cmd, &flags)
	return cmd
}

type exploreScreen struct {
	out     io.Writer
	format  output.Format
	profile string
	session *explore.Session
}

func (s *exploreScreen) run(ctx context.Context, in io.Reader) error {
	defer func() {
		_ = s.session.Wait()
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		name, rest := splitCommand(strings.TrimSuffix(scanner.Text(), "\r"))
		if name == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "filter":
			s.session.SetFilter(rest)
			s.println(fmt.Sprintf("filter: %q", rest))
		case "pan":
			s.pan(strings.TrimSpace(rest))
		case "search":
			s.search(ctx)
		case "wait":
			if err := s.session.Wait(); err != nil {
				return err
			}
		case "markers":
			s.printResults(s.session.View())
		case "view":
			s.printView(s.session.View())
		case "open":
			s.open(ctx, strings.TrimSpace(rest))
		case "help", "?":
			s.println(exploreHelp)
		case "quit", "exit":
			return nil
		default:
			s.println(fmt.Sprintf("unknown command %q (try help)", name))
		}
	}
	return scanner.Err()
}

// splitCommand separates the command word from its argument. Only the single
// separator after the word is dropped; the argument is returned as typed.
func splitCommand(line string) (string, string) {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	end := strings.IndexFunc(trimmed, unicode.IsSpace)
	if end < 0 {
		return trimmed, ""
	}
	_, size := utf8.DecodeRuneInString(trimmed[end:])
	return trimmed[:end], trimmed[end+size:]
}

func (s *exploreScreen) pan(raw string) {
	view := s.session.View()
	if view.Map == nil {
		s.println("no map yet: " + locationMessage(view.Location))
		return
	}
	region, err := parseRegion(raw, view.Map.Region)
	if err != nil {
		s.println(fmt.Sprintf("pan: %v", err))
		return
	}
	s.printView(s.session.RegionChanged(region))
}

func (s *exploreScreen) search(ctx context.Context) {
	req, ok := s.session.TriggerSearch(ctx)
	if !ok {
		s.println("search is unavailable: " + locationMessage(s.session.State().Location))
		return
	}
	s.println(fmt.Sprintf("searching #%d around %s for %q", req.Seq, formatCoordinate(req.Latitude, req.Longitude), req.Stacks))
}

func (s *exploreScreen) open(ctx context.Context, key string) {
	if key == "" {
		s.println(requiredArg("marker key"))
		return
	}
	if marker, ok := s.session.View().Marker(key); ok && s.format == output.FormatTable {
		s.println(buildPopoverText(marker))
	}
	if _, err := s.session.Open(ctx, key); err != nil {
		if errors.Is(err, explore.ErrMarkerNotFound) {
			s.println(fmt.Sprintf("marker %q not found", key))
			return
		}
		s.println(fmt.Sprintf("open: %v", err))
	}
}

func (s *exploreScreen) printView(view explore.View) {
	if s.format == output.FormatTable {
		s.println(buildViewportText(view))
		return
	}
	s.printPayload(view, nil)
}

func (s *exploreScreen) printResults(view explore.View) {
	markers, meta := paginateRows(view.Markers, nil, 0)
	if s.format == output.FormatTable {
		s.println(buildMarkerTable(view, markers, meta))
		return
	}
	s.printPayload(view, &meta)
}

func (s *exploreScreen) printPayload(view explore.View, meta *pageMeta) {
	page := pageMeta{Total: len(view.Markers), Count: len(view.Markers)}
	if meta != nil {
		page = *meta
	}
	env := output.BuildEnvelope(s.profile, viewPayload(view, view.Markers, page, nil), nil, nil)
	rendered, err := output.RenderPayload(env, s.format)
	if err != nil {
		s.println(err.Error())
		return
	}
	s.println(rendered)
}

func (s *exploreScreen) println(text string) {
	_, _ = fmt.Fprintln(s.out, text)
}

func locationMessage(status explore.LocationStatus) string {
	if status == explore.LocationDenied {
		return "location permission was not granted."
	}
	return "location is unavailable."
}
