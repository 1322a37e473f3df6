package cli

import (
	"fmt"
	"strings"

	"github.com/mekedron/devradar-cli/internal/domain"
	"github.com/mekedron/devradar-cli/internal/service/explore"
	"github.com/mekedron/devradar-cli/internal/service/output"
)

func formatCoordinate(lat, lon float64) string {
	return fmt.Sprintf("%.6f, %.6f", lat, lon)
}

func formatSpan(region domain.Viewport) string {
	return fmt.Sprintf("%.4f x %.4f", region.LatitudeDelta, region.LongitudeDelta)
}

func buildViewportText(view explore.View) string {
	if view.Map == nil {
		return output.RenderFields("Viewport", [][2]string{
			{"state", string(view.Phase)},
			{"location", string(view.Location)},
		})
	}
	region := view.Map.Region
	filter := ""
	if view.Form != nil {
		filter = view.Form.Filter
	}
	return output.RenderFields("Viewport", [][2]string{
		{"center", formatCoordinate(region.Latitude, region.Longitude)},
		{"span", formatSpan(region)},
		{"state", string(view.Phase)},
		{"filter", filter},
		{"markers", fmt.Sprintf("%d", len(view.Markers))},
		{"notice", view.Notice},
	})
}

func buildMarkerTable(view explore.View, markers []explore.Marker, meta pageMeta) string {
	title := "Developers"
	if view.Map != nil {
		title = fmt.Sprintf("Developers near %s (span %s)", formatCoordinate(view.Map.Region.Latitude, view.Map.Region.Longitude), formatSpan(view.Map.Region))
	}
	if view.Form != nil && strings.TrimSpace(view.Form.Filter) != "" {
		title += fmt.Sprintf(", stacks %q", view.Form.Filter)
	}
	if len(markers) == 0 {
		lines := []string{title, "No developers found."}
		return strings.Join(append(lines, markerFooter(view, meta)...), "\n")
	}

	rows := make([][]string, 0, len(markers))
	for _, marker := range markers {
		rows = append(rows, []string{
			marker.Key,
			marker.Handle,
			marker.Popover.Title,
			formatCoordinate(marker.Position.Lat, marker.Position.Lon),
			marker.Popover.Stacks,
		})
	}
	table := output.RenderTable(title, []string{"KEY", "GITHUB", "NAME", "POSITION", "STACKS"}, rows)
	footer := markerFooter(view, meta)
	if len(footer) == 0 {
		return table
	}
	return table + "\n" + strings.Join(footer, "\n")
}

func markerFooter(view explore.View, meta pageMeta) []string {
	lines := []string{}
	if meta.Count > 0 && meta.Count < meta.Total {
		lines = append(lines, fmt.Sprintf("showing %d-%d of %d", meta.Offset+1, meta.Offset+meta.Count, meta.Total))
	}
	if view.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("%d result(s) without coordinates not shown", view.Skipped))
	}
	if view.Notice != "" {
		lines = append(lines, view.Notice)
	}
	return lines
}

func buildPopoverText(marker explore.Marker) string {
	return output.RenderFields(marker.Popover.Title, [][2]string{
		{"github", marker.Handle},
		{"bio", marker.Popover.Bio},
		{"stacks", marker.Popover.Stacks},
		{"avatar", marker.AvatarURL},
		{"position", formatCoordinate(marker.Position.Lat, marker.Position.Lon)},
	})
}

func viewPayload(view explore.View, markers []explore.Marker, meta pageMeta, request *explore.SearchRequest) map[string]any {
	data := map[string]any{
		"phase":    view.Phase,
		"location": view.Location,
		"map":      view.Map,
		"form":     view.Form,
		"markers":  markers,
		"skipped":  view.Skipped,
		"page":     meta,
	}
	if view.Notice != "" {
		data["notice"] = view.Notice
	}
	if request != nil {
		data["request"] = request
	}
	return data
}
