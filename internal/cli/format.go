package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"harmonic-scanner/internal/harmonics"
	"harmonic-scanner/internal/tracker"
)

// shortID trims a pattern identity for table display.
func shortID(identity string) string {
	if len(identity) > 8 {
		return identity[:8]
	}
	return identity
}

// formatZone renders the hypothesis envelope, or a dash when no zone was
// projectable.
func formatZone(zones []harmonics.ZoneProjection) string {
	env, ok := harmonics.Envelope(zones)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f..%.2f", env.Low, env.High)
}

// formatRatios renders the measured leg ratios in a stable order.
func formatRatios(ratios map[string]float64) string {
	var parts []string
	for _, name := range []string{harmonics.RatioABXA, harmonics.RatioBCAB, harmonics.RatioCDBC, harmonics.RatioADXA} {
		if r, ok := ratios[name]; ok {
			parts = append(parts, fmt.Sprintf("%s=%.3f", name, r))
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " ")
}

// writePatternTable renders tracked patterns as an aligned table.
func writePatternTable(output *Output, patterns []*tracker.TrackedPattern) {
	w := tabwriter.NewWriter(output.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPATTERN\tDIR\tSTATUS\tPOINTS\tZONE\tRATIOS")
	for _, p := range patterns {
		names := p.Skeleton.PointNames()
		var pts []string
		for i, pp := range p.Skeleton.Points {
			pts = append(pts, fmt.Sprintf("%s@%d", names[i], pp.BarIndex))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(p.Identity), p.Name, p.Direction, p.Status,
			strings.Join(pts, " "), formatZone(p.Zones), formatRatios(p.Ratios))
	}
	w.Flush()
}

// writeEventTable renders lifecycle events as an aligned table.
func writeEventTable(output *Output, events []tracker.Event) {
	w := tabwriter.NewWriter(output.writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BAR\tID\tTRANSITION")
	for _, e := range events {
		fmt.Fprintf(w, "%d\t%s\t%s -> %s\n", e.BarIndex, shortID(e.Identity), e.OldStatus, e.NewStatus)
	}
	w.Flush()
}

// statusCounts tallies patterns by lifecycle status.
func statusCounts(patterns []*tracker.TrackedPattern) map[tracker.Status]int {
	counts := make(map[tracker.Status]int)
	for _, p := range patterns {
		counts[p.Status]++
	}
	return counts
}
