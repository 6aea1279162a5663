package cli

import (
	"github.com/spf13/cobra"

	"harmonic-scanner/internal/engine"
	"harmonic-scanner/internal/recorder"
	"harmonic-scanner/internal/tracker"
)

// newScanCmd creates the batch scan command.
func newScanCmd(app *App) *cobra.Command {
	var (
		dbPath     string
		showEvents bool
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "scan <bars.csv>",
		Short: "Scan a completed bar series for harmonic patterns",
		Long: `Scan runs the full detection pipeline over a CSV of OHLC bars and
prints every pattern it tracked, with lifecycle outcomes. The batch scan
replays the series bar by bar internally, so its results always match a
live replay of the same data.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			series, err := LoadBarsCSV(args[0])
			if err != nil {
				return err
			}
			if w := app.Config.Scan.PivotWindow; series.Len() < 2*w+1 && !output.IsJSON() {
				output.Warning("%d bars cannot confirm any pivot with window %d", series.Len(), w)
			}

			eng, err := engine.New(app.Config, app.Logger)
			if err != nil {
				return err
			}

			patterns, events, err := eng.ScanBatch(series)
			if err != nil {
				return err
			}
			app.Logger.Info().
				Int("bars", series.Len()).
				Int("patterns", len(patterns)).
				Int("events", len(events)).
				Msg("batch scan complete")

			if dbPath != "" {
				rec, err := recorder.NewSQLiteRecorder(dbPath)
				if err != nil {
					return err
				}
				defer rec.Close()
				if err := rec.RecordPatterns(patterns); err != nil {
					return err
				}
				if err := rec.RecordEvents(events); err != nil {
					return err
				}
				if !output.IsJSON() {
					output.Success("recorded %d patterns and %d events to %s", len(patterns), len(events), dbPath)
				}
			}

			if !all {
				patterns = withoutDismissed(patterns)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"bars":     series.Len(),
					"patterns": patterns,
					"events":   events,
				})
			}

			if len(patterns) == 0 {
				output.Info("no patterns found in %d bars", series.Len())
				return nil
			}
			writePatternTable(output, patterns)
			counts := statusCounts(patterns)
			output.Printf("\n%d patterns: %d pending, %d in zone, %d success, %d failed, %d dismissed\n",
				len(patterns), counts[tracker.StatusPending], counts[tracker.StatusInZone],
				counts[tracker.StatusSuccess], counts[tracker.StatusFailed], counts[tracker.StatusDismissed])
			if showEvents && len(events) > 0 {
				output.Println()
				writeEventTable(output, events)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "record results to this SQLite database")
	cmd.Flags().BoolVar(&showEvents, "events", false, "also print the lifecycle event log")
	cmd.Flags().BoolVar(&all, "all", false, "include dismissed patterns in the listing")

	return cmd
}

func withoutDismissed(patterns []*tracker.TrackedPattern) []*tracker.TrackedPattern {
	kept := patterns[:0:0]
	for _, p := range patterns {
		if p.Status != tracker.StatusDismissed {
			kept = append(kept, p)
		}
	}
	return kept
}
