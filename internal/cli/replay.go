package cli

import (
	"github.com/spf13/cobra"

	"harmonic-scanner/internal/engine"
	"harmonic-scanner/internal/recorder"
)

// newReplayCmd creates the bar-by-bar replay command.
func newReplayCmd(app *App) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "replay <bars.csv>",
		Short: "Replay a bar series incrementally, printing lifecycle events",
		Long: `Replay feeds the series to the engine one bar at a time and prints
each pattern status change as the bar that caused it arrives. This is the
same code path the batch scan uses, exposed for watching patterns form.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			series, err := LoadBarsCSV(args[0])
			if err != nil {
				return err
			}

			eng, err := engine.New(app.Config, app.Logger)
			if err != nil {
				return err
			}

			var rec recorder.Recorder = recorder.NewNoopRecorder()
			if dbPath != "" {
				sqlRec, err := recorder.NewSQLiteRecorder(dbPath)
				if err != nil {
					return err
				}
				defer sqlRec.Close()
				rec = sqlRec
			}

			run := eng.NewRun()
			for _, bar := range series.Bars() {
				events, err := eng.Step(run, bar)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					continue
				}
				if err := rec.RecordEvents(events); err != nil {
					return err
				}
				for _, e := range events {
					p, _ := run.Tracker().Get(e.Identity)
					if output.IsJSON() {
						output.JSON(e)
						continue
					}
					output.Printf("bar %d  %s %s  %s -> %s\n",
						e.BarIndex, p.Name, shortID(e.Identity), e.OldStatus, e.NewStatus)
				}
			}

			if err := rec.RecordPatterns(run.Patterns()); err != nil {
				return err
			}

			if !output.IsJSON() {
				output.Printf("\nreplayed %d bars, tracked %d patterns\n", series.Len(), len(run.Patterns()))
				if dbPath != "" {
					output.Success("recorded %d patterns to %s", len(run.Patterns()), dbPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "record results to this SQLite database")

	return cmd
}
