package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"harmonic-scanner/internal/engine"
	"harmonic-scanner/internal/harmonics"
)

// newPatternsCmd creates the definition table listing command.
func newPatternsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the pattern definitions in effect",
		Long: `Patterns prints the built-in harmonic definition table with any
configured tolerance overrides applied: one row per pattern, with its
leg ratio bands and completion rule.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			eng, err := engine.New(app.Config, app.Logger)
			if err != nil {
				return err
			}
			defs := eng.Definitions()

			if output.IsJSON() {
				return output.JSON(defs)
			}

			w := tabwriter.NewWriter(output.writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATTERN\tARITY\tAB/XA\tBC/AB\tCD/BC\tAD/XA\tCOMPLETION")
			for _, d := range defs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					d.Name, d.Arity,
					bandCell(d.Bands, harmonics.RatioABXA),
					bandCell(d.Bands, harmonics.RatioBCAB),
					bandCell(d.Bands, harmonics.RatioCDBC),
					bandCell(d.Bands, harmonics.RatioADXA),
					fmt.Sprintf("%.3f..%.3f x %s", d.Completion.Band.Min, d.Completion.Band.Max, d.Completion.Basis))
			}
			return w.Flush()
		},
	}
}

func bandCell(bands map[string]harmonics.RatioBand, name string) string {
	b, ok := bands[name]
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.3f..%.3f", b.Min, b.Max)
}
