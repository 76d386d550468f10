package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dbitech/cardtimeline/internal/layout"
	"github.com/dbitech/cardtimeline/internal/telemetry"
)

// LayoutOutput is the structured result of the layout command.
type LayoutOutput struct {
	Layout layout.Result   `json:"layout" yaml:"layout"`
	Stats  telemetry.Stats `json:"stats" yaml:"stats"`
}

// NewLayoutCommand creates the layout command.
func NewLayoutCommand(rootOpts *RootOptions) *cobra.Command {
	view := &viewFlags{}
	cmd := &cobra.Command{
		Use:   "layout <events-file>",
		Short: "Compute card positions for an event file",
		Long: `Compute card positions for the events in a CSV, YAML or ICS file and
print them. Use --format json or yaml for machine-readable output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(rootOpts, view, args[0], cmd)
		},
	}
	view.register(cmd)
	return cmd
}

func runLayout(opts *RootOptions, view *viewFlags, path string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	events, vp, err := loadInput(path, view, cfg)
	if err != nil {
		return err
	}

	res := layout.New(cfg.Layout).Layout(events, vp)
	stats := telemetry.NewRecorder().Record(res)

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Write(LayoutOutput{Layout: res, Stats: stats}, func(w io.Writer) error {
		return writeLayoutText(w, res, stats)
	})
}

func writeLayoutText(w io.Writer, res layout.Result, stats telemetry.Stats) error {
	fmt.Fprintf(w, "%d events, %d anchors, %d cards (stage %s, level %d)\n",
		stats.EventCount, stats.AnchorCount, stats.CardCount, res.Stage, res.Level)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tX\tY\tW\tH\tSIDE\tEVENTS")
	for _, c := range res.Cards {
		side := "below"
		if c.IsAbove {
			side = "above"
		}
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.0f\t%.0f\t%s\t%s\n",
			c.Tier, c.X, c.Y, c.Width, c.Height, side, strings.Join(c.SourceEventIDs, ","))
	}
	return tw.Flush()
}
