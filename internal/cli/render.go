package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dbitech/cardtimeline/internal/layout"
	"github.com/dbitech/cardtimeline/internal/render"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	view := &viewFlags{}
	var output string
	cmd := &cobra.Command{
		Use:   "render <events-file>",
		Short: "Render an event file as an SVG timeline",
		Long: `Lay out the events in a CSV, YAML or ICS file and write the cards as SVG.
Without --output the events file name with an .svg extension is used;
"-" writes to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return err
			}
			events, vp, err := loadInput(args[0], view, cfg)
			if err != nil {
				return err
			}

			res := layout.New(cfg.Layout).Layout(events, vp)
			svg := render.New(cfg.Render, cfg.Layout).SVG(res, events)

			out := outputFilename(args[0], output)
			if out == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), svg)
				return err
			}
			if err := os.WriteFile(out, []byte(svg), 0o644); err != nil {
				return WrapExitError(ExitFailure, "error writing SVG file", err)
			}
			log.WithFields(log.Fields{"cards": len(res.Cards), "stage": res.Stage}).Debug("rendered timeline")
			fmt.Fprintf(cmd.OutOrStdout(), "Timeline SVG generated successfully: %s\n", out)
			return nil
		},
	}
	view.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output SVG file")
	return cmd
}

// outputFilename returns output when set, otherwise the events file name
// with its extension replaced by .svg.
func outputFilename(eventsFile, output string) string {
	if output != "" {
		return output
	}
	base := filepath.Base(eventsFile)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".svg"
}
