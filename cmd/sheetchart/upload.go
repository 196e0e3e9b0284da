package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/export"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/history"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/series"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/session"
)

// selectionFlags are the axis overrides shared by upload, chart and replay.
type selectionFlags struct {
	x, y, kind string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.x, "x", "", "Column used for labels (default: first header)")
	cmd.Flags().StringVar(&f.y, "y", "", "Column used for values (default: second header)")
	cmd.Flags().StringVar(&f.kind, "kind", "", "Chart kind: bar, pie, line, doughnut or scatter")
}

func (f *selectionFlags) change() models.SelectionChange {
	var c models.SelectionChange
	if f.x != "" {
		c.XColumn = &f.x
	}
	if f.y != "" {
		c.YColumn = &f.y
	}
	if f.kind != "" {
		k := models.ChartKind(f.kind)
		c.ChartKind = &k
	}
	return c
}

// apply overrides the default selection picked by the controller.
func (f *selectionFlags) apply(c *session.Controller) (series.Result, error) {
	return c.ChangeSelection(f.change())
}

func newController(record bool) *session.Controller {
	var store *history.Store
	if record {
		store = state.history
	}
	return session.New(store, session.Options{Parse: state.cfg.ParseOptions(), Logger: state.log})
}

func newUploadCmd() *cobra.Command {
	var (
		sel       selectionFlags
		noHistory bool
	)
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Parse a spreadsheet, print its chart series and record it in history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return err
			}
			c := newController(!noHistory)
			if _, err := c.SubmitNewFile(cmd.Context(), filepath.Base(args[0]), data); err != nil {
				return err
			}
			res, err := sel.apply(c)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), c, res)
		},
	}
	sel.register(cmd)
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this upload")
	return cmd
}

func newChartCmd() *cobra.Command {
	var (
		sel        selectionFlags
		replay     int
		format     string
		outputPath string
		width      int
		height     int
	)
	cmd := &cobra.Command{
		Use:   "chart [FILE]",
		Short: "Render a chart image or PDF from a file or a history entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newController(false)
			switch {
			case len(args) == 1:
				data, err := readInput(args[0])
				if err != nil {
					return err
				}
				if _, err := c.SubmitNewFile(cmd.Context(), filepath.Base(args[0]), data); err != nil {
					return err
				}
			case replay >= 0:
				if err := replayEntry(cmd.Context(), c, replay); err != nil {
					return err
				}
			default:
				return fmt.Errorf("either FILE or --replay is required")
			}

			res, err := sel.apply(c)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			opts := export.RenderOptions{Width: width, Height: height}
			switch strings.ToLower(format) {
			case "png":
				err = export.RenderPNG(res, &buf, opts)
			case "pdf":
				err = export.RenderPDF(res, &buf, opts, export.DefaultPageLayout)
			default:
				return fmt.Errorf("invalid format: %s (must be png or pdf)", format)
			}
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), outputPath, buf.Bytes())
		},
	}
	sel.register(cmd)
	cmd.Flags().IntVar(&replay, "replay", -1, "History index to chart instead of FILE")
	cmd.Flags().StringVar(&format, "format", "png", "Output format: png or pdf")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().IntVar(&width, "width", export.DefaultWidth, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", export.DefaultHeight, "Image height in pixels")
	return cmd
}

func replayEntry(ctx context.Context, c *session.Controller, index int) error {
	entry, ok := state.history.Get(index)
	if !ok {
		return fmt.Errorf("history entry %d does not exist", index)
	}
	_, err := c.Replay(ctx, entry)
	return err
}

func readInput(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return os.ReadFile(path)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// resultView is the JSON form of a loaded session.
type resultView struct {
	File        string               `json:"file"`
	Headers     []string             `json:"headers"`
	Selection   models.AxisSelection `json:"selection"`
	Label       string               `json:"label"`
	Result      series.Result        `json:"result"`
	Description series.Description   `json:"description"`
}

func printResult(w io.Writer, c *session.Controller, res series.Result) error {
	src, _ := c.SourceFile()
	if jsonOutput {
		return writeJSON(w, resultView{
			File:        src.Name,
			Headers:     c.Table().Headers,
			Selection:   c.Selection(),
			Label:       res.Label(),
			Result:      res,
			Description: series.Describe(res),
		})
	}

	fmt.Fprintf(w, "%s: %s (%s)\n", src.Name, res.Label(), res.Kind)
	if res.Empty() {
		if len(res.Missing) > 0 {
			fmt.Fprintf(w, "no data for this selection: unknown column %s\n", strings.Join(res.Missing, ", "))
		} else {
			fmt.Fprintln(w, "no data for this selection")
		}
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(cellStyleFunc).
		Headers(res.Selection.XColumn, res.Selection.YColumn)
	if res.Scatter != nil {
		for _, p := range res.Scatter.Points {
			t.Row(formatFloat(p.X), formatFloat(p.Y))
		}
	} else {
		for i, v := range res.Series.Values {
			t.Row(res.Series.Labels[i].String(), formatFloat(v))
		}
	}
	fmt.Fprintln(w, t.String())

	d := series.Describe(res)
	if d.Summary != nil {
		fmt.Fprintf(w, "count %d  sum %s  mean %s  min %s  max %s\n", d.Summary.Count,
			formatFloat(d.Summary.Sum), formatFloat(d.Summary.Mean),
			formatFloat(d.Summary.Min), formatFloat(d.Summary.Max))
	}
	if d.Fit != nil {
		fmt.Fprintf(w, "fit y = %s + %s*x  r %s\n", formatFloat(d.Fit.Intercept),
			formatFloat(d.Fit.Slope), formatFloat(d.Fit.Correlation))
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}
