package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/codec"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/export"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/history"
)

// historyRow is the JSON form of a listed entry. The payload is left out.
type historyRow struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Size  int    `json:"size"`
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage past uploads",
	}
	cmd.AddCommand(
		newHistoryListCmd(),
		newHistoryLatestCmd(),
		newHistoryDeleteCmd(),
		newHistoryClearCmd(),
		newHistoryReplayCmd(),
		newHistoryDownloadCmd(),
	)
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var filter, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := history.ParseFilter(filter)
			if err != nil {
				return err
			}
			listed := state.history.List(f, search)

			rows := make([]historyRow, len(listed))
			for i, l := range listed {
				rows[i] = historyRow{
					Index: l.Index,
					Name:  l.Entry.Name,
					Date:  formatDate(l.Entry.Date),
					Size:  codec.DecodedLen(l.Entry.Payload),
				}
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no uploads")
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(borderStyle).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row != table.HeaderRow && col == 0 {
						return dimStyle
					}
					return cellStyleFunc(row, col)
				}).
				Headers("#", "NAME", "DATE", "SIZE")
			for _, r := range rows {
				t.Row(strconv.Itoa(r.Index), r.Name, r.Date, humanSize(r.Size))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "Date filter: all, today or yesterday")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive name search")
	return cmd
}

func newHistoryLatestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, ok := state.history.Latest()
			if !ok {
				return fmt.Errorf("history is empty")
			}
			row := historyRow{
				Index: state.history.Len() - 1,
				Name:  e.Name,
				Date:  formatDate(e.Date),
				Size:  codec.DecodedLen(e.Payload),
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), row)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d  %s  %s\n", row.Index, row.Name, row.Date)
			return nil
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete INDEX",
		Short: "Delete one upload by its index in the full list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			return state.history.DeleteAt(index)
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every upload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return state.history.ClearAll()
		},
	}
}

func newHistoryReplayCmd() *cobra.Command {
	var sel selectionFlags
	cmd := &cobra.Command{
		Use:   "replay INDEX",
		Short: "Reload an upload and print its chart series without recording it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			c := newController(false)
			if err := replayEntry(cmd.Context(), c, index); err != nil {
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
	return cmd
}

func newHistoryDownloadCmd() *cobra.Command {
	var outputPath string
	cmd := &cobra.Command{
		Use:   "download INDEX",
		Short: "Write the original bytes of an upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[0])
			if err != nil {
				return err
			}
			e, ok := state.history.Get(index)
			if !ok {
				return fmt.Errorf("history entry %d does not exist", index)
			}
			d, err := export.Original(e.Name, e.Payload)
			if err != nil {
				return err
			}
			if outputPath == "" {
				outputPath = d.Name
			}
			return writeOutput(cmd.OutOrStdout(), outputPath, d.Data)
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: the original file name)")
	return cmd
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid index: %s", s)
	}
	return index, nil
}

func humanSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
