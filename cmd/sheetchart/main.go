// Package main provides the CLI entry point for sheetchart.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetchart-go/internal/config"
	"github.com/ukaji3/sheetchart-go/internal/logging"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/history"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/models"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/storage"
)

var (
	backendFlag string
	dirFlag     string
	jsonOutput  bool
	pretty      bool
)

// app is the state shared by all commands once configuration is loaded.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	storage storage.Storage
	history *history.Store
	cleanup func()
}

var state app

func main() {
	err := newRootCmd().Execute()
	teardown()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetchart",
		Short: "Chart spreadsheet columns and keep a history of uploads",
		Long: `sheetchart reads the first sheet of an xlsx or csv file, builds a chart
series from two of its columns and remembers every upload so it can be
replayed later.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "History backend: file, pebble or memory (default from SHEETCHART_HISTORY_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&dirFlag, "history-dir", "", "History directory (default from SHEETCHART_HISTORY_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(newUploadCmd(), newChartCmd(), newHistoryCmd(), newServeCmd())
	return rootCmd
}

func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if backendFlag != "" {
		cfg.History.Backend = backendFlag
	}
	if dirFlag != "" {
		cfg.History.Dir = dirFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cleanup, err := logging.SetupLogging(cfg.Log.File)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logger := logging.New(logging.ParseLevel(cfg.Log.Level))

	if cfg.History.Backend != storage.BackendMemory {
		if err := os.MkdirAll(cfg.History.Dir, 0755); err != nil {
			cleanup()
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	st, err := storage.Open(cfg.History.Backend, cfg.History.Dir)
	if err != nil {
		cleanup()
		return fmt.Errorf("failed to open history: %w", err)
	}

	state = app{
		cfg:     cfg,
		log:     logger,
		storage: st,
		cleanup: cleanup,
		history: history.Open(st, history.Options{
			Location: cfg.Location,
			Logger:   logger,
			OnChange: func(entries []models.HistoryEntry) {
				logger.Debug("history: %d entries", len(entries))
			},
		}),
	}
	return nil
}

func teardown() {
	if state.storage != nil {
		if err := state.storage.Close(); err != nil {
			state.log.Warn("close history: %v", err)
		}
	}
	if state.cleanup != nil {
		state.cleanup()
	}
	state = app{}
}

// writeJSON prints v to w using the --pretty setting.
func writeJSON(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func formatDate(t time.Time) string {
	return t.In(state.cfg.Location).Format("2006-01-02 15:04:05")
}
