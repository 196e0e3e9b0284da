package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetchart-go/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload and history API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = state.cfg.Server.Addr
			}
			if state.cfg.Server.AuthToken == "" {
				state.log.Warn("SHEETCHART_AUTH_TOKEN is not set; the API is open")
			}

			s := server.New(state.history, server.Options{
				AuthToken:      state.cfg.Server.AuthToken,
				MaxUploadBytes: state.cfg.MaxUploadBytes(),
				Parse:          state.cfg.ParseOptions(),
				Logger:         state.log,
				SessionTTL:     state.cfg.Server.SessionTTL,
				MaxSessions:    state.cfg.Server.MaxSessions,
			})
			srv := &http.Server{
				Addr:              addr,
				Handler:           s.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       60 * time.Second,
				WriteTimeout:      60 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				state.log.Info("listening on %s", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			state.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SHEETCHART_ADDR)")
	return cmd
}
