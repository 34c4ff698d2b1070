// Package serve runs the HTTP API server
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rferreira/meubolso/cmd/root"
	"rferreira/meubolso/internal/logging"

	"github.com/spf13/cobra"
)

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start the HTTP API server and block until interrupted. SIGINT and SIGTERM trigger a graceful shutdown.`,
	RunE:  serveFunc,
}

func serveFunc(cmd *cobra.Command, args []string) error {
	if root.AppContainer == nil {
		return fmt.Errorf("container not initialized")
	}

	cfg := root.AppContainer.GetConfig()
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      root.AppContainer.GetServer().Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		root.Log.Info("HTTP server listening",
			logging.Field{Key: "addr", Value: cfg.Server.Addr})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-stop:
		root.Log.Info("Shutting down",
			logging.Field{Key: "signal", Value: sig.String()})

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			root.Log.Warn("Graceful shutdown failed, closing",
				logging.Field{Key: "error", Value: err.Error()})
			_ = srv.Close()
		}
	}

	root.Log.Info("Server stopped")
	return nil
}
