package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/axellelanca/urlalias/cmd"
	"github.com/axellelanca/urlalias/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// RunServerCmd représente la commande 'run-server' de Cobra.
// C'est le point d'entrée pour lancer le serveur de l'application.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the HTTP API and the expiry monitor.",
	Long: `This command migrates the database, starts the background monitor that
deactivates expired aliases, then serves the HTTP API until SIGINT or SIGTERM.`,
	RunE: func(c *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(c.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if logger.ParseLevel(cmd.Cfg.Log.Level) != slog.LevelDebug {
			gin.SetMode(gin.ReleaseMode)
		}

		a, err := cmd.OpenApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer a.Close()

		monitorDone := make(chan struct{})
		go func() {
			a.Monitor.Start(ctx)
			close(monitorDone)
		}()

		srv := &http.Server{
			Addr:              a.Addr(),
			Handler:           a.Router,
			ReadHeaderTimeout: 5 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			cmd.Logger.Info("starting server", "addr", srv.Addr, "base_url", cmd.Cfg.Server.BaseURL)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
			close(serverErr)
		}()

		select {
		case err := <-serverErr:
			if err != nil {
				stop()
				<-monitorDone
				return fmt.Errorf("server failed: %w", err)
			}
		case <-ctx.Done():
			cmd.Logger.Info("shutdown signal received, stopping server")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		<-monitorDone

		cmd.Logger.Info("server stopped")
		return nil
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
