package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"promptchart/internal/apihandlers"
)

var (
	serveAddr string // Listen address
	servePort string // Listen port
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analysis HTTP API",
	Long: `Starts an HTTP server exposing POST /api/analyze, the queued and history
endpoints, and optionally a static chart UI (server.static_dir).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}
		cfg := appInstance.Config
		if cmd.Flags().Changed("addr") {
			cfg.Server.Addr = serveAddr
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}

		gin.SetMode(cfg.Server.Mode)
		router := apihandlers.NewRouter(apihandlers.NewAPIHandler(appInstance), apihandlers.RouterOptions{
			CORSOrigins: cfg.Server.CORSOrigins,
			StaticDir:   cfg.Server.StaticDir,
		})

		srv := &http.Server{
			Addr:              cfg.ListenAddr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.WithFields(log.Fields{
				"addr":     srv.Addr,
				"provider": appInstance.CompletionService.Name(),
				"history":  cfg.HistoryEnabled(),
				"queue":    cfg.QueueEnabled(),
			}).Info("Starting API server")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to run API server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutdown signal received, draining connections...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info("API server stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (overrides server.addr)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides server.port)")
}
