package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"promptchart/internal/app"
	"promptchart/internal/worker"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the background job worker",
	Long:  `Starts the Asynq worker process that runs queued analyses (batch and POST /api/analyze/async).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get application context: %w", err)
		}

		if err := runWorker(appInstance); err != nil {
			log.Errorf("Worker exited with error: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// runWorker initializes and runs the Asynq worker server.
func runWorker(appInstance *app.App) error {
	cfg := appInstance.Config
	if !cfg.QueueEnabled() {
		return fmt.Errorf("worker needs redis.address and database.dsn to be configured")
	}

	redisOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      cfg.Worker.Queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.WithFields(log.Fields{
					"task_type": task.Type(),
					"retry":     retried,
					"max_retry": maxRetry,
				}).Errorf("Asynq task failed: %v", err)
			}),
			Logger: log.StandardLogger(),
		},
	)

	mux := asynq.NewServeMux()
	worker.RegisterHandlers(mux, worker.AnalysisDeps{Analyzer: appInstance.AnalysisService})

	log.Infof("Starting Asynq worker server (Concurrency: %d, Queues: %v)...", cfg.Worker.Concurrency, cfg.Worker.Queues)
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("failed to start Asynq server: %w", err)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	log.Info("Shutdown signal received. Initiating graceful shutdown...")
	srv.Shutdown()

	log.Info("Worker shutdown complete.")
	return nil
}
