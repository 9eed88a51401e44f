package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"promptchart/internal/tasks"
)

// AsynqJobClient enqueues analysis tasks on Redis through asynq.
type AsynqJobClient struct {
	client *asynq.Client
}

var _ JobClient = (*AsynqJobClient)(nil)

// RedisOptions is the subset of connection settings the client needs.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
}

func NewAsynqJobClient(opts RedisOptions) (*AsynqJobClient, error) {
	if opts.Address == "" {
		return nil, fmt.Errorf("redis address is required for the job client")
	}
	cli := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return &AsynqJobClient{client: cli}, nil
}

func (jc *AsynqJobClient) Close() error {
	return jc.client.Close()
}

// Enqueue enqueues a task.
func (jc *AsynqJobClient) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if jc.client == nil {
		return nil, fmt.Errorf("AsynqJobClient internal client is not initialized")
	}
	info, err := jc.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		log.WithError(err).WithField("task_type", task.Type()).Error("Failed to enqueue task")
		return nil, err
	}
	log.WithFields(log.Fields{
		"task_type": task.Type(),
		"task_id":   info.ID,
		"queue":     info.Queue,
	}).Debug("Enqueued task")
	return info, nil
}

// EnqueueAnalysis queues a pipeline run for an already recorded analysis.
func (jc *AsynqJobClient) EnqueueAnalysis(ctx context.Context, analysisID uuid.UUID, prompt, variant string) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(tasks.AnalysisPayload{
		AnalysisID: analysisID,
		Prompt:     prompt,
		Variant:    variant,
	})
	if err != nil {
		return nil, fmt.Errorf("encode analysis payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeAnalysisRun, payload)
	info, err := jc.Enqueue(ctx, task,
		asynq.Queue(tasks.QueueAnalysis),
		asynq.TaskID(analysisID.String()),
		asynq.MaxRetry(tasks.MaxRetry),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue analysis %s: %w", analysisID, err)
	}
	return info, nil
}
