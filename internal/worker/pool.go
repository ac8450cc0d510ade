package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueClosureExport      = "jobs:closure_export"
	QueueClosureExportRetry = "jobs:closure_export:retry"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueClosureExport pushes a Z-closure export job to Redis.
func (d *Dispatcher) EnqueueClosureExport(ctx context.Context, payload ExportJobPayload) error {
	return d.enqueue(ctx, QueueClosureExport, "closure_export", payload)
}

// ScheduleRetry parks a failed export on the retry queue with a deadline; the
// retry cron moves it back to the main queue once the deadline passes.
func (d *Dispatcher) ScheduleRetry(ctx context.Context, payload ExportJobPayload, delay time.Duration) error {
	payload.NextAttempt = time.Now().Add(delay)
	return d.enqueue(ctx, QueueClosureExportRetry, "closure_export", payload)
}

// Park sends an exhausted export job to the DLQ for manual inspection.
func (d *Dispatcher) Park(ctx context.Context, payload ExportJobPayload, reason string) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	SendToDLQ(ctx, d.rdb, QueueClosureExport, "closure_export", raw, reason, payload.Attempts)
	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// WorkerHandlers groups the job processors wired at the composition root.
type WorkerHandlers struct {
	Export *ExportWorker
}

// StartWorkerPool launches numWorkers goroutines consuming the export queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *WorkerHandlers, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueueClosureExport).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, handlers *WorkerHandlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	switch job.Type {
	case "closure_export":
		handlers.Export.Process(ctx, job.Payload)
	default:
		log.Warn().Str("type", job.Type).Str("queue", queue).Msg("unknown job type")
	}
}
