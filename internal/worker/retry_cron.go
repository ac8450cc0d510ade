package worker

// retry_cron.go
// Background goroutine that periodically moves deferred export jobs from the
// retry queue back onto the main queue once their backoff deadline has passed.
// Jobs that are not yet due go back to the retry queue untouched.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// StartRetryCron launches a background goroutine that ticks every 30s and
// re-releases due export retries. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, rdb)
			}
		}
	}()
}

func processRetries(ctx context.Context, rdb *redis.Client) {
	now := time.Now()
	released := 0

	// Bounded batch per tick: jobs pushed back for a later deadline would
	// otherwise be popped again in the same pass.
	for i := 0; i < retryBatchSize; i++ {
		raw, err := rdb.RPop(ctx, QueueClosureExportRetry).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to read retry queue")
			return
		}

		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.Error().Err(err).Msg("retry_cron: malformed retry entry dropped")
			continue
		}
		var payload ExportJobPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			log.Error().Err(err).Msg("retry_cron: malformed retry payload dropped")
			continue
		}

		if payload.NextAttempt.After(now) {
			// Not due yet — put it back.
			if err := rdb.LPush(ctx, QueueClosureExportRetry, raw).Err(); err != nil {
				log.Error().Err(err).Str("closure_id", payload.ClosureID).Msg("retry_cron: failed to requeue deferred job")
			}
			continue
		}

		if err := rdb.LPush(ctx, QueueClosureExport, raw).Err(); err != nil {
			log.Error().Err(err).Str("closure_id", payload.ClosureID).Msg("retry_cron: failed to release job")
			continue
		}
		released++
	}

	if released > 0 {
		log.Info().Int("count", released).Msg("retry_cron: released due export retries")
	}
}
