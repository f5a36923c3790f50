package overtraining

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/biopeak/analytics/internal/telemetry/metrics"
	"github.com/biopeak/analytics/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

type batchActivitiesRepo interface {
	activitiesLister
	ActiveUserIDs(ctx context.Context, since time.Time) ([]string, error)
}

type batchScoresRepo interface {
	scoresRepo
	InsertBatchLog(ctx context.Context, batchLog BatchLog) error
}

type BatchParams struct {
	// users scored in parallel before the next chunk starts
	BatchSize           int
	InterBatchDelay     time.Duration
	DaysActiveThreshold int
}

// BatchRunner scores all recently active users in parallel chunks,
// with a pause between chunks to keep database pressure bounded.
type BatchRunner struct {
	activities     batchActivitiesRepo
	repo           batchScoresRepo
	metricsManager *metrics.Manager
	params         BatchParams
}

func NewBatchRunner(
	activities batchActivitiesRepo,
	repo batchScoresRepo,
	metricsManager *metrics.Manager,
	params BatchParams,
) *BatchRunner {
	if params.BatchSize < 1 {
		params.BatchSize = 1
	}
	return &BatchRunner{
		activities:     activities,
		repo:           repo,
		metricsManager: metricsManager,
		params:         params,
	}
}

// up to this many per-user errors end up in the run log row
const maxLoggedUserErrors = 100

func (br *BatchRunner) Run(ctx context.Context) (BatchLog, error) {
	return br.RunWithParams(ctx, br.params)
}

// RunWithParams runs one batch with the given chunking parameters, falling
// back to the configured ones for values left at zero.
func (br *BatchRunner) RunWithParams(ctx context.Context, params BatchParams) (_ BatchLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "overtraining.batch.run")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if params.BatchSize < 1 {
		params.BatchSize = br.params.BatchSize
	}
	if params.DaysActiveThreshold < 1 {
		params.DaysActiveThreshold = br.params.DaysActiveThreshold
	}

	startedAt := time.Now()
	activeSince := startedAt.AddDate(0, 0, -params.DaysActiveThreshold)
	userIDs, err := br.activities.ActiveUserIDs(ctx, activeSince)
	if err != nil {
		br.logFailedRun(ctx, startedAt)
		return BatchLog{}, fmt.Errorf("get active users: %w", err)
	}

	log.Debugf("overtraining batch: scoring %d users in chunks of %d", len(userIDs), params.BatchSize)

	var processed, failed int
	var userErrors []BatchUserError
	for chunkStart := 0; chunkStart < len(userIDs); chunkStart += params.BatchSize {
		chunkEnd := chunkStart + params.BatchSize
		if chunkEnd > len(userIDs) {
			chunkEnd = len(userIDs)
		}
		chunk := userIDs[chunkStart:chunkEnd]

		chunkErrs := make([]error, len(chunk))
		var wg sync.WaitGroup
		for i, userID := range chunk {
			wg.Add(1)
			go func(i int, userID string) {
				defer wg.Done()
				chunkErrs[i] = br.scoreUser(ctx, userID, startedAt)
			}(i, userID)
		}
		wg.Wait()

		for i, chunkErr := range chunkErrs {
			if chunkErr != nil {
				failed++
				if len(userErrors) < maxLoggedUserErrors {
					userErrors = append(userErrors, BatchUserError{
						UserID: chunk[i],
						Error:  chunkErr.Error(),
					})
				}
				log.Errorf("overtraining batch, score user %s: %s", chunk[i], chunkErr)
			} else {
				processed++
			}
		}

		if chunkEnd < len(userIDs) && params.InterBatchDelay > 0 {
			select {
			case <-ctx.Done():
				br.logFailedRun(ctx, startedAt)
				return BatchLog{}, ctx.Err()
			case <-time.After(params.InterBatchDelay):
			}
		}
	}

	finishedAt := time.Now()
	batchLog := BatchLog{
		Status:         BatchStatusCompleted,
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
		UsersProcessed: processed,
		UsersFailed:    failed,
		Errors:         userErrors,
		DurationMillis: finishedAt.Sub(startedAt).Milliseconds(),
	}
	if err := br.repo.InsertBatchLog(ctx, batchLog); err != nil {
		return BatchLog{}, err
	}

	br.metricsManager.CounterBatchRuns.Inc()
	br.metricsManager.HistBatchRunDuration.Observe(batchLog.FinishedAt.Sub(batchLog.StartedAt).Seconds())

	log.Debugf(
		"overtraining batch done in %s: %d processed, %d failed",
		batchLog.FinishedAt.Sub(batchLog.StartedAt), processed, failed,
	)
	return batchLog, nil
}

// logFailedRun leaves an audit row behind when the run never got to the end.
// The insert may outlive a cancelled run context.
func (br *BatchRunner) logFailedRun(ctx context.Context, startedAt time.Time) {
	finishedAt := time.Now()
	failedLog := BatchLog{
		Status:         BatchStatusFailed,
		StartedAt:      startedAt,
		FinishedAt:     finishedAt,
		DurationMillis: finishedAt.Sub(startedAt).Milliseconds(),
	}
	if err := br.repo.InsertBatchLog(context.WithoutCancel(ctx), failedLog); err != nil {
		log.Errorf("overtraining batch, log failed run: %s", err)
	}
}

// StartTicker runs the batch periodically until the context is cancelled.
func (br *BatchRunner) StartTicker(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Debugln("overtraining batch ticker stopped")
				return
			case <-ticker.C:
				if _, err := br.Run(ctx); err != nil {
					log.Errorf("overtraining batch ticker run: %s", err)
				}
			}
		}
	}()
}

func (br *BatchRunner) scoreUser(ctx context.Context, userID string, now time.Time) error {
	since := now.AddDate(0, 0, -30)
	activities, err := br.activities.ListForUser(ctx, userID, &since)
	if err != nil {
		return fmt.Errorf("list activities: %w", err)
	}

	risk := Score(activities, now)
	br.metricsManager.CounterRiskScores.Inc()

	if err := br.repo.InsertScore(ctx, userID, risk, now); err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}
