package overtraining

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/biopeak/analytics/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	BatchStatusCompleted = "completed"
	BatchStatusFailed    = "failed"
)

// BatchUserError records which user a batch run failed on and why.
type BatchUserError struct {
	UserID string `json:"userId"`
	Error  string `json:"error"`
}

// BatchLog is one row of the batch run audit trail.
type BatchLog struct {
	ID             int              `json:"id"`
	Status         string           `json:"status"`
	StartedAt      time.Time        `json:"startedAt"`
	FinishedAt     time.Time        `json:"finishedAt"`
	UsersProcessed int              `json:"usersProcessed"`
	UsersFailed    int              `json:"usersFailed"`
	Errors         []BatchUserError `json:"errors,omitempty"`
	DurationMillis int64            `json:"durationMs"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) InsertScore(ctx context.Context, userID string, risk Risk, calculatedAt time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.overtraining.insertScore")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))
	span.SetAttributes(attribute.Int("score", risk.Score))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO overtraining_score
				(user_id, score, level, factors, recommendation, calculated_at)
				VALUES ($1, $2, $3, $4, $5, $6);`,
		userID, risk.Score, risk.Level, risk.Factors, risk.Recommendation, calculatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert overtraining score: %w", err)
	}

	return nil
}

func (r *Repo) InsertBatchLog(ctx context.Context, batchLog BatchLog) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.overtraining.insertBatchLog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userErrorsJson, err := json.Marshal(batchLog.Errors)
	if err != nil {
		return fmt.Errorf("marshal batch user errors: %w", err)
	}

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO overtraining_batch_log
				(status, started_at, finished_at, users_processed, users_failed, user_errors, duration_ms)
				VALUES ($1, $2, $3, $4, $5, $6, $7);`,
		batchLog.Status, batchLog.StartedAt, batchLog.FinishedAt,
		batchLog.UsersProcessed, batchLog.UsersFailed, userErrorsJson, batchLog.DurationMillis,
	)
	if err != nil {
		return fmt.Errorf("insert batch log: %w", err)
	}

	return nil
}
