package gas

import (
	"context"
	"fmt"

	"github.com/biopeak/analytics/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// UpsertSnapshot stores the model output for one user and date,
// replacing any snapshot calculated earlier the same day.
func (r *Repo) UpsertSnapshot(ctx context.Context, result Result) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.gas.upsertSnapshot")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", result.UserID))
	span.SetAttributes(attribute.String("date", result.Date))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO gas_snapshot
				(user_id, calendar_date, fitness, fatigue, performance)
				VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, calendar_date) DO UPDATE SET
				fitness = EXCLUDED.fitness,
				fatigue = EXCLUDED.fatigue,
				performance = EXCLUDED.performance;`,
		result.UserID, result.Date, result.Fitness, result.Fatigue, result.Performance,
	)
	if err != nil {
		return fmt.Errorf("upsert gas snapshot: %w", err)
	}

	return nil
}
