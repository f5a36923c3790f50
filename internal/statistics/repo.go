package statistics

import (
	"context"
	"fmt"
	"time"

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

func (r *Repo) Upsert(ctx context.Context, metrics Metrics, calculatedAt time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.statistics.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", metrics.UserID))
	span.SetAttributes(attribute.String("activity.id", metrics.ActivityID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO statistics_metrics
				(user_id, activity_id, total_distance_km, total_time_minutes, average_pace_min_km,
				 average_heart_rate, max_heart_rate, heart_rate_std_dev, heart_rate_cv_percent,
				 pace_std_dev, pace_cv_percent, calculated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (user_id, activity_id) DO UPDATE SET
				total_distance_km = EXCLUDED.total_distance_km,
				total_time_minutes = EXCLUDED.total_time_minutes,
				average_pace_min_km = EXCLUDED.average_pace_min_km,
				average_heart_rate = EXCLUDED.average_heart_rate,
				max_heart_rate = EXCLUDED.max_heart_rate,
				heart_rate_std_dev = EXCLUDED.heart_rate_std_dev,
				heart_rate_cv_percent = EXCLUDED.heart_rate_cv_percent,
				pace_std_dev = EXCLUDED.pace_std_dev,
				pace_cv_percent = EXCLUDED.pace_cv_percent,
				calculated_at = EXCLUDED.calculated_at;`,
		metrics.UserID, metrics.ActivityID, metrics.TotalDistanceKM, metrics.TotalTimeMinutes,
		metrics.AveragePaceMinKM, metrics.AverageHeartRate, metrics.MaxHeartRate,
		metrics.HeartRateStdDev, metrics.HeartRateCVPercent,
		metrics.PaceStdDev, metrics.PaceCVPercent, calculatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert statistics metrics: %w", err)
	}

	return nil
}
