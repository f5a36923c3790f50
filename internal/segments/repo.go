package segments

import (
	"context"
	"fmt"
	"time"

	"github.com/biopeak/analytics/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

// Record is a persisted best 1km result, one per (user, activity).
type Record struct {
	UserID              string    `json:"userId"`
	ActivityID          string    `json:"activityId"`
	PaceMinPerKM        float64   `json:"paceMinPerKm"`
	StartDistanceMeters float64   `json:"startDistanceMeters"`
	EndDistanceMeters   float64   `json:"endDistanceMeters"`
	DurationSeconds     float64   `json:"durationSeconds"`
	ActivityDate        time.Time `json:"activityDate"`
	CreatedAt           time.Time `json:"createdAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Upsert(ctx context.Context, record Record) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.segments.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", record.UserID))
	span.SetAttributes(attribute.String("activity.id", record.ActivityID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO best_segment
				(user_id, activity_id, pace_min_km, start_distance_meters, end_distance_meters, duration_seconds, activity_date, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (user_id, activity_id) DO UPDATE SET
				pace_min_km = EXCLUDED.pace_min_km,
				start_distance_meters = EXCLUDED.start_distance_meters,
				end_distance_meters = EXCLUDED.end_distance_meters,
				duration_seconds = EXCLUDED.duration_seconds,
				activity_date = EXCLUDED.activity_date,
				created_at = EXCLUDED.created_at;`,
		record.UserID, record.ActivityID, record.PaceMinPerKM,
		record.StartDistanceMeters, record.EndDistanceMeters, record.DurationSeconds,
		record.ActivityDate, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert best segment: %w", err)
	}

	return nil
}

// ListForUser returns the saved best segments of the given user, newest activity first.
func (r *Repo) ListForUser(ctx context.Context, userID string) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.segments.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT user_id, activity_id, pace_min_km, start_distance_meters, end_distance_meters, duration_seconds, activity_date, created_at
			FROM best_segment
			WHERE user_id = $1
			ORDER BY activity_date DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	records, err := r.rows2records(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2records: %w", err)
	}
	return records, nil
}

func (r *Repo) rows2records(rows pgx.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.UserID, &rec.ActivityID, &rec.PaceMinPerKM,
			&rec.StartDistanceMeters, &rec.EndDistanceMeters, &rec.DurationSeconds,
			&rec.ActivityDate, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if records == nil {
		records = make([]Record, 0)
	}

	return records, nil
}
