package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biopeak/analytics/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
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

func (r *Repo) Add(ctx context.Context, activity Activity, samples *Samples) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", activity.UserID))
	span.SetAttributes(attribute.String("activity.type", activity.Type))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	err = tx.QueryRow(
		ctx,
		`INSERT INTO activity
				(user_id, type, started_at, duration_seconds, distance_meters, calories, avg_heart_rate, max_heart_rate, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id;`,
		activity.UserID, activity.Type, activity.StartedAt, activity.DurationSeconds,
		activity.DistanceMeters, activity.Calories, activity.AvgHeartRate, activity.MaxHeartRate,
		activity.CreatedAt,
	).Scan(&activity.ID)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}

	if samples != nil && len(samples.Distances) > 0 {
		if _, err = tx.Exec(
			ctx,
			`INSERT INTO activity_sample (activity_id, distances, times, heart_rates)
				VALUES ($1, $2, $3, $4);`,
			activity.ID, samples.Distances, samples.Times, samples.HeartRates,
		); err != nil {
			return nil, fmt.Errorf("insert samples: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.String("activity.id", activity.ID))
	return &activity, nil
}

func (r *Repo) Get(ctx context.Context, id string) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("activity.id", id))

	var a Activity
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, type, started_at, duration_seconds, distance_meters, calories, avg_heart_rate, max_heart_rate, created_at
			FROM activity WHERE id = $1;`,
		id,
	).Scan(
		&a.ID, &a.UserID, &a.Type, &a.StartedAt, &a.DurationSeconds,
		&a.DistanceMeters, &a.Calories, &a.AvgHeartRate, &a.MaxHeartRate, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// ListForUser returns the activities of the given user, newest first.
// When since is non-nil, only activities started at or after it are returned.
func (r *Repo) ListForUser(ctx context.Context, userID string, since *time.Time) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.listForUser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))
	if since != nil {
		span.SetAttributes(attribute.String("since", since.String()))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, type, started_at, duration_seconds, distance_meters, calories, avg_heart_rate, max_heart_rate, created_at
			FROM activity
			WHERE user_id = $1
			AND ($2::timestamptz IS NULL OR started_at >= $2)
			ORDER BY started_at DESC;`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	activities, err := r.rows2activities(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2activities: %w", err)
	}
	return activities, nil
}

func (r *Repo) SamplesForActivity(ctx context.Context, activityID string) (_ *Samples, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.samples")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("activity.id", activityID))

	s := Samples{ActivityID: activityID}
	err = r.db.QueryRow(
		ctx,
		`SELECT distances, times, heart_rates FROM activity_sample WHERE activity_id = $1;`,
		activityID,
	).Scan(&s.Distances, &s.Times, &s.HeartRates)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSamplesNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// ActiveUserIDs returns the IDs of users with at least one activity
// started at or after the given cutoff.
func (r *Repo) ActiveUserIDs(ctx context.Context, since time.Time) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activity.activeUserIds")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("since", since.String()))

	rows, err := r.db.Query(
		ctx,
		`SELECT DISTINCT user_id FROM activity WHERE started_at >= $1 ORDER BY user_id;`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	if userIDs == nil {
		userIDs = make([]string, 0)
	}

	span.SetAttributes(attribute.Int("users.count", len(userIDs)))
	return userIDs, nil
}

func (r *Repo) rows2activities(rows pgx.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Type, &a.StartedAt, &a.DurationSeconds,
			&a.DistanceMeters, &a.Calories, &a.AvgHeartRate, &a.MaxHeartRate, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}

	if activities == nil {
		activities = make([]Activity, 0)
	}

	return activities, nil
}
