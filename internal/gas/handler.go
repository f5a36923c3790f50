package gas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/biopeak/analytics/internal/activity"
	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/telemetry/metrics"
	"github.com/biopeak/analytics/internal/telemetry/tracing"
	"github.com/biopeak/analytics/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=gas_mocks_test.go -package=gas_test

type activitiesRepo interface {
	ListForUser(ctx context.Context, userID string, since *time.Time) ([]activity.Activity, error)
	ActiveUserIDs(ctx context.Context, since time.Time) ([]string, error)
}

type snapshotsRepo interface {
	UpsertSnapshot(ctx context.Context, result Result) error
}

type EstimateRequest struct {
	UserID string `json:"userId"`
	Today  string `json:"today,omitempty"`
}

// BackfillRequest selects what to backfill. With a user id the snapshots are
// recomputed for every day in [from, to]; without one, today's snapshot is
// recomputed for all recently active users.
type BackfillRequest struct {
	UserID string `json:"userId,omitempty"`
	From   string `json:"from,omitempty"`
	To     string `json:"to,omitempty"`
}

type BackfillResult struct {
	UsersProcessed int    `json:"usersProcessed"`
	UsersFailed    int    `json:"usersFailed"`
	Date           string `json:"date"`
	DurationMillis int64  `json:"durationMs"`
}

type BackfillUserResult struct {
	UserID         string `json:"userId"`
	Days           int    `json:"days"`
	Upserted       int    `json:"upserted"`
	From           string `json:"from"`
	To             string `json:"to"`
	DurationMillis int64  `json:"durationMs"`
}

type HandlerParams struct {
	BatchSize           int
	DaysActiveThreshold int
}

type Handler struct {
	activities     activitiesRepo
	repo           snapshotsRepo
	metricsManager *metrics.Manager
	params         HandlerParams
}

func NewHandler(
	activities activitiesRepo,
	repo snapshotsRepo,
	metricsManager *metrics.Manager,
	params HandlerParams,
) *Handler {
	if params.BatchSize < 1 {
		params.BatchSize = 1
	}
	return &Handler{
		activities:     activities,
		repo:           repo,
		metricsManager: metricsManager,
		params:         params,
	}
}

func (handler *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gas.estimate")
	defer span.End()

	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("gas estimate, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "gas estimate failed", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		pkg.WriteJSONError(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	if callerID := auth.UserIDFromContext(ctx); callerID != req.UserID {
		pkg.WriteJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	today := time.Now()
	if req.Today != "" {
		parsedToday, err := time.Parse("2006-01-02", req.Today)
		if err != nil {
			pkg.WriteJSONError(w, "error, invalid today param", http.StatusBadRequest)
			return
		}
		today = parsedToday
	}

	result, err := handler.estimateAndStore(ctx, req.UserID, today)
	if err != nil {
		log.Errorf("gas estimate for user [%s]: %s", req.UserID, err)
		pkg.WriteJSONError(w, "gas estimate failed", http.StatusInternalServerError)
		return
	}

	resultJson, err := json.Marshal(result)
	if err != nil {
		log.Errorf("gas estimate, marshal response: %s", err)
		pkg.WriteJSONError(w, "gas estimate failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}

// largest [from, to] window a single backfill request may cover
const maxBackfillDays = 366

// HandleBackfill recalculates stored snapshots. With a user id in the body it
// rebuilds that user's daily series over a date range; otherwise it refreshes
// today's snapshot for every recently active user. The auth middleware
// requires the internal service secret here.
func (handler *Handler) HandleBackfill(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.gas.backfill")
	defer span.End()

	// an empty body backfills today for all active users
	var req BackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Tracef("gas backfill, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "backfill failed", http.StatusBadRequest)
		return
	}

	if req.UserID != "" {
		handler.backfillUserRange(ctx, w, req)
		return
	}

	started := time.Now()
	activeSince := started.AddDate(0, 0, -handler.params.DaysActiveThreshold)
	userIDs, err := handler.activities.ActiveUserIDs(ctx, activeSince)
	if err != nil {
		log.Errorf("gas backfill, get active users: %s", err)
		pkg.WriteJSONError(w, "backfill failed", http.StatusInternalServerError)
		return
	}

	var processed, failed int
	for chunkStart := 0; chunkStart < len(userIDs); chunkStart += handler.params.BatchSize {
		chunkEnd := chunkStart + handler.params.BatchSize
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
				_, chunkErrs[i] = handler.estimateAndStore(ctx, userID, started)
			}(i, userID)
		}
		wg.Wait()

		for i, chunkErr := range chunkErrs {
			if chunkErr != nil {
				failed++
				log.Errorf("gas backfill, user %s: %s", chunk[i], chunkErr)
			} else {
				processed++
			}
		}
	}

	backfillResult := BackfillResult{
		UsersProcessed: processed,
		UsersFailed:    failed,
		Date:           started.UTC().Format("2006-01-02"),
		DurationMillis: time.Since(started).Milliseconds(),
	}
	resultJson, err := json.Marshal(backfillResult)
	if err != nil {
		log.Errorf("gas backfill, marshal response: %s", err)
		pkg.WriteJSONError(w, "backfill failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("gas backfill done: %d processed, %d failed", processed, failed)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}

// backfillUserRange rebuilds one user's snapshot series for every day
// in [from, to], both inclusive.
func (handler *Handler) backfillUserRange(ctx context.Context, w http.ResponseWriter, req BackfillRequest) {
	started := time.Now()

	to := started.UTC().Truncate(24 * time.Hour)
	if req.To != "" {
		parsedTo, err := time.Parse("2006-01-02", req.To)
		if err != nil {
			pkg.WriteJSONError(w, "error, invalid to param", http.StatusBadRequest)
			return
		}
		to = parsedTo
	}

	from := to
	if req.From != "" {
		parsedFrom, err := time.Parse("2006-01-02", req.From)
		if err != nil {
			pkg.WriteJSONError(w, "error, invalid from param", http.StatusBadRequest)
			return
		}
		from = parsedFrom
	}

	if from.After(to) {
		pkg.WriteJSONError(w, "error, invalid date range", http.StatusBadRequest)
		return
	}
	if to.Sub(from) > maxBackfillDays*24*time.Hour {
		pkg.WriteJSONError(w, "error, date range too long", http.StatusBadRequest)
		return
	}

	var days, upserted int
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		days++
		if _, err := handler.estimateAndStore(ctx, req.UserID, day); err != nil {
			log.Errorf("gas backfill, user %s day %s: %s", req.UserID, day.Format("2006-01-02"), err)
			continue
		}
		upserted++
	}

	backfillResult := BackfillUserResult{
		UserID:         req.UserID,
		Days:           days,
		Upserted:       upserted,
		From:           from.Format("2006-01-02"),
		To:             to.Format("2006-01-02"),
		DurationMillis: time.Since(started).Milliseconds(),
	}
	resultJson, err := json.Marshal(backfillResult)
	if err != nil {
		log.Errorf("gas backfill, marshal response: %s", err)
		pkg.WriteJSONError(w, "backfill failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("gas backfill for user [%s] done: %d days, %d upserted", req.UserID, days, upserted)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, resultJson, http.StatusOK)
}

func (handler *Handler) estimateAndStore(ctx context.Context, userID string, today time.Time) (Result, error) {
	activities, err := handler.activities.ListForUser(ctx, userID, nil)
	if err != nil {
		return Result{}, fmt.Errorf("list activities: %w", err)
	}

	// activities after the reference date are not part of the model input
	history := activities[:0:0]
	cutoff := today.UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	for _, a := range activities {
		if a.StartedAt.Before(cutoff) {
			history = append(history, a)
		}
	}

	result := Estimate(userID, history, today)
	handler.metricsManager.CounterGasCalculations.Inc()

	if err := handler.repo.UpsertSnapshot(ctx, result); err != nil {
		return Result{}, err
	}
	return result, nil
}
