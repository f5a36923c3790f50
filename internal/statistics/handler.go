package statistics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/biopeak/analytics/internal/activity"
	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/telemetry/metrics"
	"github.com/biopeak/analytics/internal/telemetry/tracing"
	"github.com/biopeak/analytics/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=statistics_mocks_test.go -package=statistics_test

type activitiesGetter interface {
	Get(ctx context.Context, id string) (*activity.Activity, error)
}

type samplesSource interface {
	SamplesForActivity(ctx context.Context, activityID string) (*activity.Samples, error)
}

type metricsRepo interface {
	Upsert(ctx context.Context, metrics Metrics, calculatedAt time.Time) error
}

type CalculateRequest struct {
	ActivityID string `json:"activityId"`
}

type CalculateResponse struct {
	Success bool    `json:"success"`
	Metrics Metrics `json:"metrics"`
}

type Handler struct {
	activities     activitiesGetter
	samples        samplesSource
	repo           metricsRepo
	metricsManager *metrics.Manager
}

func NewHandler(
	activities activitiesGetter,
	samples samplesSource,
	repo metricsRepo,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		activities:     activities,
		samples:        samples,
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.statistics.calculate")
	defer span.End()

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("statistics calculate, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "statistics calculation failed", http.StatusBadRequest)
		return
	}
	if req.ActivityID == "" {
		pkg.WriteJSONError(w, "error, activity id empty", http.StatusBadRequest)
		return
	}

	a, err := handler.activities.Get(ctx, req.ActivityID)
	if errors.Is(err, activity.ErrActivityNotFound) {
		pkg.WriteJSONError(w, "activity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("statistics calculate, get activity %s: %s", req.ActivityID, err)
		pkg.WriteJSONError(w, "statistics calculation failed", http.StatusInternalServerError)
		return
	}

	if callerID := auth.UserIDFromContext(ctx); callerID != a.UserID {
		pkg.WriteJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	samples, err := handler.samples.SamplesForActivity(ctx, req.ActivityID)
	if errors.Is(err, activity.ErrSamplesNotFound) {
		// without streams the summary row still yields distance, time and pace
		samples = nil
	} else if err != nil {
		log.Errorf("statistics calculate, get samples %s: %s", req.ActivityID, err)
		pkg.WriteJSONError(w, "statistics calculation failed", http.StatusInternalServerError)
		return
	}

	activityMetrics := Calculate(*a, samples)
	handler.metricsManager.CounterStatisticsCalculations.Inc()

	if err := handler.repo.Upsert(ctx, activityMetrics, time.Now()); err != nil {
		log.Errorf("statistics calculate, save metrics for activity %s: %s", a.ID, err)
		pkg.WriteJSONError(w, "failed to save statistics metrics", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(CalculateResponse{
		Success: true,
		Metrics: activityMetrics,
	})
	if err != nil {
		log.Errorf("failed to marshal statistics response: %s", err)
		pkg.WriteJSONError(w, "statistics calculation failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
