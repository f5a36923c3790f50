package overtraining

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/biopeak/analytics/internal/activity"
	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/telemetry/metrics"
	"github.com/biopeak/analytics/internal/telemetry/tracing"
	"github.com/biopeak/analytics/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=overtraining_mocks_test.go -package=overtraining_test

type activitiesLister interface {
	ListForUser(ctx context.Context, userID string, since *time.Time) ([]activity.Activity, error)
}

type scoresRepo interface {
	InsertScore(ctx context.Context, userID string, risk Risk, calculatedAt time.Time) error
}

type RiskRequest struct {
	UserID string `json:"userId"`
	Today  string `json:"today,omitempty"`
}

// BatchRequest optionally overrides the configured chunking parameters
// for a single run.
type BatchRequest struct {
	BatchSize           int `json:"batchSize,omitempty"`
	DaysActiveThreshold int `json:"daysActiveThreshold,omitempty"`
}

type Handler struct {
	activities     activitiesLister
	repo           scoresRepo
	batchRunner    *BatchRunner
	metricsManager *metrics.Manager
}

func NewHandler(
	activities activitiesLister,
	repo scoresRepo,
	batchRunner *BatchRunner,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		activities:     activities,
		repo:           repo,
		batchRunner:    batchRunner,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleRisk(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.overtraining.risk")
	defer span.End()

	var req RiskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("overtraining risk, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "risk calculation failed", http.StatusBadRequest)
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

	since := today.AddDate(0, 0, -30)
	activities, err := handler.activities.ListForUser(ctx, req.UserID, &since)
	if err != nil {
		log.Errorf("overtraining risk, list activities for user [%s]: %s", req.UserID, err)
		pkg.WriteJSONError(w, "risk calculation failed", http.StatusInternalServerError)
		return
	}

	risk := Score(activities, today)
	handler.metricsManager.CounterRiskScores.Inc()

	if err := handler.repo.InsertScore(ctx, req.UserID, risk, today); err != nil {
		log.Errorf("overtraining risk, save score for user [%s]: %s", req.UserID, err)
		pkg.WriteJSONError(w, "failed to save risk score", http.StatusInternalServerError)
		return
	}

	riskJson, err := json.Marshal(risk)
	if err != nil {
		log.Errorf("overtraining risk, marshal response: %s", err)
		pkg.WriteJSONError(w, "risk calculation failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, riskJson, http.StatusOK)
}

// HandleBatch runs the scoring batch for all recently active users.
// The auth middleware requires the internal service secret for this route.
func (handler *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.overtraining.batch")
	defer span.End()

	// an empty body runs with the configured parameters
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Tracef("overtraining batch, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "batch run failed", http.StatusBadRequest)
		return
	}

	params := handler.batchRunner.params
	if req.BatchSize > 0 {
		params.BatchSize = req.BatchSize
	}
	if req.DaysActiveThreshold > 0 {
		params.DaysActiveThreshold = req.DaysActiveThreshold
	}

	batchLog, err := handler.batchRunner.RunWithParams(ctx, params)
	if err != nil {
		log.Errorf("overtraining batch run: %s", err)
		pkg.WriteJSONError(w, "batch run failed", http.StatusInternalServerError)
		return
	}

	batchLogJson, err := json.Marshal(batchLog)
	if err != nil {
		log.Errorf("overtraining batch, marshal response: %s", err)
		pkg.WriteJSONError(w, "batch run failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, batchLogJson, http.StatusOK)
}
