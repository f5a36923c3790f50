package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/telemetry/metrics"
	"github.com/biopeak/analytics/internal/telemetry/tracing"
	"github.com/biopeak/analytics/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=activity_mocks_test.go -package=activity_test

type activitiesRepo interface {
	Add(ctx context.Context, activity Activity, samples *Samples) (*Activity, error)
	ListForUser(ctx context.Context, userID string, since *time.Time) ([]Activity, error)
}

type AddActivityRequest struct {
	Activity
	Samples *Samples `json:"samples,omitempty"`
}

type ListResponse struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}

type Handler struct {
	repo           activitiesRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo activitiesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var req AddActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("new activity, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "add activity failed", http.StatusBadRequest)
		return
	}

	if req.UserID == "" || req.Type == "" {
		pkg.WriteJSONError(w, "error, user id or activity type empty", http.StatusBadRequest)
		return
	}
	if req.DurationSeconds <= 0 {
		pkg.WriteJSONError(w, "error, duration must be positive", http.StatusBadRequest)
		return
	}
	if req.Samples != nil {
		if len(req.Samples.Distances) != len(req.Samples.Times) {
			pkg.WriteJSONError(w, "error, distance and time streams length mismatch", http.StatusBadRequest)
			return
		}
		if len(req.Samples.HeartRates) > 0 && len(req.Samples.HeartRates) != len(req.Samples.Times) {
			pkg.WriteJSONError(w, "error, heart rate stream length mismatch", http.StatusBadRequest)
			return
		}
	}

	if callerID := auth.UserIDFromContext(ctx); callerID != req.UserID {
		pkg.WriteJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	if req.StartedAt.IsZero() {
		req.StartedAt = req.CreatedAt
	}

	addedActivity, err := handler.repo.Add(ctx, req.Activity, req.Samples)
	if err != nil {
		log.Errorf("failed to add new activity [%s] for user [%s]: %s", req.Type, req.UserID, err)
		pkg.WriteJSONError(w, "error, failed to add new activity", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterActivitiesIngested.Inc()

	addedActivityJson, err := json.Marshal(addedActivity)
	if err != nil {
		log.Errorf("failed to marshal new activity: %s", err)
		pkg.WriteJSONError(w, "error, failed to add new activity", http.StatusInternalServerError)
		return
	}

	log.Debugf("new activity added: %s", addedActivity.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedActivityJson, http.StatusCreated)
}

func (handler *Handler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activity.listForUser")
	defer span.End()

	vars := mux.Vars(r)
	userID := vars["userID"]
	if userID == "" {
		pkg.WriteJSONError(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	if callerID := auth.UserIDFromContext(ctx); callerID != userID {
		pkg.WriteJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var since *time.Time
	if sinceParam := r.URL.Query().Get("since"); sinceParam != "" {
		sinceTime, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			pkg.WriteJSONError(w, "error, invalid since param", http.StatusBadRequest)
			return
		}
		since = &sinceTime
	}

	activities, err := handler.repo.ListForUser(ctx, userID, since)
	if err != nil {
		log.Errorf("failed to list activities for user [%s]: %s", userID, err)
		pkg.WriteJSONError(w, "error, failed to list activities", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListResponse{
		Activities: activities,
		Total:      len(activities),
	})
	if err != nil {
		log.Errorf("failed to marshal activities list: %s", err)
		pkg.WriteJSONError(w, "error, failed to list activities", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
