package segments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/biopeak/analytics/internal/activity"
	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/telemetry/metrics"
	"github.com/biopeak/analytics/internal/telemetry/tracing"
	"github.com/biopeak/analytics/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=segments_mocks_test.go -package=segments_test

type activitiesGetter interface {
	Get(ctx context.Context, id string) (*activity.Activity, error)
}

type samplesSource interface {
	SamplesForActivity(ctx context.Context, activityID string) (*activity.Samples, error)
}

type segmentsRepo interface {
	Upsert(ctx context.Context, record Record) error
	ListForUser(ctx context.Context, userID string) ([]Record, error)
}

type ScanRequest struct {
	ActivityID string `json:"activityId"`
}

type ScanResponse struct {
	Success     bool         `json:"success"`
	BestSegment *BestSegment `json:"bestSegment"`
	Message     string       `json:"message,omitempty"`
}

type ListSegmentsResponse struct {
	Segments []Record `json:"segments"`
	Total    int      `json:"total"`
}

type Handler struct {
	activities     activitiesGetter
	samples        samplesSource
	repo           segmentsRepo
	metricsManager *metrics.Manager
}

func NewHandler(
	activities activitiesGetter,
	samples samplesSource,
	repo segmentsRepo,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		activities:     activities,
		samples:        samples,
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.segments.scan")
	defer span.End()

	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("best segment scan, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "scan failed", http.StatusBadRequest)
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
		log.Errorf("best segment scan, get activity %s: %s", req.ActivityID, err)
		pkg.WriteJSONError(w, "scan failed", http.StatusInternalServerError)
		return
	}

	if callerID := auth.UserIDFromContext(ctx); callerID != a.UserID {
		pkg.WriteJSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	if a.DistanceMeters < targetSegmentMeters {
		handler.writeScanResponse(w, ScanResponse{
			Success: true,
			Message: "activity shorter than 1km, nothing to scan",
		})
		return
	}

	samples, err := handler.samples.SamplesForActivity(ctx, req.ActivityID)
	if errors.Is(err, activity.ErrSamplesNotFound) {
		pkg.WriteJSONError(w, "no recording streams found for this activity", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("best segment scan, get samples %s: %s", req.ActivityID, err)
		pkg.WriteJSONError(w, "scan failed", http.StatusInternalServerError)
		return
	}

	bestSegment, err := Scan(samples.Distances, samples.Times)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	handler.metricsManager.CounterSegmentScans.Inc()

	if bestSegment == nil {
		handler.writeScanResponse(w, ScanResponse{
			Success: true,
			Message: "no 1km segment found in this activity",
		})
		return
	}

	if err := handler.repo.Upsert(ctx, Record{
		UserID:              a.UserID,
		ActivityID:          a.ID,
		PaceMinPerKM:        bestSegment.PaceMinPerKM,
		StartDistanceMeters: bestSegment.StartDistanceMeters,
		EndDistanceMeters:   bestSegment.EndDistanceMeters,
		DurationSeconds:     bestSegment.DurationSeconds(),
		ActivityDate:        a.StartedAt,
		CreatedAt:           time.Now(),
	}); err != nil {
		log.Errorf("best segment scan, save result for activity %s: %s", a.ID, err)
		pkg.WriteJSONError(w, "failed to save best segment", http.StatusInternalServerError)
		return
	}

	handler.writeScanResponse(w, ScanResponse{
		Success:     true,
		BestSegment: bestSegment,
		Message:     fmt.Sprintf("Best 1km segment: %.3f min/km", bestSegment.PaceMinPerKM),
	})
}

func (handler *Handler) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.segments.listForUser")
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

	records, err := handler.repo.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("failed to list best segments for user [%s]: %s", userID, err)
		pkg.WriteJSONError(w, "error, failed to list best segments", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(ListSegmentsResponse{
		Segments: records,
		Total:    len(records),
	})
	if err != nil {
		log.Errorf("failed to marshal best segments list: %s", err)
		pkg.WriteJSONError(w, "error, failed to list best segments", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) writeScanResponse(w http.ResponseWriter, resp ScanResponse) {
	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("failed to marshal scan response: %s", err)
		pkg.WriteJSONError(w, "scan failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
