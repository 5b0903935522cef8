package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/vstojkovic/repforge/internal/telemetry/metrics"
	"github.com/vstojkovic/repforge/internal/telemetry/tracing"
	"github.com/vstojkovic/repforge/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=recovery_test

type insightsProvider interface {
	Insights(ctx context.Context, userID string) ([]BodyPartInsight, error)
}

type Handler struct {
	analyzer       insightsProvider
	feedback       feedbackRepo
	metricsManager *metrics.Manager
}

func NewHandler(
	analyzer insightsProvider,
	feedback feedbackRepo,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		analyzer:       analyzer,
		feedback:       feedback,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recovery.summary")
	defer span.End()

	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	insights, err := handler.analyzer.Insights(ctx, userID)
	if err != nil {
		log.Errorf("failed to derive recovery insights for user [%s]: %s", userID, err)
		http.Error(w, "failed to get recovery summary", http.StatusInternalServerError)
		return
	}

	summaryJson, err := json.Marshal(Summarize(insights))
	if err != nil {
		log.Errorf("failed to marshal recovery summary: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summaryJson, http.StatusOK)
}

func (handler *Handler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recovery.insights")
	defer span.End()

	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	insights, err := handler.analyzer.Insights(ctx, userID)
	if err != nil {
		log.Errorf("failed to derive recovery insights for user [%s]: %s", userID, err)
		http.Error(w, "failed to get recovery insights", http.StatusInternalServerError)
		return
	}

	insightsJson, err := json.Marshal(insights)
	if err != nil {
		log.Errorf("failed to marshal recovery insights: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, insightsJson, http.StatusOK)
}

func (handler *Handler) HandleAddFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recovery.feedback.new")
	defer span.End()

	if r.Header.Get("Content-Type") != "application/json" {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var entry FeedbackEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		log.Tracef("new feedback, unmarshal json params: %s", err)
		http.Error(w, "add feedback failed", http.StatusBadRequest)
		return
	}

	if entry.UserID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}
	if entry.BodyPart == "" {
		http.Error(w, "error, body part empty", http.StatusBadRequest)
		return
	}
	if !entry.Feeling.IsValid() {
		http.Error(w, "error, invalid feeling", http.StatusBadRequest)
		return
	}
	if entry.Intensity != nil && (*entry.Intensity < 1 || *entry.Intensity > 5) {
		http.Error(w, "error, intensity out of range", http.StatusBadRequest)
		return
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	addedEntry, err := handler.feedback.Add(ctx, entry)
	if err != nil {
		log.Errorf("failed to add feedback for user [%s]: %s", entry.UserID, err)
		http.Error(w, "error, failed to add feedback", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterRecoveryFeedback.Inc()

	addedEntryJson, err := json.Marshal(addedEntry)
	if err != nil {
		log.Errorf("failed to marshal new feedback: %s", err)
		http.Error(w, "error, failed to add feedback", http.StatusInternalServerError)
		return
	}

	log.Debugf("new recovery feedback added: %d", addedEntry.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedEntryJson, http.StatusCreated)
}

func (handler *Handler) HandleListFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recovery.feedback.list")
	defer span.End()

	userID := r.URL.Query().Get("user")
	if userID == "" {
		http.Error(w, "error, user id empty", http.StatusBadRequest)
		return
	}

	entries, err := handler.feedback.ListForUser(ctx, userID)
	if err != nil {
		log.Errorf("failed to list feedback for user [%s]: %s", userID, err)
		http.Error(w, "failed to get feedback", http.StatusInternalServerError)
		return
	}

	entriesJson, err := json.Marshal(entries)
	if err != nil {
		log.Errorf("failed to marshal feedback entries: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, entriesJson, http.StatusOK)
}

func (handler *Handler) HandleDeleteFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.recovery.feedback.delete")
	defer span.End()

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.feedback.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrFeedbackNotFound) {
			log.Debugf("feedback entry %d not found", id)
			http.Error(w, "feedback entry not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete feedback entry %d: %s", id, err)
		http.Error(w, "feedback entry not deleted", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"deletedId":`+strconv.Itoa(id)+`}`)
}
