package api

import (
	"net/http"
	"strconv"

	"github.com/davrell/mnemo-api/internal/api/middleware"
	"github.com/davrell/mnemo-api/internal/api/shared"
	"github.com/davrell/mnemo-api/internal/service/progress"
)

// AnalyticsHandler handles the historical analytics endpoints.
type AnalyticsHandler struct {
	analytics *progress.Analytics
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analytics *progress.Analytics) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetStatistics handles GET /analytics/statistics.
func (h *AnalyticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	stats, err := h.analytics.GetStatistics(r.Context(), userID, queryInt(r, "days"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to compute statistics", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// GetHistory handles GET /analytics/history.
func (h *AnalyticsHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	entries, err := h.analytics.GetHistory(r.Context(), userID,
		queryInt(r, "days"), queryInt(r, "limit"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to load session history", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, entries)
}

// GetSRSOverview handles GET /analytics/srs.
func (h *AnalyticsHandler) GetSRSOverview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	overview, err := h.analytics.GetSRSOverview(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to compute review workload", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, overview)
}

// GetRetention handles GET /analytics/retention.
func (h *AnalyticsHandler) GetRetention(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	retention, err := h.analytics.GetRetention(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to compute retention", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, retention)
}

// GetModeEffectiveness handles GET /analytics/modes.
func (h *AnalyticsHandler) GetModeEffectiveness(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	results, err := h.analytics.GetModeEffectiveness(r.Context(), userID, queryInt(r, "days"))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to compute mode effectiveness", err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, results)
}

// queryInt parses an optional integer query parameter. Missing or malformed
// values come back as 0, which the services treat as "use the default".
func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
