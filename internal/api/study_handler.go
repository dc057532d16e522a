package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/davrell/mnemo-api/internal/api/middleware"
	"github.com/davrell/mnemo-api/internal/api/shared"
	"github.com/davrell/mnemo-api/internal/domain"
	"github.com/davrell/mnemo-api/internal/service/progress"
	"github.com/davrell/mnemo-api/internal/service/study"
)

// StudyHandler handles the study-session endpoints.
type StudyHandler struct {
	studyService *study.Service
	validator    *validator.Validate
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(studyService *study.Service) *StudyHandler {
	return &StudyHandler{
		studyService: studyService,
		validator:    validator.New(),
	}
}

// StartSession handles POST /sessions.
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req StartSessionRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	session, err := h.studyService.StartSession(r.Context(), userID, study.StartSessionRequest{
		DeckID:                req.DeckID,
		LessonID:              req.LessonID,
		Mode:                  domain.StudyMode(req.Mode),
		TargetCards:           req.TargetCards,
		TargetTimeMinutes:     req.TargetTimeMinutes,
		BreakRemindersEnabled: req.BreakRemindersEnabled,
		BreakIntervalMinutes:  req.BreakIntervalMinutes,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewSessionResponse(session))
}

// GetSession handles GET /sessions/{id}.
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.GetSession(r.Context(), sessionID, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewSessionResponse(session))
}

// ListActiveSessions handles GET /sessions.
func (h *StudyHandler) ListActiveSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	sessions, err := h.studyService.ListActiveSessions(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		responses = append(responses, NewSessionResponse(session))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// SubmitAnswer handles POST /sessions/{id}/answers.
func (h *StudyHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.studyService.SubmitAnswer(r.Context(), sessionID, userID, study.AnswerRequest{
		CardID:       req.CardID,
		Quality:      req.Quality,
		ResponseTime: req.ResponseTime,
		AnswerText:   req.AnswerText,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewAnswerResponse(result))
}

// TakeBreak handles POST /sessions/{id}/break.
func (h *StudyHandler) TakeBreak(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	var req BreakRequest
	if err := DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.studyService.TakeBreak(r.Context(), sessionID, userID, req.DurationMinutes)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BreakResponse{
		Session:    NewSessionResponse(result.Session),
		StartedAt:  result.StartedAt,
		ResumeAt:   result.ResumeAt,
		BreakCount: result.BreakCount,
	})
}

// Resume handles POST /sessions/{id}/resume.
func (h *StudyHandler) Resume(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.Resume(r.Context(), sessionID, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewSessionResponse(session))
}

// CompleteSession handles POST /sessions/{id}/complete.
func (h *StudyHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	// The body is optional; an absent completion type defaults to manual.
	var req CompleteSessionRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return
		}
		if err := h.validator.Struct(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
			return
		}
	}

	summary, err := h.studyService.CompleteSession(r.Context(), sessionID, userID, req.CompletionType)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewCompletionResponse(summary))
}

// AbandonSession handles POST /sessions/{id}/abandon.
func (h *StudyHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.AbandonSession(r.Context(), sessionID, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewSessionResponse(session))
}

// GetProgress handles GET /sessions/{id}/progress.
func (h *StudyHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := h.sessionRequest(w, r)
	if !ok {
		return
	}

	session, err := h.studyService.GetSession(r.Context(), sessionID, userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progress.Snapshot(session, time.Now().UTC()))
}

// sessionRequest extracts the authenticated user and the session ID from the
// URL, writing the error response itself on failure.
func (h *StudyHandler) sessionRequest(
	w http.ResponseWriter,
	r *http.Request,
) (userID, sessionID uuid.UUID, ok bool) {
	userID, ok = middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}
