package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/davrell/mnemo-api/internal/api"
	apimiddleware "github.com/davrell/mnemo-api/internal/api/middleware"
)

// setupRouter builds the HTTP routing table over the application's services.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.authService)
	studyHandler := api.NewStudyHandler(app.studyService)
	analyticsHandler := api.NewAnalyticsHandler(app.analytics)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.tokenService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/sessions", studyHandler.StartSession)
			r.Get("/sessions", studyHandler.ListActiveSessions)
			r.Get("/sessions/{id}", studyHandler.GetSession)
			r.Post("/sessions/{id}/answers", studyHandler.SubmitAnswer)
			r.Post("/sessions/{id}/break", studyHandler.TakeBreak)
			r.Post("/sessions/{id}/resume", studyHandler.Resume)
			r.Post("/sessions/{id}/complete", studyHandler.CompleteSession)
			r.Post("/sessions/{id}/abandon", studyHandler.AbandonSession)
			r.Get("/sessions/{id}/progress", studyHandler.GetProgress)

			r.Get("/analytics/statistics", analyticsHandler.GetStatistics)
			r.Get("/analytics/history", analyticsHandler.GetHistory)
			r.Get("/analytics/srs", analyticsHandler.GetSRSOverview)
			r.Get("/analytics/retention", analyticsHandler.GetRetention)
			r.Get("/analytics/modes", analyticsHandler.GetModeEffectiveness)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
