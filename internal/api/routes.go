package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(apiHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", s.handleListDecks)
		r.Post("/", s.handleCreateDeck)
		r.Post("/import", s.handleImportDeck)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetDeck)
			r.Put("/", s.handleUpdateDeck)
			r.Delete("/", s.handleDeleteDeck)
			r.Get("/stats", s.handleDeckStats)
			r.Get("/due", s.handleDueCards)
			r.Get("/performance", s.handleDeckPerformance)
			r.Get("/export", s.handleExportDeck)
			r.Get("/cards", s.handleListCards)
			r.Post("/cards", s.handleCreateCard)
			r.Get("/sessions", s.handleListSessions)
			r.Post("/sessions", s.handleStartSession)
		})
	})

	r.Route("/cards/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetCard)
		r.Put("/", s.handleUpdateCard)
		r.Delete("/", s.handleDeleteCard)
		r.Post("/review", s.handleReviewCard)
		r.Post("/reset", s.handleResetCard)
		r.Get("/history", s.handleCardHistory)
	})

	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Get("/", s.handleGetSession)
		r.Post("/flip", s.handleFlipSession)
		r.Post("/answer", s.handleAnswerSession)
		r.Post("/skip", s.handleSkipSession)
		r.Post("/previous", s.handlePreviousSession)
		r.Post("/finish", s.handleFinishSession)
	})

	return r
}
