package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/flashdeck/internal/session"
)

type startSessionRequest struct {
	Mode     string `json:"mode" validate:"omitempty,oneof=spaced sequential"`
	MaxCards int    `json:"max_cards" validate:"gte=0,lte=500"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req startSessionRequest
	if err := decodeJSON(r, &req, true); err != nil {
		handleError(w, r, err)
		return
	}

	snap, err := s.StudyService.Start(r.Context(), deckID, session.ParseMode(req.Mode), req.MaxCards)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Get)
}

func (s *Server) handleFlipSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Flip)
}

func (s *Server) handleSkipSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Skip)
}

func (s *Server) handlePreviousSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Previous)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.StudyService.Finish)
}

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, action func(context.Context, string) (*session.Snapshot, error)) {
	snap, err := action(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleAnswerSession(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.StudyService.Answer(r.Context(), chi.URLParam(r, "sid"), *req.IsCorrect, req.responseTime())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
