package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

type cardRequest struct {
	Front      string `json:"front" validate:"required,max=10000"`
	Back       string `json:"back" validate:"required,max=10000"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

func (req cardRequest) card() models.Flashcard {
	return models.Flashcard{
		Front:      req.Front,
		Back:       req.Back,
		Difficulty: models.Difficulty(strings.ToLower(req.Difficulty)),
	}
}

// reviewRequest bounds response_time_ms to one day either way so it always
// fits a time.Duration. Negative times are graded, not rejected.
type reviewRequest struct {
	IsCorrect      *bool `json:"is_correct" validate:"required"`
	ResponseTimeMs int64 `json:"response_time_ms" validate:"gte=-86400000,lte=86400000"`
}

func (req reviewRequest) responseTime() time.Duration {
	return time.Duration(req.ResponseTimeMs) * time.Millisecond
}

type cardListResponse struct {
	Cards []models.Flashcard `json:"cards"`
	Total int                `json:"total"`
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	q := r.URL.Query()
	filter := models.FlashcardFilter{
		DeckID: deckID,
		Search: strings.TrimSpace(q.Get("search")),
		Limit:  limit,
		Offset: offset,
	}
	if d := q.Get("difficulty"); d != "" {
		filter.Difficulty = models.ParseDifficulty(d)
	}

	if _, err := s.DeckService.GetDeck(r.Context(), deckID); err != nil {
		handleError(w, r, err)
		return
	}
	cards, total, err := s.FlashcardService.ListCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cardListResponse{Cards: cards, Total: total})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	card := req.card()
	card.DeckID = deckID
	created, err := s.FlashcardService.CreateCard(r.Context(), card)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.FlashcardService.GetCard(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req cardRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	card := req.card()
	card.ID = id
	updated, err := s.FlashcardService.UpdateCard(r.Context(), card)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.FlashcardService.DeleteCard(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"flashcard_id":     id,
		"is_correct":       *req.IsCorrect,
		"response_time_ms": req.ResponseTimeMs,
	})
	log.Debug("reviewing flashcard")

	review, err := s.FlashcardService.ReviewCard(r.Context(), id, *req.IsCorrect, req.responseTime())
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("flashcard reviewed successfully")
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleResetCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.FlashcardService.ResetCard(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		handleError(w, r, err)
		return
	}
	history, err := s.FlashcardService.History(r.Context(), id, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
