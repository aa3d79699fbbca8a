package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// FlashcardService handles flashcard-related business logic
type FlashcardService interface {
	ListCards(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, int, error)
	GetCard(ctx context.Context, id int64) (*models.Flashcard, error)
	CreateCard(ctx context.Context, card models.Flashcard) (*models.Flashcard, error)
	UpdateCard(ctx context.Context, card models.Flashcard) (*models.Flashcard, error)
	DeleteCard(ctx context.Context, id int64) error
	ReviewCard(ctx context.Context, id int64, isCorrect bool, responseTime time.Duration) (*flashcard.Review, error)
	ResetCard(ctx context.Context, id int64) (*models.Flashcard, error)
	History(ctx context.Context, id int64, limit int) ([]models.ReviewHistory, error)
}

type flashcardService struct {
	decks     repository.DeckRepository
	cards     repository.FlashcardRepository
	scheduler *flashcard.Scheduler
}

// NewFlashcardService creates a new FlashcardService
func NewFlashcardService(
	decks repository.DeckRepository,
	cards repository.FlashcardRepository,
	scheduler *flashcard.Scheduler,
) FlashcardService {
	return &flashcardService{decks: decks, cards: cards, scheduler: scheduler}
}

func (s *flashcardService) ListCards(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, int, error) {
	log := logger.FromContext(ctx)

	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		log.Error("failed to list flashcards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.cards.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count flashcards: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return cards, total, nil
}

func (s *flashcardService) GetCard(ctx context.Context, id int64) (*models.Flashcard, error) {
	card, err := s.cards.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("flashcard", id)
	}
	return card, nil
}

func validateContent(card *models.Flashcard) error {
	card.Front = strings.TrimSpace(card.Front)
	card.Back = strings.TrimSpace(card.Back)
	if card.Front == "" {
		return errors.NewValidationError("front", "cannot be empty")
	}
	if card.Back == "" {
		return errors.NewValidationError("back", "cannot be empty")
	}
	if card.Difficulty != "" && !card.Difficulty.Valid() {
		return errors.NewValidationError("difficulty", "must be easy, medium or hard")
	}
	return nil
}

// CreateCard adds a never-reviewed card to an existing deck.
func (s *flashcardService) CreateCard(ctx context.Context, card models.Flashcard) (*models.Flashcard, error) {
	log := logger.FromContext(ctx)
	if err := validateContent(&card); err != nil {
		return nil, err
	}

	deck, err := s.decks.Get(ctx, card.DeckID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", card.DeckID)
	}

	fresh := models.Flashcard{
		DeckID:     card.DeckID,
		Front:      card.Front,
		Back:       card.Back,
		Difficulty: models.ParseDifficulty(string(card.Difficulty)),
	}
	id, err := s.cards.Insert(ctx, fresh)
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("flashcard created: id=%d, deck_id=%d", id, card.DeckID)
	return s.GetCard(ctx, id)
}

// UpdateCard edits the content of a card. Scheduling state is kept.
func (s *flashcardService) UpdateCard(ctx context.Context, card models.Flashcard) (*models.Flashcard, error) {
	if err := validateContent(&card); err != nil {
		return nil, err
	}
	card.Difficulty = models.ParseDifficulty(string(card.Difficulty))
	if err := s.cards.Update(ctx, card); err != nil {
		return nil, mapStoreError(ctx, err, "flashcard", card.ID)
	}
	return s.GetCard(ctx, card.ID)
}

func (s *flashcardService) DeleteCard(ctx context.Context, id int64) error {
	if err := s.cards.Delete(ctx, id); err != nil {
		return mapStoreError(ctx, err, "flashcard", id)
	}
	return nil
}

func (s *flashcardService) ReviewCard(ctx context.Context, id int64, isCorrect bool, responseTime time.Duration) (*flashcard.Review, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"flashcard_id": id,
		"correct":      isCorrect,
	})
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return nil, err
	}

	review := s.scheduler.Review(*card, isCorrect, responseTime)
	log.Debug("review graded: quality=%s, interval=%d, ease_factor=%.2f",
		review.Quality, review.Result.Interval, review.Result.EaseFactor)

	if err := persistReview(ctx, s.cards, review, isCorrect, responseTime); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *flashcardService) ResetCard(ctx context.Context, id int64) (*models.Flashcard, error) {
	if err := s.cards.ResetProgress(ctx, id); err != nil {
		return nil, mapStoreError(ctx, err, "flashcard", id)
	}
	logger.FromContext(ctx).Info("flashcard progress reset: id=%d", id)
	return s.GetCard(ctx, id)
}

func (s *flashcardService) History(ctx context.Context, id int64, limit int) ([]models.ReviewHistory, error) {
	if _, err := s.GetCard(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.cards.ReviewHistory(ctx, id, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load review history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return history, nil
}

// persistReview writes the card's new schedule and bumps its counters in one
// statement, then appends a history row. A failed history write is logged
// and otherwise ignored.
func persistReview(ctx context.Context, cards repository.FlashcardRepository, review flashcard.Review, isCorrect bool, responseTime time.Duration) error {
	log := logger.FromContext(ctx)

	if err := cards.ApplyReview(ctx, review.Card, isCorrect); err != nil {
		return mapStoreError(ctx, err, "flashcard", review.Card.ID)
	}

	reviewedAt := time.Now()
	if review.Card.LastReviewed != nil {
		reviewedAt = *review.Card.LastReviewed
	}
	err := cards.InsertReviewHistory(ctx, models.ReviewHistory{
		FlashcardID:    review.Card.ID,
		Quality:        int(review.Quality),
		Correct:        isCorrect,
		ResponseTimeMs: responseTime.Milliseconds(),
		ReviewedAt:     reviewedAt,
	})
	if err != nil {
		log.Warn("failed to store review history: %v", err)
	}
	return nil
}
