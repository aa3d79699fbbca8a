package repository

import (
	"context"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	Update(ctx context.Context, deck models.Deck) error
	Delete(ctx context.Context, id int64) error
}

// FlashcardRepository handles flashcard data access
type FlashcardRepository interface {
	Get(ctx context.Context, id int64) (*models.Flashcard, error)
	List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error)
	Count(ctx context.Context, filter models.FlashcardFilter) (int, error)
	ListByDeck(ctx context.Context, deckID int64) ([]models.Flashcard, error)
	Insert(ctx context.Context, card models.Flashcard) (int64, error)
	InsertBatch(ctx context.Context, cards []models.Flashcard) ([]int64, error)
	// Update writes the card's content fields; scheduling fields are left alone.
	Update(ctx context.Context, card models.Flashcard) error
	// ApplyReview writes the scheduling fields of a reviewed card and bumps one
	// answer counter in a single statement.
	ApplyReview(ctx context.Context, card models.Flashcard, isCorrect bool) error
	ResetProgress(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	InsertReviewHistory(ctx context.Context, h models.ReviewHistory) error
	ReviewHistory(ctx context.Context, flashcardID int64, limit int) ([]models.ReviewHistory, error)
}

// SessionRepository stores finished study sessions
type SessionRepository interface {
	Insert(ctx context.Context, s models.StudySession) error
	List(ctx context.Context, deckID int64, limit int) ([]models.StudySession, error)
}

// StatsRepository aggregates review progress for reporting
type StatsRepository interface {
	DeckPerformance(ctx context.Context, deckID int64, now time.Time) (*models.DeckPerformance, error)
	DifficultyStats(ctx context.Context, deckID int64) ([]models.DifficultyStat, error)
	ResponseTimeStats(ctx context.Context, deckID int64) (*models.ResponseTimeStat, error)
}
