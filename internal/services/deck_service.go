package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// DeckService handles deck-related business logic
type DeckService interface {
	ListDecks(ctx context.Context) ([]models.Deck, error)
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	CreateDeck(ctx context.Context, name, description string) (*models.Deck, error)
	UpdateDeck(ctx context.Context, id int64, name, description string) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error
	DeckStats(ctx context.Context, id int64) (*models.DeckStats, error)
	DueCards(ctx context.Context, id int64, limit int) ([]models.Flashcard, error)
	Sessions(ctx context.Context, id int64, limit int) ([]models.StudySession, error)
	Performance(ctx context.Context, id int64) (*models.PerformanceReport, error)
	Export(ctx context.Context, id int64) (*models.DeckExport, error)
	Import(ctx context.Context, export models.DeckExport) (*models.Deck, error)
}

type deckService struct {
	decks     repository.DeckRepository
	cards     repository.FlashcardRepository
	sessions  repository.SessionRepository
	stats     repository.StatsRepository
	scheduler *flashcard.Scheduler
}

// NewDeckService creates a new DeckService
func NewDeckService(
	decks repository.DeckRepository,
	cards repository.FlashcardRepository,
	sessions repository.SessionRepository,
	stats repository.StatsRepository,
	scheduler *flashcard.Scheduler,
) DeckService {
	return &deckService{decks: decks, cards: cards, sessions: sessions, stats: stats, scheduler: scheduler}
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list decks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) CreateDeck(ctx context.Context, name, description string) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	id, err := s.decks.Insert(ctx, models.Deck{Name: name, Description: strings.TrimSpace(description)})
	if err != nil {
		log.Error("failed to create deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("deck created: id=%d, name=%s", id, name)
	return s.GetDeck(ctx, id)
}

func (s *deckService) UpdateDeck(ctx context.Context, id int64, name, description string) (*models.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	err := s.decks.Update(ctx, models.Deck{ID: id, Name: name, Description: strings.TrimSpace(description)})
	if err != nil {
		return nil, mapStoreError(ctx, err, "deck", id)
	}
	return s.GetDeck(ctx, id)
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64) error {
	if err := s.decks.Delete(ctx, id); err != nil {
		return mapStoreError(ctx, err, "deck", id)
	}
	logger.FromContext(ctx).Info("deck deleted: id=%d", id)
	return nil
}

func (s *deckService) deckCards(ctx context.Context, id int64) ([]models.Flashcard, error) {
	if _, err := s.GetDeck(ctx, id); err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load deck cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}

func (s *deckService) DeckStats(ctx context.Context, id int64) (*models.DeckStats, error) {
	cards, err := s.deckCards(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := s.scheduler.Stats(cards)
	return &stats, nil
}

func (s *deckService) DueCards(ctx context.Context, id int64, limit int) ([]models.Flashcard, error) {
	cards, err := s.deckCards(ctx, id)
	if err != nil {
		return nil, err
	}
	due := s.scheduler.Due(cards)
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *deckService) Sessions(ctx context.Context, id int64, limit int) ([]models.StudySession, error) {
	if _, err := s.GetDeck(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.sessions.List(ctx, id, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to list study sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return list, nil
}

func (s *deckService) Performance(ctx context.Context, id int64) (*models.PerformanceReport, error) {
	log := logger.FromContext(ctx)
	if _, err := s.GetDeck(ctx, id); err != nil {
		return nil, err
	}

	summary, err := s.stats.DeckPerformance(ctx, id, s.scheduler.Now())
	if err != nil {
		log.Error("failed to get deck performance: %v", err)
		return nil, errors.NewInternalError(err)
	}
	byDifficulty, err := s.stats.DifficultyStats(ctx, id)
	if err != nil {
		log.Error("failed to get difficulty stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	times, err := s.stats.ResponseTimeStats(ctx, id)
	if err != nil {
		log.Error("failed to get response time stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.PerformanceReport{
		Summary:       *summary,
		ByDifficulty:  byDifficulty,
		ResponseTimes: *times,
	}, nil
}

func (s *deckService) Export(ctx context.Context, id int64) (*models.DeckExport, error) {
	deck, err := s.GetDeck(ctx, id)
	if err != nil {
		return nil, err
	}
	cards, err := s.cards.ListByDeck(ctx, id)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load deck cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &models.DeckExport{
		Name:        deck.Name,
		Description: deck.Description,
		ExportedAt:  s.scheduler.Now().UTC(),
		Cards:       cards,
	}, nil
}

// Import creates a new deck holding copies of the exported cards, scheduling
// progress included. Either the whole deck lands or nothing does.
func (s *deckService) Import(ctx context.Context, export models.DeckExport) (*models.Deck, error) {
	log := logger.FromContext(ctx)
	if err := ValidateExport(export); err != nil {
		return nil, err
	}

	deck, err := s.CreateDeck(ctx, export.Name, export.Description)
	if err != nil {
		return nil, err
	}

	cards := make([]models.Flashcard, len(export.Cards))
	for i, c := range export.Cards {
		c.ID = 0
		c.DeckID = deck.ID
		c.Difficulty = models.ParseDifficulty(string(c.Difficulty))
		cards[i] = c
	}
	if _, err := s.cards.InsertBatch(ctx, cards); err != nil {
		log.Error("failed to import cards, removing deck %d: %v", deck.ID, err)
		if derr := s.decks.Delete(ctx, deck.ID); derr != nil {
			log.Warn("failed to remove partially imported deck: %v", derr)
		}
		return nil, errors.NewInternalError(err)
	}

	log.Info("deck imported: id=%d, cards=%d", deck.ID, len(cards))
	return deck, nil
}

// ValidateExport checks an export document before anything is written.
func ValidateExport(export models.DeckExport) error {
	if strings.TrimSpace(export.Name) == "" {
		return errors.NewValidationError("name", "cannot be empty")
	}
	for i, c := range export.Cards {
		if strings.TrimSpace(c.Front) == "" || strings.TrimSpace(c.Back) == "" {
			return errors.NewValidationError("cards", fmt.Sprintf("card %d needs both front and back", i))
		}
		if c.TimesReviewed < 0 || c.CorrectCount < 0 || c.IncorrectCount < 0 {
			return errors.NewValidationError("cards", fmt.Sprintf("card %d has negative counters", i))
		}
	}
	return nil
}
