package flashcard

import (
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// Review bundles everything one answer produced.
type Review struct {
	Card    models.Flashcard `json:"card"`
	Quality AnswerQuality    `json:"quality"`
	Result  Result           `json:"result"`
}

// Scheduler carries scheduling configuration and the clock used as "now".
type Scheduler struct {
	cfg Config
	now func() time.Time
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

func NewScheduler(cfg Config, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) Config() Config { return s.cfg }

func (s *Scheduler) Now() time.Time { return s.now() }

// Review grades an answer to card and returns the updated card value. The
// input card is not modified.
func (s *Scheduler) Review(card models.Flashcard, isCorrect bool, responseTime time.Duration) Review {
	now := s.now()
	quality := Classify(isCorrect, responseTime, card.Difficulty)
	res := NextReview(card, quality, now, s.cfg)
	return Review{
		Card:    ApplyResult(card, isCorrect, res, now),
		Quality: quality,
		Result:  res,
	}
}

// Due returns the due cards of cards in study order.
func (s *Scheduler) Due(cards []models.Flashcard) []models.Flashcard {
	now := s.now()
	return SortByPriority(DueCards(cards, now), now)
}

func (s *Scheduler) Stats(cards []models.Flashcard) models.DeckStats {
	return CalculateSessionStats(cards, s.now())
}
