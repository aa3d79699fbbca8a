package flashcard

import (
	"math"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// secondInterval is the fixed SM-2 interval after the second successful review.
const secondInterval = 6

// Config tunes the SM-2 scheduler. Use DefaultConfig for the standard values.
type Config struct {
	MinEaseFactor float64
	MaxEaseFactor float64
	// EaseFactorBonus and EaseFactorPenalty are carried for callers that tune
	// them but the ease update uses the standard SM-2 formula.
	EaseFactorBonus    float64
	EaseFactorPenalty  float64
	GraduatingInterval int
	LapseInterval      int
}

func DefaultConfig() Config {
	return Config{
		MinEaseFactor:      1.3,
		MaxEaseFactor:      2.5,
		EaseFactorBonus:    0.1,
		EaseFactorPenalty:  0.2,
		GraduatingInterval: 1,
		LapseInterval:      1,
	}
}

// Result is the scheduling outcome of one answer.
type Result struct {
	NextReviewDate time.Time `json:"next_review_date"`
	Interval       int       `json:"interval"`
	EaseFactor     float64   `json:"ease_factor"`
	Repetition     int       `json:"repetition"`
}

// NextReview applies the SM-2 step to card for an answer of the given quality.
//
// The ease factor is re-derived from the card's static difficulty on every call,
// and the working interval starts from zero rather than the card's previous
// interval, so from the third consecutive success onward the interval is 0 days.
func NextReview(card models.Flashcard, quality AnswerQuality, now time.Time, cfg Config) Result {
	ef := InitialEaseFactor(card.Difficulty)
	repetition := card.TimesReviewed
	interval := 0

	if quality.Passed() {
		switch repetition {
		case 0:
			interval = cfg.GraduatingInterval
		case 1:
			interval = secondInterval
		default:
			interval = int(math.Round(float64(interval) * ef))
		}
		repetition++
	} else {
		repetition = 0
		interval = cfg.LapseInterval
	}

	q := float64(5 - quality)
	ef += 0.1 - q*(0.08+q*0.02)
	ef = math.Max(cfg.MinEaseFactor, math.Min(cfg.MaxEaseFactor, ef))

	return Result{
		NextReviewDate: now.AddDate(0, 0, interval),
		Interval:       interval,
		EaseFactor:     ef,
		Repetition:     repetition,
	}
}

// ApplyResult merges a scheduling result into a copy of card. It stamps the
// review time, takes the new schedule and repetition count, and bumps exactly
// one of the correct/incorrect counters.
func ApplyResult(card models.Flashcard, isCorrect bool, res Result, now time.Time) models.Flashcard {
	reviewed := now
	next := res.NextReviewDate
	card.LastReviewed = &reviewed
	card.NextReview = &next
	card.TimesReviewed = res.Repetition
	if isCorrect {
		card.CorrectCount++
	} else {
		card.IncorrectCount++
	}
	card.UpdatedAt = now
	return card
}
