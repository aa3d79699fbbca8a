package flashcard

import (
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// AnswerQuality is the SM-2 grade of a single answer, 0 (worst) to 5 (best).
type AnswerQuality int

const (
	QualityBlackout AnswerQuality = iota
	QualityIncorrect
	QualityHard
	QualityGood
	QualityEasy
	QualityVeryEasy
)

func (q AnswerQuality) String() string {
	switch q {
	case QualityBlackout:
		return "blackout"
	case QualityIncorrect:
		return "incorrect"
	case QualityHard:
		return "hard"
	case QualityGood:
		return "good"
	case QualityEasy:
		return "easy"
	case QualityVeryEasy:
		return "very_easy"
	default:
		return "unknown"
	}
}

// Passed reports whether q counts as a successful recall.
func (q AnswerQuality) Passed() bool {
	return q >= QualityGood
}

// ExpectedResponseTime is how long a correct answer is expected to take for a
// card of the given difficulty.
func ExpectedResponseTime(d models.Difficulty) time.Duration {
	switch d {
	case models.DifficultyEasy:
		return 3 * time.Second
	case models.DifficultyHard:
		return 8 * time.Second
	default:
		return 5 * time.Second
	}
}

// Classify grades an answer from its correctness and how long it took relative
// to the expected time for the card's difficulty.
func Classify(isCorrect bool, responseTime time.Duration, d models.Difficulty) AnswerQuality {
	if !isCorrect {
		return QualityIncorrect
	}

	ratio := float64(responseTime) / float64(ExpectedResponseTime(d))
	switch {
	case ratio <= 0.5:
		return QualityVeryEasy
	case ratio <= 0.8:
		return QualityEasy
	case ratio <= 1.2:
		return QualityGood
	case ratio <= 2.0:
		return QualityHard
	default:
		// Very slow correct answers are graded the same as moderately slow ones.
		return QualityHard
	}
}
