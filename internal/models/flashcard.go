package models

import (
	"strings"
	"time"
)

// Difficulty is the static category a card is created with. It is distinct from
// the ease factor the scheduler derives from it.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps user input onto a Difficulty. Unknown values fall back to medium.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy
	case DifficultyHard:
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Valid reports whether d is one of the three defined difficulties.
func (d Difficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyMedium || d == DifficultyHard
}

type Flashcard struct {
	ID             int64      `json:"id"`
	DeckID         int64      `json:"deck_id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	Difficulty     Difficulty `json:"difficulty"`
	LastReviewed   *time.Time `json:"last_reviewed,omitempty"`
	NextReview     *time.Time `json:"next_review,omitempty"`
	TimesReviewed  int        `json:"times_reviewed"`
	CorrectCount   int        `json:"correct_count"`
	IncorrectCount int        `json:"incorrect_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// FlashcardFilter narrows card listings. Zero values mean "no constraint".
type FlashcardFilter struct {
	DeckID     int64
	Difficulty Difficulty
	Search     string
	Limit      int
	Offset     int
}

type ReviewHistory struct {
	ID             int64     `json:"id"`
	FlashcardID    int64     `json:"flashcard_id"`
	Quality        int       `json:"quality"`
	Correct        bool      `json:"correct"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}
