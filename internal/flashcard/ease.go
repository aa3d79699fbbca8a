package flashcard

import "github.com/vytor/flashdeck/internal/models"

// InitialEaseFactor returns the starting ease factor for a card's static difficulty.
// Unknown difficulties are treated as medium.
func InitialEaseFactor(d models.Difficulty) float64 {
	switch d {
	case models.DifficultyEasy:
		return 2.5
	case models.DifficultyHard:
		return 1.6
	default:
		return 2.0
	}
}

// difficultyRank orders difficulties hardest first; unknown ranks as medium.
func difficultyRank(d models.Difficulty) int {
	switch d {
	case models.DifficultyHard:
		return 0
	case models.DifficultyEasy:
		return 2
	default:
		return 1
	}
}
