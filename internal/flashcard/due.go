package flashcard

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/vytor/flashdeck/internal/models"
)

// IsDue reports whether card should be studied at now. Cards that were never
// scheduled are always due.
func IsDue(card models.Flashcard, now time.Time) bool {
	return card.NextReview == nil || !now.Before(*card.NextReview)
}

// DueCards returns the cards of cards that are due at now, in their original order.
func DueCards(cards []models.Flashcard, now time.Time) []models.Flashcard {
	due := make([]models.Flashcard, 0, len(cards))
	for _, c := range cards {
		if IsDue(c, now) {
			due = append(due, c)
		}
	}
	return due
}

// overdueBy is how long past its schedule a card is; unscheduled cards count as 0.
func overdueBy(card models.Flashcard, now time.Time) time.Duration {
	if card.NextReview == nil {
		return 0
	}
	return now.Sub(*card.NextReview)
}

// SortByPriority returns a new slice ordered for study: due cards first (most
// overdue first), then future cards by earliest schedule, with harder cards
// first on ties. Equal keys keep their input order.
func SortByPriority(cards []models.Flashcard, now time.Time) []models.Flashcard {
	sorted := slices.Clone(cards)
	slices.SortStableFunc(sorted, func(a, b models.Flashcard) int {
		aDue, bDue := IsDue(a, now), IsDue(b, now)
		if aDue != bDue {
			if aDue {
				return -1
			}
			return 1
		}

		var c int
		if aDue {
			c = cmp.Compare(overdueBy(b, now), overdueBy(a, now))
		} else {
			c = a.NextReview.Compare(*b.NextReview)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(difficultyRank(a.Difficulty), difficultyRank(b.Difficulty))
	})
	return sorted
}

// CalculateSessionStats counts what a study session over cards would contain.
// Each due card is budgeted half a minute.
func CalculateSessionStats(cards []models.Flashcard, now time.Time) models.DeckStats {
	stats := models.DeckStats{TotalCards: len(cards)}
	for _, c := range cards {
		if IsDue(c, now) {
			stats.DueCards++
		}
		if c.TimesReviewed == 0 && c.LastReviewed == nil {
			stats.NewCards++
		}
		if c.NextReview != nil && c.NextReview.Before(now) {
			stats.OverdueCards++
		}
	}
	stats.EstimatedTimeMinutes = int(math.Ceil(float64(stats.DueCards) * 0.5))
	return stats
}
