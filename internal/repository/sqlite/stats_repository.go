package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

const dueSoonWindow = 7 * 24 * time.Hour

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) DeckPerformance(ctx context.Context, deckID int64, now time.Time) (*models.DeckPerformance, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching deck performance: deck_id=%d", deckID)

	now = now.UTC()
	var stat models.DeckPerformance
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*) AS total_cards,
    COALESCE(SUM(f.correct_count + f.incorrect_count), 0) AS total_answers,
    COUNT(CASE WHEN f.times_reviewed >= 3 THEN 1 END) AS cards_mastered,
    COUNT(CASE WHEN f.correct_count + f.incorrect_count > 3 AND f.incorrect_count > f.correct_count THEN 1 END) AS cards_struggling,
    COUNT(CASE WHEN f.next_review IS NULL OR f.next_review <= ? THEN 1 END) AS cards_due,
    COUNT(CASE WHEN f.next_review > ? AND f.next_review <= ? THEN 1 END) AS cards_due_soon,
    CASE
        WHEN SUM(f.correct_count + f.incorrect_count) > 0
        THEN ROUND(100.0 * SUM(f.correct_count) / SUM(f.correct_count + f.incorrect_count), 1)
        ELSE 0
    END AS overall_accuracy
FROM flashcards f
WHERE f.deck_id = ?
`, now, now, now.Add(dueSoonWindow), deckID).Scan(
		&stat.TotalCards,
		&stat.TotalAnswers,
		&stat.CardsMastered,
		&stat.CardsStruggling,
		&stat.CardsDue,
		&stat.CardsDueSoon,
		&stat.OverallAccuracy,
	)
	if err != nil {
		log.Error("failed to get deck performance: %v", err)
		return nil, err
	}
	return &stat, nil
}

func (r *statsRepository) DifficultyStats(ctx context.Context, deckID int64) ([]models.DifficultyStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching difficulty stats: deck_id=%d", deckID)

	rows, err := r.db.QueryContext(ctx, `
SELECT
    f.difficulty,
    COUNT(*) AS total_cards,
    COALESCE(SUM(f.correct_count + f.incorrect_count), 0) AS total_answers,
    CASE
        WHEN SUM(f.correct_count + f.incorrect_count) > 0
        THEN ROUND(100.0 * SUM(f.correct_count) / SUM(f.correct_count + f.incorrect_count), 1)
        ELSE 0
    END AS avg_accuracy
FROM flashcards f
WHERE f.deck_id = ?
GROUP BY f.difficulty
ORDER BY CASE f.difficulty WHEN 'hard' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END
`, deckID)
	if err != nil {
		log.Error("failed to query difficulty stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	stats := []models.DifficultyStat{}
	for rows.Next() {
		var s models.DifficultyStat
		var difficulty string
		if err := rows.Scan(&difficulty, &s.TotalCards, &s.TotalAnswers, &s.AvgAccuracy); err != nil {
			log.Error("failed to scan difficulty stat row: %v", err)
			return nil, err
		}
		s.Difficulty = models.ParseDifficulty(difficulty)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func (r *statsRepository) ResponseTimeStats(ctx context.Context, deckID int64) (*models.ResponseTimeStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching response time stats: deck_id=%d", deckID)

	stat := models.ResponseTimeStat{TimeByGrade: map[int]float64{}}
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*),
    COALESCE(AVG(rh.response_time_ms), 0),
    COALESCE(MIN(rh.response_time_ms), 0),
    COALESCE(MAX(rh.response_time_ms), 0)
FROM review_history rh
JOIN flashcards f ON f.id = rh.flashcard_id
WHERE f.deck_id = ?
`, deckID).Scan(&stat.Reviews, &stat.AvgTimeMs, &stat.FastestMs, &stat.SlowestMs)
	if err != nil {
		log.Error("failed to get response time stats: %v", err)
		return nil, err
	}
	if stat.Reviews == 0 {
		return &stat, nil
	}

	err = r.db.QueryRowContext(ctx, `
SELECT rh.response_time_ms FROM review_history rh
JOIN flashcards f ON f.id = rh.flashcard_id
WHERE f.deck_id = ?
ORDER BY rh.response_time_ms
LIMIT 1 OFFSET ?
`, deckID, stat.Reviews/2).Scan(&stat.MedianMs)
	if err != nil {
		log.Error("failed to get median response time: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT rh.quality, AVG(rh.response_time_ms)
FROM review_history rh
JOIN flashcards f ON f.id = rh.flashcard_id
WHERE f.deck_id = ?
GROUP BY rh.quality
`, deckID)
	if err != nil {
		log.Error("failed to query time by quality: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var quality int
		var avg float64
		if err := rows.Scan(&quality, &avg); err != nil {
			log.Error("failed to scan time by quality: %v", err)
			return nil, err
		}
		stat.TimeByGrade[quality] = avg
	}
	return &stat, rows.Err()
}
