package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Insert(ctx context.Context, s models.StudySession) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("inserting study session: id=%s, deck_id=%d", s.ID, s.DeckID)

	query, args, err := sqlBuilder.Insert("study_sessions").
		Columns("id", "deck_id", "mode", "total_cards", "cards_studied", "correct_answers",
			"incorrect_answers", "average_response_time", "cards_graduated", "perfect_cards",
			"timed_out", "started_at", "ended_at").
		Values(s.ID, s.DeckID, s.Mode, s.TotalCards, s.CardsStudied, s.CorrectAnswers,
			s.IncorrectAnswers, s.AverageResponseTime, s.CardsGraduated, s.PerfectCards,
			s.TimedOut, s.StartedAt.UTC(), nullTime(s.EndedAt)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to insert study session: %v", err)
		return err
	}
	return nil
}

func (r *sessionRepository) List(ctx context.Context, deckID int64, limit int) ([]models.StudySession, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("listing study sessions: deck_id=%d, limit=%d", deckID, limit)

	if limit <= 0 {
		limit = 50
	}
	q := sqlBuilder.Select("id", "deck_id", "mode", "total_cards", "cards_studied", "correct_answers",
		"incorrect_answers", "average_response_time", "cards_graduated", "perfect_cards",
		"timed_out", "started_at", "ended_at").
		From("study_sessions").
		OrderBy("started_at DESC").
		Limit(uint64(limit))
	if deckID != 0 {
		q = q.Where(squirrel.Eq{"deck_id": deckID})
	}

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list study sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	sessions := []models.StudySession{}
	for rows.Next() {
		var s models.StudySession
		var endedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.DeckID, &s.Mode, &s.TotalCards, &s.CardsStudied, &s.CorrectAnswers,
			&s.IncorrectAnswers, &s.AverageResponseTime, &s.CardsGraduated, &s.PerfectCards,
			&s.TimedOut, &s.StartedAt, &endedAt); err != nil {
			log.Error("failed to scan study session row: %v", err)
			return nil, err
		}
		s.EndedAt = timePtr(endedAt)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
