package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

var flashcardColumns = []string{
	"id", "deck_id", "front", "back", "difficulty", "last_reviewed", "next_review",
	"times_reviewed", "correct_count", "incorrect_count", "created_at", "updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (models.Flashcard, error) {
	var c models.Flashcard
	var difficulty string
	var lastReviewed, nextReview sql.NullTime
	err := row.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &difficulty, &lastReviewed, &nextReview,
		&c.TimesReviewed, &c.CorrectCount, &c.IncorrectCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.Difficulty = models.ParseDifficulty(difficulty)
	c.LastReviewed = timePtr(lastReviewed)
	c.NextReview = timePtr(nextReview)
	return c, nil
}

type flashcardRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db, now: time.Now}
}

func (r *flashcardRepository) Get(ctx context.Context, id int64) (*models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting flashcard: id=%d", id)

	query, args, err := sqlBuilder.Select(flashcardColumns...).From("flashcards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	c, err := scanFlashcard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("flashcard not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get flashcard: %v", err)
		return nil, err
	}
	return &c, nil
}

func applyFlashcardFilter(q squirrel.SelectBuilder, filter models.FlashcardFilter) squirrel.SelectBuilder {
	if filter.DeckID != 0 {
		q = q.Where(squirrel.Eq{"deck_id": filter.DeckID})
	}
	if filter.Difficulty != "" {
		q = q.Where(squirrel.Eq{"difficulty": string(filter.Difficulty)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.Like{"front": pattern},
			squirrel.Like{"back": pattern},
		})
	}
	return q
}

func (r *flashcardRepository) List(ctx context.Context, filter models.FlashcardFilter) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing flashcards: deck_id=%d, difficulty=%s, search=%q", filter.DeckID, filter.Difficulty, filter.Search)

	q := applyFlashcardFilter(sqlBuilder.Select(flashcardColumns...).From("flashcards"), filter).OrderBy("id ASC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	q = q.Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	return r.query(ctx, query, args...)
}

func (r *flashcardRepository) Count(ctx context.Context, filter models.FlashcardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	query, args, err := applyFlashcardFilter(sqlBuilder.Select("COUNT(*)").From("flashcards"), filter).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		log.Error("failed to count flashcards: %v", err)
		return 0, err
	}
	return n, nil
}

func (r *flashcardRepository) ListByDeck(ctx context.Context, deckID int64) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing all flashcards of deck: deck_id=%d", deckID)

	query, args, err := sqlBuilder.Select(flashcardColumns...).From("flashcards").
		Where(squirrel.Eq{"deck_id": deckID}).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	return r.query(ctx, query, args...)
}

func (r *flashcardRepository) query(ctx context.Context, query string, args ...any) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.Flashcard{}
	for rows.Next() {
		c, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, rows.Err()
}

const insertFlashcardSQL = `
INSERT INTO flashcards (deck_id, front, back, difficulty, last_reviewed, next_review, times_reviewed, correct_count, incorrect_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *flashcardRepository) insert(ctx context.Context, ex execer, c models.Flashcard) (int64, error) {
	now := r.now().UTC()
	res, err := ex.ExecContext(ctx, insertFlashcardSQL,
		c.DeckID, c.Front, c.Back, string(models.ParseDifficulty(string(c.Difficulty))),
		nullTime(c.LastReviewed), nullTime(c.NextReview),
		c.TimesReviewed, c.CorrectCount, c.IncorrectCount, now, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *flashcardRepository) Insert(ctx context.Context, c models.Flashcard) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting flashcard: deck_id=%d", c.DeckID)

	id, err := r.insert(ctx, r.db, c)
	if err != nil {
		log.Error("failed to insert flashcard: %v", err)
		return 0, err
	}
	log.Debug("flashcard inserted: id=%d", id)
	return id, nil
}

func (r *flashcardRepository) InsertBatch(ctx context.Context, cards []models.Flashcard) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting %d flashcards", len(cards))

	ids := make([]int64, 0, len(cards))
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		for _, c := range cards {
			id, err := r.insert(ctx, tx, c)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert flashcard batch: %v", err)
		return nil, err
	}
	return ids, nil
}

func (r *flashcardRepository) Update(ctx context.Context, c models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating flashcard content: id=%d", c.ID)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET front = ?, back = ?, difficulty = ?, updated_at = ?
WHERE id = ?
`, c.Front, c.Back, string(models.ParseDifficulty(string(c.Difficulty))), r.now().UTC(), c.ID)
	if err != nil {
		log.Error("failed to update flashcard: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *flashcardRepository) ApplyReview(ctx context.Context, c models.Flashcard, isCorrect bool) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("applying review: id=%d, times_reviewed=%d, correct=%t", c.ID, c.TimesReviewed, isCorrect)

	correct, incorrect := 0, 1
	if isCorrect {
		correct, incorrect = 1, 0
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET last_reviewed = ?, next_review = ?, times_reviewed = ?,
    correct_count = correct_count + ?, incorrect_count = incorrect_count + ?, updated_at = ?
WHERE id = ?
`, nullTime(c.LastReviewed), nullTime(c.NextReview), c.TimesReviewed, correct, incorrect, r.now().UTC(), c.ID)
	if err != nil {
		log.Error("failed to apply review: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *flashcardRepository) ResetProgress(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("resetting flashcard progress: id=%d", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards
SET last_reviewed = NULL, next_review = NULL, times_reviewed = 0,
    correct_count = 0, incorrect_count = 0, updated_at = ?
WHERE id = ?
`, r.now().UTC(), id)
	if err != nil {
		log.Error("failed to reset flashcard: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *flashcardRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("deleting flashcard: id=%d", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete flashcard: %v", err)
		return err
	}
	return requireAffected(res)
}

func (r *flashcardRepository) InsertReviewHistory(ctx context.Context, h models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting review history: flashcard_id=%d, quality=%d, time=%dms", h.FlashcardID, h.Quality, h.ResponseTimeMs)

	reviewedAt := h.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO review_history (flashcard_id, quality, correct, response_time_ms, reviewed_at)
		VALUES (?, ?, ?, ?, ?)
	`, h.FlashcardID, h.Quality, h.Correct, h.ResponseTimeMs, reviewedAt.UTC())
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}

func (r *flashcardRepository) ReviewHistory(ctx context.Context, flashcardID int64, limit int) ([]models.ReviewHistory, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	if limit <= 0 {
		limit = 50
	}

	query, args, err := sqlBuilder.
		Select("id", "flashcard_id", "quality", "correct", "response_time_ms", "reviewed_at").
		From("review_history").
		Where(squirrel.Eq{"flashcard_id": flashcardID}).
		OrderBy("reviewed_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, err
	}
	defer rows.Close()

	history := []models.ReviewHistory{}
	for rows.Next() {
		var h models.ReviewHistory
		if err := rows.Scan(&h.ID, &h.FlashcardID, &h.Quality, &h.Correct, &h.ResponseTimeMs, &h.ReviewedAt); err != nil {
			log.Error("failed to scan review history row: %v", err)
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
