package session

import (
	"time"

	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
)

// Stats summarises the answers given in a session, one per card: a card
// answered again after Previous counts with its latest answer only.
type Stats struct {
	CardsStudied     int `json:"cards_studied"`
	CorrectAnswers   int `json:"correct_answers"`
	IncorrectAnswers int `json:"incorrect_answers"`
	// AverageResponseTime is the running mean in milliseconds.
	AverageResponseTime float64 `json:"average_response_time_ms"`
	// CardsGraduated counts new cards passed for the first time.
	CardsGraduated int `json:"cards_graduated"`
	// PerfectCards counts answers graded very easy.
	PerfectCards int `json:"perfect_cards"`
}

// answer is the latest grading of one session slot. before is the card as it
// entered the session.
type answer struct {
	before       models.Flashcard
	isCorrect    bool
	responseTime time.Duration
	review       flashcard.Review
}

// statsLocked folds the answers in session order.
func (s *Session) statsLocked() Stats {
	var st Stats
	for i := range s.cards {
		if a, ok := s.answered[i]; ok {
			st.record(a.before, a.isCorrect, a.responseTime, a.review)
		}
	}
	return st
}

func (st *Stats) record(before models.Flashcard, isCorrect bool, responseTime time.Duration, review flashcard.Review) {
	ms := float64(responseTime) / float64(time.Millisecond)
	n := float64(st.CardsStudied)
	st.AverageResponseTime = (st.AverageResponseTime*n + ms) / (n + 1)
	st.CardsStudied++

	if isCorrect {
		st.CorrectAnswers++
	} else {
		st.IncorrectAnswers++
	}
	if before.TimesReviewed == 0 && review.Quality.Passed() {
		st.CardsGraduated++
	}
	if review.Quality == flashcard.QualityVeryEasy {
		st.PerfectCards++
	}
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	ID         string            `json:"id"`
	DeckID     int64             `json:"deck_id"`
	Mode       Mode              `json:"mode"`
	State      State             `json:"state"`
	Side       Side              `json:"side"`
	Cursor     int               `json:"cursor"`
	TotalCards int               `json:"total_cards"`
	Current    *models.Flashcard `json:"current,omitempty"`
	Stats      Stats             `json:"stats"`
	TimedOut   bool              `json:"timed_out"`
	StartedAt  time.Time         `json:"started_at"`
	EndedAt    *time.Time        `json:"ended_at,omitempty"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.id,
		DeckID:     s.deckID,
		Mode:       s.mode,
		State:      s.state,
		Side:       s.side,
		Cursor:     s.cursor,
		TotalCards: len(s.cards),
		Stats:      s.statsLocked(),
		TimedOut:   s.timedOut,
		StartedAt:  s.startedAt,
	}
	if s.state == StateActive {
		current := s.cards[s.cursor]
		snap.Current = &current
	}
	if !s.endedAt.IsZero() {
		ended := s.endedAt
		snap.EndedAt = &ended
	}
	return snap
}

// Record converts a completed session into its persisted form.
func (s *Session) Record() models.StudySession {
	snap := s.Snapshot()
	return models.StudySession{
		ID:                  snap.ID,
		DeckID:              snap.DeckID,
		Mode:                string(snap.Mode),
		TotalCards:          snap.TotalCards,
		CardsStudied:        snap.Stats.CardsStudied,
		CorrectAnswers:      snap.Stats.CorrectAnswers,
		IncorrectAnswers:    snap.Stats.IncorrectAnswers,
		AverageResponseTime: snap.Stats.AverageResponseTime,
		CardsGraduated:      snap.Stats.CardsGraduated,
		PerfectCards:        snap.Stats.PerfectCards,
		TimedOut:            snap.TimedOut,
		StartedAt:           snap.StartedAt,
		EndedAt:             snap.EndedAt,
	}
}
