package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
)

const (
	DefaultMaxCards = 20
	DefaultTimeout  = 30 * time.Minute
)

var (
	// ErrNotActive is returned for actions on a session that is not running.
	ErrNotActive = errors.New("session: not active")
	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("session: already started")
)

// Mode selects how cards enter a session.
type Mode string

const (
	// ModeSpaced studies due cards in priority order.
	ModeSpaced Mode = "spaced"
	// ModeSequential studies the deck in stored order, due or not.
	ModeSequential Mode = "sequential"
)

// ParseMode maps user input onto a Mode, defaulting to spaced.
func ParseMode(s string) Mode {
	if Mode(s) == ModeSequential {
		return ModeSequential
	}
	return ModeSpaced
}

// State is the lifecycle position of a session.
type State string

const (
	StateNotStarted State = "not_started"
	StateActive     State = "active"
	StateCompleted  State = "completed"
	// StateEmpty is terminal: nothing was selected so the session never runs.
	StateEmpty State = "empty"
)

// Side is which face of the current card is showing.
type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

// Options configures a new session. Zero values take the defaults.
type Options struct {
	Mode     Mode
	MaxCards int
	Timeout  time.Duration
	// OnComplete runs once, outside the session lock, when the session completes.
	OnComplete func(*Session)
}

// Session drives one bounded pass over a prioritized card sequence.
type Session struct {
	mu sync.Mutex

	id        string
	deckID    int64
	mode      Mode
	timeout   time.Duration
	scheduler *flashcard.Scheduler
	log       *logger.Logger

	cards    []models.Flashcard
	answered map[int]answer
	cursor   int
	side     Side
	state    State
	timedOut bool

	startedAt time.Time
	endedAt   time.Time
	timer     *time.Timer

	onComplete func(*Session)
}

// Select picks the cards a session over deck would study.
func Select(cards []models.Flashcard, mode Mode, maxCards int, now time.Time) []models.Flashcard {
	if maxCards <= 0 {
		maxCards = DefaultMaxCards
	}
	var selected []models.Flashcard
	if mode == ModeSequential {
		selected = cards
	} else {
		selected = flashcard.SortByPriority(flashcard.DueCards(cards, now), now)
	}
	if len(selected) > maxCards {
		selected = selected[:maxCards]
	}
	out := make([]models.Flashcard, len(selected))
	copy(out, selected)
	return out
}

// New selects cards from deck and builds a session in NotStarted, or Empty when
// nothing was selected.
func New(deckID int64, deck []models.Flashcard, scheduler *flashcard.Scheduler, opts Options) *Session {
	if opts.Mode == "" {
		opts.Mode = ModeSpaced
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	s := &Session{
		id:         uuid.New().String(),
		deckID:     deckID,
		mode:       opts.Mode,
		timeout:    opts.Timeout,
		scheduler:  scheduler,
		cards:      Select(deck, opts.Mode, opts.MaxCards, scheduler.Now()),
		answered:   make(map[int]answer),
		side:       SideFront,
		state:      StateNotStarted,
		onComplete: opts.OnComplete,
	}
	s.log = logger.Default().WithPrefix("session").WithField("session_id", s.id)
	if len(s.cards) == 0 {
		s.state = StateEmpty
		s.log.Debug("no cards to study: deck_id=%d, mode=%s", deckID, opts.Mode)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) DeckID() int64 { return s.deckID }

// Start moves the session to Active and arms the timeout.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateEmpty:
		return ErrNotActive
	case StateNotStarted:
	default:
		return ErrAlreadyStarted
	}

	s.state = StateActive
	s.startedAt = s.scheduler.Now()
	s.timer = time.AfterFunc(s.timeout, s.expire)
	s.log.Info("session started: deck_id=%d, cards=%d, mode=%s", s.deckID, len(s.cards), s.mode)
	return nil
}

// Flip turns the current card over.
func (s *Session) Flip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotActive
	}
	if s.side == SideFront {
		s.side = SideBack
	} else {
		s.side = SideFront
	}
	return nil
}

// Answer grades the current card, records its new schedule and moves on.
func (s *Session) Answer(isCorrect bool, responseTime time.Duration) (flashcard.Review, error) {
	return s.AnswerWith(isCorrect, responseTime, nil)
}

// AnswerWith is Answer with a store step. store receives the graded review
// while the session is held and the session only moves on once it succeeds.
// When store fails the session is left exactly as it was and the error is
// returned, so the same card can be answered again.
//
// Answering a card revisited with Previous grades the card as it stands after
// its earlier answer. That answer's contribution to the statistics is replaced.
func (s *Session) AnswerWith(isCorrect bool, responseTime time.Duration, store func(flashcard.Review) error) (flashcard.Review, error) {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return flashcard.Review{}, ErrNotActive
	}

	card := s.cards[s.cursor]
	review := s.scheduler.Review(card, isCorrect, responseTime)
	if store != nil {
		if err := store(review); err != nil {
			s.mu.Unlock()
			s.log.Warn("answer not stored, session unchanged: card_id=%d: %v", card.ID, err)
			return flashcard.Review{}, err
		}
	}

	first := card
	if prev, ok := s.answered[s.cursor]; ok {
		first = prev.before
	}
	s.cards[s.cursor] = review.Card
	s.answered[s.cursor] = answer{before: first, isCorrect: isCorrect, responseTime: responseTime, review: review}
	s.log.Debug("answered card: card_id=%d, quality=%s, interval=%d", card.ID, review.Quality, review.Result.Interval)

	completed := s.advanceLocked()
	s.mu.Unlock()

	if completed {
		s.finished()
	}
	return review, nil
}

// Skip moves past the current card without grading it.
func (s *Session) Skip() error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return ErrNotActive
	}
	s.log.Debug("skipped card: card_id=%d", s.cards[s.cursor].ID)
	completed := s.advanceLocked()
	s.mu.Unlock()

	if completed {
		s.finished()
	}
	return nil
}

// Previous steps the cursor back one card. Reviews already applied stay applied.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNotActive
	}
	if s.cursor > 0 {
		s.cursor--
		s.side = SideFront
	}
	return nil
}

// Finish ends an active session early. Finishing a finished session is a no-op.
func (s *Session) Finish() {
	s.mu.Lock()
	completed := s.completeLocked(false)
	s.mu.Unlock()

	if completed {
		s.finished()
	}
}

// Close stops the timeout timer without completing the session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// Expired reports whether an active session has outlived its timeout at now.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateActive && now.Sub(s.startedAt) >= s.timeout
}

// Expire completes the session as timed out.
func (s *Session) Expire() {
	s.expire()
}

func (s *Session) expire() {
	s.mu.Lock()
	completed := s.completeLocked(true)
	s.mu.Unlock()

	if completed {
		s.log.Info("session timed out")
		s.finished()
	}
}

func (s *Session) advanceLocked() bool {
	s.side = SideFront
	if s.cursor+1 >= len(s.cards) {
		return s.completeLocked(false)
	}
	s.cursor++
	return false
}

// completeLocked freezes an active session; it reports whether this call did it.
func (s *Session) completeLocked(timedOut bool) bool {
	if s.state != StateActive {
		return false
	}
	s.state = StateCompleted
	s.timedOut = timedOut
	s.endedAt = s.scheduler.Now()
	if s.timer != nil {
		s.timer.Stop()
	}
	return true
}

func (s *Session) finished() {
	st := s.Snapshot().Stats
	s.log.Info("session completed: studied=%d, correct=%d, incorrect=%d",
		st.CardsStudied, st.CorrectAnswers, st.IncorrectAnswers)
	if s.onComplete != nil {
		s.onComplete(s)
	}
}

// UpdatedCards returns the cards that were answered, with their new schedules,
// in session order.
func (s *Session) UpdatedCards() []models.Flashcard {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Flashcard, 0, len(s.answered))
	for i, c := range s.cards {
		if _, ok := s.answered[i]; ok {
			out = append(out, c)
		}
	}
	return out
}
