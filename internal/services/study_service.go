package services

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/session"
)

// StudyOptions bounds the sessions a StudyService runs.
type StudyOptions struct {
	MaxCards int
	Timeout  time.Duration
	// Retention is how long a completed session stays readable before Sweep drops it.
	Retention time.Duration
}

// AnswerResult is what answering the current card of a session produces.
type AnswerResult struct {
	Review  flashcard.Review `json:"review"`
	Session session.Snapshot `json:"session"`
}

// StudyService runs interactive study sessions and keeps them in memory
// until they are swept.
type StudyService interface {
	Start(ctx context.Context, deckID int64, mode session.Mode, maxCards int) (*session.Snapshot, error)
	Get(ctx context.Context, id string) (*session.Snapshot, error)
	Flip(ctx context.Context, id string) (*session.Snapshot, error)
	Answer(ctx context.Context, id string, isCorrect bool, responseTime time.Duration) (*AnswerResult, error)
	Skip(ctx context.Context, id string) (*session.Snapshot, error)
	Previous(ctx context.Context, id string) (*session.Snapshot, error)
	Finish(ctx context.Context, id string) (*session.Snapshot, error)
	// Sweep force-expires overdue sessions and drops completed ones past retention.
	Sweep(now time.Time) (expired, evicted int)
	Active() int
	Close()
}

type studyService struct {
	decks     repository.DeckRepository
	cards     repository.FlashcardRepository
	queue     jobs.JobQueue
	scheduler *flashcard.Scheduler
	opts      StudyOptions

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewStudyService creates a new StudyService
func NewStudyService(
	decks repository.DeckRepository,
	cards repository.FlashcardRepository,
	queue jobs.JobQueue,
	scheduler *flashcard.Scheduler,
	opts StudyOptions,
) StudyService {
	if opts.MaxCards <= 0 {
		opts.MaxCards = session.DefaultMaxCards
	}
	if opts.Timeout <= 0 {
		opts.Timeout = session.DefaultTimeout
	}
	return &studyService{
		decks:     decks,
		cards:     cards,
		queue:     queue,
		scheduler: scheduler,
		opts:      opts,
		sessions:  make(map[string]*session.Session),
	}
}

// Start builds a session over the deck and starts it. An empty selection
// is reported with state "empty" and is not kept.
func (s *studyService) Start(ctx context.Context, deckID int64, mode session.Mode, maxCards int) (*session.Snapshot, error) {
	log := logger.FromContext(ctx).WithField("deck_id", deckID)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		log.Error("failed to get deck: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		log.Error("failed to load deck cards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if maxCards <= 0 || maxCards > s.opts.MaxCards {
		maxCards = s.opts.MaxCards
	}
	sess := session.New(deckID, cards, s.scheduler, session.Options{
		Mode:       mode,
		MaxCards:   maxCards,
		Timeout:    s.opts.Timeout,
		OnComplete: s.completed,
	})

	snap := sess.Snapshot()
	if snap.State == session.StateEmpty {
		log.Info("no cards to study")
		return &snap, nil
	}

	if err := sess.Start(); err != nil {
		return nil, mapSessionError(err)
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	log.Info("study session started: session_id=%s", sess.ID())
	snap = sess.Snapshot()
	return &snap, nil
}

func (s *studyService) lookup(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	return sess, nil
}

func (s *studyService) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	return &snap, nil
}

// do applies action to the session and returns its snapshot afterwards.
func (s *studyService) do(id string, action func(*session.Session) error) (*session.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := action(sess); err != nil {
		return nil, mapSessionError(err)
	}
	snap := sess.Snapshot()
	return &snap, nil
}

func (s *studyService) Flip(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.do(id, (*session.Session).Flip)
}

func (s *studyService) Skip(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.do(id, (*session.Session).Skip)
}

func (s *studyService) Previous(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.do(id, (*session.Session).Previous)
}

func (s *studyService) Finish(ctx context.Context, id string) (*session.Snapshot, error) {
	return s.do(id, func(sess *session.Session) error {
		sess.Finish()
		return nil
	})
}

// Answer grades the current card and persists its new schedule. The session
// only advances once the schedule is stored; a store failure leaves the card
// current so the answer can be sent again.
func (s *studyService) Answer(ctx context.Context, id string, isCorrect bool, responseTime time.Duration) (*AnswerResult, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	review, err := sess.AnswerWith(isCorrect, responseTime, func(r flashcard.Review) error {
		return persistReview(ctx, s.cards, r, isCorrect, responseTime)
	})
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			return nil, appErr
		}
		return nil, mapSessionError(err)
	}

	return &AnswerResult{Review: review, Session: sess.Snapshot()}, nil
}

// completed hands the finished session's record to the background queue.
func (s *studyService) completed(sess *session.Session) {
	log := logger.Default().WithPrefix("study").WithField("session_id", sess.ID())
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueSessionRecord(sess.Record()); err != nil {
		log.Warn("failed to enqueue session record: %v", err)
	}
}

func (s *studyService) Sweep(now time.Time) (expired, evicted int) {
	log := logger.Default().WithPrefix("study")

	s.mu.Lock()
	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		if sess.Expired(now) {
			sess.Expire()
			expired++
		}
		snap := sess.Snapshot()
		if snap.State != session.StateCompleted || snap.EndedAt == nil {
			continue
		}
		if now.Sub(*snap.EndedAt) < s.opts.Retention {
			continue
		}
		sess.Close()
		s.mu.Lock()
		delete(s.sessions, sess.ID())
		s.mu.Unlock()
		evicted++
	}

	if expired > 0 || evicted > 0 {
		log.Info("swept sessions: expired=%d, evicted=%d", expired, evicted)
	}
	return expired, evicted
}

func (s *studyService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops every session timer. Sessions still running are not recorded.
func (s *studyService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, id)
	}
}
