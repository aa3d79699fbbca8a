package services_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/session"
	"github.com/vytor/flashdeck/internal/testutil/mocks"
)

type studyFixture struct {
	decks *mocks.MockDeckRepository
	cards *mocks.MockFlashcardRepository
	queue *mocks.MockJobQueue
	svc   services.StudyService
}

func newStudyFixture(t *testing.T, deck []models.Flashcard) studyFixture {
	f := studyFixture{
		decks: new(mocks.MockDeckRepository),
		cards: new(mocks.MockFlashcardRepository),
		queue: new(mocks.MockJobQueue),
	}
	f.decks.On("Get", mock.Anything, int64(1)).Return(&models.Deck{ID: 1, Name: "deck"}, nil)
	f.decks.On("Get", mock.Anything, int64(2)).Return(nil, nil)
	f.cards.On("ListByDeck", mock.Anything, int64(1)).Return(deck, nil)

	f.svc = services.NewStudyService(f.decks, f.cards, f.queue, testScheduler(), services.StudyOptions{
		MaxCards:  20,
		Timeout:   time.Hour,
		Retention: 30 * time.Minute,
	})
	t.Cleanup(f.svc.Close)
	return f
}

func newCards(n int) []models.Flashcard {
	cards := make([]models.Flashcard, n)
	for i := range cards {
		cards[i] = models.Flashcard{ID: int64(i + 1), DeckID: 1, Front: "f", Back: "b", Difficulty: models.DifficultyMedium}
	}
	return cards
}

func TestStudy_FullSession(t *testing.T) {
	f := newStudyFixture(t, newCards(2))
	ctx := context.Background()

	f.cards.On("ApplyReview", ctx, mock.Anything, mock.Anything).Return(nil).Twice()
	f.cards.On("InsertReviewHistory", ctx, mock.Anything).Return(nil).Twice()
	f.queue.On("EnqueueSessionRecord", mock.MatchedBy(func(r models.StudySession) bool {
		return r.DeckID == 1 && r.CardsStudied == 2 && r.CorrectAnswers == 1 && r.IncorrectAnswers == 1 &&
			r.CardsGraduated == 1 && !r.TimedOut && r.EndedAt != nil
	})).Return(nil).Once()

	snap, err := f.svc.Start(ctx, 1, session.ModeSpaced, 0)
	require.NoError(t, err)
	assert.Equal(t, session.StateActive, snap.State)
	assert.Equal(t, 2, snap.TotalCards)
	require.NotNil(t, snap.Current)
	assert.Equal(t, 1, f.svc.Active())

	snap, err = f.svc.Flip(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, session.SideBack, snap.Side)

	res, err := f.svc.Answer(ctx, snap.ID, true, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Review.Card.TimesReviewed)
	assert.Equal(t, session.SideFront, res.Session.Side)
	assert.Equal(t, 1, res.Session.Cursor)

	res, err = f.svc.Answer(ctx, snap.ID, false, 7*time.Second)
	require.NoError(t, err)
	assert.Equal(t, session.StateCompleted, res.Session.State)
	assert.Equal(t, 2, res.Session.Stats.CardsStudied)
	assert.InDelta(t, 4500, res.Session.Stats.AverageResponseTime, 1e-9)

	_, err = f.svc.Answer(ctx, snap.ID, true, time.Second)
	requireAppError(t, err, errors.ErrCodeConflict)

	f.cards.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestStudy_AnswerNotStoredKeepsCardCurrent(t *testing.T) {
	f := newStudyFixture(t, newCards(2))
	ctx := context.Background()

	f.cards.On("ApplyReview", ctx, mock.Anything, true).Return(stderrors.New("disk I/O error")).Once()
	f.cards.On("ApplyReview", ctx, mock.Anything, true).Return(nil).Once()
	f.cards.On("InsertReviewHistory", ctx, mock.Anything).Return(nil).Once()

	snap, err := f.svc.Start(ctx, 1, session.ModeSpaced, 0)
	require.NoError(t, err)
	first := snap.Current.ID

	_, err = f.svc.Answer(ctx, snap.ID, true, time.Second)
	requireAppError(t, err, errors.ErrCodeInternal)

	snap, err = f.svc.Get(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Cursor)
	assert.Zero(t, snap.Stats.CardsStudied)
	require.NotNil(t, snap.Current)
	assert.Equal(t, first, snap.Current.ID)
	assert.Zero(t, snap.Current.TimesReviewed)

	res, err := f.svc.Answer(ctx, snap.ID, true, time.Second)
	require.NoError(t, err)
	assert.Equal(t, first, res.Review.Card.ID)
	assert.Equal(t, 1, res.Session.Cursor)
	assert.Equal(t, 1, res.Session.Stats.CardsStudied)
	assert.Equal(t, 1, res.Session.Stats.CorrectAnswers)
	f.cards.AssertExpectations(t)
}

func TestStudy_EmptyDeck(t *testing.T) {
	f := newStudyFixture(t, nil)

	snap, err := f.svc.Start(context.Background(), 1, session.ModeSpaced, 10)
	require.NoError(t, err)
	assert.Equal(t, session.StateEmpty, snap.State)
	assert.Zero(t, f.svc.Active())

	_, err = f.svc.Get(context.Background(), snap.ID)
	requireAppError(t, err, errors.ErrCodeNotFound)
}

func TestStudy_UnknownDeckAndSession(t *testing.T) {
	f := newStudyFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, 2, session.ModeSpaced, 0)
	requireAppError(t, err, errors.ErrCodeNotFound)

	_, err = f.svc.Flip(ctx, "missing")
	requireAppError(t, err, errors.ErrCodeNotFound)
}

func TestStudy_MaxCardsIsCapped(t *testing.T) {
	f := newStudyFixture(t, newCards(30))

	snap, err := f.svc.Start(context.Background(), 1, session.ModeSequential, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, snap.TotalCards)

	snap, err = f.svc.Start(context.Background(), 1, session.ModeSequential, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, snap.TotalCards)
}

func TestStudy_SkipPreviousFinish(t *testing.T) {
	f := newStudyFixture(t, newCards(3))
	ctx := context.Background()
	f.queue.On("EnqueueSessionRecord", mock.Anything).Return(nil).Once()

	snap, err := f.svc.Start(ctx, 1, session.ModeSpaced, 0)
	require.NoError(t, err)

	snap, err = f.svc.Skip(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Cursor)

	snap, err = f.svc.Previous(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Cursor)

	snap, err = f.svc.Finish(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StateCompleted, snap.State)
	assert.Zero(t, snap.Stats.CardsStudied)

	// finishing again is harmless and does not record twice
	_, err = f.svc.Finish(ctx, snap.ID)
	require.NoError(t, err)
	f.queue.AssertExpectations(t)
	f.cards.AssertNotCalled(t, "ApplyReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestStudy_Sweep(t *testing.T) {
	f := newStudyFixture(t, newCards(2))
	ctx := context.Background()
	f.queue.On("EnqueueSessionRecord", mock.MatchedBy(func(r models.StudySession) bool {
		return r.TimedOut
	})).Return(nil).Once()
	f.queue.On("EnqueueSessionRecord", mock.MatchedBy(func(r models.StudySession) bool {
		return !r.TimedOut
	})).Return(nil).Once()

	stale, err := f.svc.Start(ctx, 1, session.ModeSpaced, 0)
	require.NoError(t, err)
	done, err := f.svc.Start(ctx, 1, session.ModeSpaced, 0)
	require.NoError(t, err)
	_, err = f.svc.Finish(ctx, done.ID)
	require.NoError(t, err)

	// within retention and timeout nothing moves
	expired, evicted := f.svc.Sweep(now.Add(10 * time.Minute))
	assert.Zero(t, expired)
	assert.Zero(t, evicted)
	assert.Equal(t, 2, f.svc.Active())

	// past retention of the finished one, before the timeout of the other
	expired, evicted = f.svc.Sweep(now.Add(45 * time.Minute))
	assert.Zero(t, expired)
	assert.Equal(t, 1, evicted)

	// the remaining one times out; its end time is already past retention
	expired, evicted = f.svc.Sweep(now.Add(time.Hour))
	assert.Equal(t, 1, expired)
	assert.Equal(t, 1, evicted)
	assert.Zero(t, f.svc.Active())

	_, err = f.svc.Get(ctx, stale.ID)
	requireAppError(t, err, errors.ErrCodeNotFound)
	f.queue.AssertExpectations(t)
}
