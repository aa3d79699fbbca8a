package services_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/testutil/mocks"
)

var now = time.Date(2024, time.September, 2, 14, 0, 0, 0, time.UTC)

func testScheduler() *flashcard.Scheduler {
	return flashcard.NewScheduler(flashcard.DefaultConfig(), flashcard.WithClock(func() time.Time { return now }))
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestReviewCard_FreshCardGraduates(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockFlashcardRepository)
	svc := services.NewFlashcardService(decks, cards, testScheduler())
	ctx := context.Background()

	card := &models.Flashcard{ID: 7, DeckID: 1, Front: "q", Back: "a", Difficulty: models.DifficultyMedium}
	cards.On("Get", ctx, int64(7)).Return(card, nil)
	cards.On("ApplyReview", ctx, mock.MatchedBy(func(c models.Flashcard) bool {
		return c.ID == 7 && c.TimesReviewed == 1 && c.CorrectCount == 1 &&
			c.NextReview != nil && c.NextReview.Equal(now.AddDate(0, 0, 1))
	}), true).Return(nil)
	cards.On("InsertReviewHistory", ctx, mock.MatchedBy(func(h models.ReviewHistory) bool {
		return h.FlashcardID == 7 && h.Quality == int(flashcard.QualityGood) && h.Correct && h.ResponseTimeMs == 5000
	})).Return(nil)

	review, err := svc.ReviewCard(ctx, 7, true, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, flashcard.QualityGood, review.Quality)
	assert.Equal(t, 1, review.Result.Interval)
	assert.InDelta(t, 1.86, review.Result.EaseFactor, 1e-9)
	cards.AssertExpectations(t)
}

func TestReviewCard_HistoryFailureIsIgnored(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockFlashcardRepository)
	svc := services.NewFlashcardService(decks, cards, testScheduler())
	ctx := context.Background()

	cards.On("Get", ctx, int64(3)).Return(&models.Flashcard{ID: 3, TimesReviewed: 4}, nil)
	cards.On("ApplyReview", ctx, mock.Anything, false).Return(nil)
	cards.On("InsertReviewHistory", ctx, mock.Anything).Return(stderrors.New("disk full"))

	review, err := svc.ReviewCard(ctx, 3, false, time.Second)
	require.NoError(t, err)
	assert.Equal(t, flashcard.QualityIncorrect, review.Quality)
	assert.Equal(t, 0, review.Card.TimesReviewed)
}

func TestReviewCard_NotFound(t *testing.T) {
	cards := new(mocks.MockFlashcardRepository)
	svc := services.NewFlashcardService(new(mocks.MockDeckRepository), cards, testScheduler())
	ctx := context.Background()

	cards.On("Get", ctx, int64(99)).Return(nil, nil)

	_, err := svc.ReviewCard(ctx, 99, true, time.Second)
	requireAppError(t, err, errors.ErrCodeNotFound)
	cards.AssertNotCalled(t, "ApplyReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewCard_NegativeResponseTimeIsVeryEasy(t *testing.T) {
	cards := new(mocks.MockFlashcardRepository)
	svc := services.NewFlashcardService(new(mocks.MockDeckRepository), cards, testScheduler())
	ctx := context.Background()

	cards.On("Get", ctx, int64(1)).Return(&models.Flashcard{ID: 1, DeckID: 1, Difficulty: models.DifficultyHard}, nil)
	cards.On("ApplyReview", ctx, mock.Anything, true).Return(nil).Once()
	cards.On("InsertReviewHistory", ctx, mock.MatchedBy(func(h models.ReviewHistory) bool {
		return h.ResponseTimeMs == -1000
	})).Return(nil).Once()

	review, err := svc.ReviewCard(ctx, 1, true, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, flashcard.QualityVeryEasy, review.Quality)
	cards.AssertExpectations(t)
}

func TestCreateCard(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	cards := new(mocks.MockFlashcardRepository)
	svc := services.NewFlashcardService(decks, cards, testScheduler())
	ctx := context.Background()

	decks.On("Get", ctx, int64(2)).Return(&models.Deck{ID: 2, Name: "d"}, nil)
	cards.On("Insert", ctx, models.Flashcard{DeckID: 2, Front: "hola", Back: "hello", Difficulty: models.DifficultyMedium}).
		Return(int64(11), nil)
	cards.On("Get", ctx, int64(11)).Return(&models.Flashcard{ID: 11, DeckID: 2, Front: "hola", Back: "hello"}, nil)

	created, err := svc.CreateCard(ctx, models.Flashcard{
		DeckID:        2,
		Front:         "  hola ",
		Back:          "hello",
		TimesReviewed: 9,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
	cards.AssertExpectations(t)
}

func TestCreateCard_Validation(t *testing.T) {
	svc := services.NewFlashcardService(new(mocks.MockDeckRepository), new(mocks.MockFlashcardRepository), testScheduler())
	ctx := context.Background()

	tests := []struct {
		name string
		card models.Flashcard
	}{
		{name: "empty front", card: models.Flashcard{DeckID: 1, Front: " ", Back: "b"}},
		{name: "empty back", card: models.Flashcard{DeckID: 1, Front: "f"}},
		{name: "bad difficulty", card: models.Flashcard{DeckID: 1, Front: "f", Back: "b", Difficulty: "brutal"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCard(ctx, tt.card)
			requireAppError(t, err, errors.ErrCodeValidation)
		})
	}
}

func TestCreateCard_MissingDeck(t *testing.T) {
	decks := new(mocks.MockDeckRepository)
	svc := services.NewFlashcardService(decks, new(mocks.MockFlashcardRepository), testScheduler())
	ctx := context.Background()

	decks.On("Get", ctx, int64(5)).Return(nil, nil)

	_, err := svc.CreateCard(ctx, models.Flashcard{DeckID: 5, Front: "f", Back: "b"})
	requireAppError(t, err, errors.ErrCodeNotFound)
}

func TestUpdateDeleteReset_MapMissingRows(t *testing.T) {
	cards := new(mocks.MockFlashcardRepository)
	svc := services.NewFlashcardService(new(mocks.MockDeckRepository), cards, testScheduler())
	ctx := context.Background()

	cards.On("Update", ctx, mock.Anything).Return(sql.ErrNoRows)
	cards.On("Delete", ctx, int64(4)).Return(sql.ErrNoRows)
	cards.On("ResetProgress", ctx, int64(4)).Return(sql.ErrNoRows)

	_, err := svc.UpdateCard(ctx, models.Flashcard{ID: 4, Front: "f", Back: "b"})
	requireAppError(t, err, errors.ErrCodeNotFound)
	requireAppError(t, svc.DeleteCard(ctx, 4), errors.ErrCodeNotFound)
	_, err = svc.ResetCard(ctx, 4)
	requireAppError(t, err, errors.ErrCodeNotFound)
}

func TestListCards(t *testing.T) {
	cards := new(mocks.MockFlashcardRepository)
	svc := services.NewFlashcardService(new(mocks.MockDeckRepository), cards, testScheduler())
	ctx := context.Background()

	filter := models.FlashcardFilter{DeckID: 1, Limit: 2}
	cards.On("List", ctx, filter).Return([]models.Flashcard{{ID: 1}, {ID: 2}}, nil)
	cards.On("Count", ctx, filter).Return(5, nil)

	list, total, err := svc.ListCards(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 5, total)
}
