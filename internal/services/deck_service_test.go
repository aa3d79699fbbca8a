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
	"github.com/vytor/flashdeck/internal/testutil/mocks"
)

type deckFixture struct {
	decks    *mocks.MockDeckRepository
	cards    *mocks.MockFlashcardRepository
	sessions *mocks.MockSessionRepository
	stats    *mocks.MockStatsRepository
	svc      services.DeckService
}

func newDeckFixture() deckFixture {
	f := deckFixture{
		decks:    new(mocks.MockDeckRepository),
		cards:    new(mocks.MockFlashcardRepository),
		sessions: new(mocks.MockSessionRepository),
		stats:    new(mocks.MockStatsRepository),
	}
	f.svc = services.NewDeckService(f.decks, f.cards, f.sessions, f.stats, testScheduler())
	return f
}

func ptr(t time.Time) *time.Time { return &t }

func TestCreateDeck(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Insert", ctx, models.Deck{Name: "Biology", Description: "cells"}).Return(int64(4), nil)
	f.decks.On("Get", ctx, int64(4)).Return(&models.Deck{ID: 4, Name: "Biology", Description: "cells"}, nil)

	deck, err := f.svc.CreateDeck(ctx, " Biology ", "cells ")
	require.NoError(t, err)
	assert.Equal(t, int64(4), deck.ID)

	_, err = f.svc.CreateDeck(ctx, "   ", "")
	requireAppError(t, err, errors.ErrCodeValidation)
}

func TestGetDeck_NotFound(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()
	f.decks.On("Get", ctx, int64(8)).Return(nil, nil)

	_, err := f.svc.GetDeck(ctx, 8)
	requireAppError(t, err, errors.ErrCodeNotFound)
	assert.True(t, errors.IsNotFound(err))
}

func TestDeckStatsAndDue(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	cards := []models.Flashcard{
		{ID: 1, Difficulty: models.DifficultyEasy},
		{ID: 2, NextReview: ptr(now.AddDate(0, 0, -3)), LastReviewed: ptr(now.AddDate(0, 0, -4)), TimesReviewed: 1},
		{ID: 3, NextReview: ptr(now.AddDate(0, 0, 2)), LastReviewed: ptr(now.AddDate(0, 0, -1)), TimesReviewed: 2},
		{ID: 4, Difficulty: models.DifficultyHard},
	}
	f.decks.On("Get", ctx, int64(1)).Return(&models.Deck{ID: 1}, nil)
	f.cards.On("ListByDeck", ctx, int64(1)).Return(cards, nil)

	stats, err := f.svc.DeckStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.DeckStats{
		TotalCards:           4,
		DueCards:             3,
		NewCards:             2,
		OverdueCards:         1,
		EstimatedTimeMinutes: 2,
	}, *stats)

	due, err := f.svc.DueCards(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, due, 3)
	assert.Equal(t, []int64{2, 4, 1}, []int64{due[0].ID, due[1].ID, due[2].ID})

	due, err = f.svc.DueCards(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, due, 1)
}

func TestPerformance(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Get", ctx, int64(2)).Return(&models.Deck{ID: 2}, nil)
	f.stats.On("DeckPerformance", ctx, int64(2), now).Return(&models.DeckPerformance{TotalCards: 3, OverallAccuracy: 75}, nil)
	f.stats.On("DifficultyStats", ctx, int64(2)).Return([]models.DifficultyStat{{Difficulty: models.DifficultyHard, TotalCards: 3}}, nil)
	f.stats.On("ResponseTimeStats", ctx, int64(2)).Return(&models.ResponseTimeStat{Reviews: 4, MedianMs: 2500}, nil)

	report, err := f.svc.Performance(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Summary.TotalCards)
	assert.Equal(t, 75.0, report.Summary.OverallAccuracy)
	assert.Len(t, report.ByDifficulty, 1)
	assert.Equal(t, int64(2500), report.ResponseTimes.MedianMs)
	f.stats.AssertExpectations(t)
}

func TestPerformance_StoreFailure(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Get", ctx, int64(2)).Return(&models.Deck{ID: 2}, nil)
	f.stats.On("DeckPerformance", ctx, int64(2), now).Return(nil, stderrors.New("disk I/O error"))

	_, err := f.svc.Performance(ctx, 2)
	requireAppError(t, err, errors.ErrCodeInternal)

	f.decks.On("Get", ctx, int64(9)).Return(nil, nil)
	_, err = f.svc.Performance(ctx, 9)
	requireAppError(t, err, errors.ErrCodeNotFound)
}

func TestExport(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Get", ctx, int64(2)).Return(&models.Deck{ID: 2, Name: "Kana", Description: "hiragana"}, nil)
	f.cards.On("ListByDeck", ctx, int64(2)).Return([]models.Flashcard{{ID: 1, Front: "あ", Back: "a"}}, nil)

	export, err := f.svc.Export(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Kana", export.Name)
	assert.Equal(t, now, export.ExportedAt)
	assert.Len(t, export.Cards, 1)
}

func TestImport(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	reviewed := now.AddDate(0, 0, -1)
	export := models.DeckExport{
		Name: "Kana",
		Cards: []models.Flashcard{
			{ID: 90, DeckID: 12, Front: "あ", Back: "a", Difficulty: "EASY", TimesReviewed: 2, LastReviewed: &reviewed},
			{ID: 91, DeckID: 12, Front: "い", Back: "i", Difficulty: "unknown"},
		},
	}
	f.decks.On("Insert", ctx, models.Deck{Name: "Kana"}).Return(int64(3), nil)
	f.decks.On("Get", ctx, int64(3)).Return(&models.Deck{ID: 3, Name: "Kana"}, nil)
	f.cards.On("InsertBatch", ctx, mock.MatchedBy(func(cards []models.Flashcard) bool {
		return len(cards) == 2 &&
			cards[0].ID == 0 && cards[0].DeckID == 3 && cards[0].Difficulty == models.DifficultyEasy &&
			cards[0].TimesReviewed == 2 && cards[0].LastReviewed != nil &&
			cards[1].Difficulty == models.DifficultyMedium
	})).Return([]int64{1, 2}, nil)

	deck, err := f.svc.Import(ctx, export)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deck.ID)
	f.cards.AssertExpectations(t)
}

func TestImport_RemovesDeckWhenCardsFail(t *testing.T) {
	f := newDeckFixture()
	ctx := context.Background()

	f.decks.On("Insert", ctx, mock.Anything).Return(int64(3), nil)
	f.decks.On("Get", ctx, int64(3)).Return(&models.Deck{ID: 3, Name: "Kana"}, nil)
	f.cards.On("InsertBatch", ctx, mock.Anything).Return(nil, stderrors.New("constraint failed"))
	f.decks.On("Delete", ctx, int64(3)).Return(nil).Once()

	_, err := f.svc.Import(ctx, models.DeckExport{Name: "Kana", Cards: []models.Flashcard{{Front: "a", Back: "b"}}})
	requireAppError(t, err, errors.ErrCodeInternal)
	f.decks.AssertExpectations(t)
}

func TestValidateExport(t *testing.T) {
	tests := []struct {
		name    string
		export  models.DeckExport
		wantErr bool
	}{
		{name: "valid", export: models.DeckExport{Name: "ok", Cards: []models.Flashcard{{Front: "f", Back: "b"}}}},
		{name: "no cards is fine", export: models.DeckExport{Name: "ok"}},
		{name: "missing name", export: models.DeckExport{}, wantErr: true},
		{name: "blank back", export: models.DeckExport{Name: "x", Cards: []models.Flashcard{{Front: "f", Back: " "}}}, wantErr: true},
		{name: "negative counter", export: models.DeckExport{Name: "x", Cards: []models.Flashcard{{Front: "f", Back: "b", CorrectCount: -1}}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := services.ValidateExport(tt.export)
			if tt.wantErr {
				requireAppError(t, err, errors.ErrCodeValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
