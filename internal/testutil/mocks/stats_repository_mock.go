package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/flashdeck/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) DeckPerformance(ctx context.Context, deckID int64, now time.Time) (*models.DeckPerformance, error) {
	args := m.Called(ctx, deckID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeckPerformance), args.Error(1)
}

func (m *MockStatsRepository) DifficultyStats(ctx context.Context, deckID int64) ([]models.DifficultyStat, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DifficultyStat), args.Error(1)
}

func (m *MockStatsRepository) ResponseTimeStats(ctx context.Context, deckID int64) (*models.ResponseTimeStat, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResponseTimeStat), args.Error(1)
}
