package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/testutil"
)

type StatsRepositorySuite struct {
	suite.Suite
	db     *sql.DB
	stats  repository.StatsRepository
	cards  repository.FlashcardRepository
	deckID int64
	now    time.Time
}

func (s *StatsRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.stats = sqlite.NewStatsRepository(s.db)
	s.cards = sqlite.NewFlashcardRepository(s.db)
	s.now = time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

	var err error
	s.deckID, err = sqlite.NewDeckRepository(s.db).Insert(context.Background(), models.Deck{Name: "stats"})
	s.Require().NoError(err)
}

func (s *StatsRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StatsRepositorySuite) insert(c models.Flashcard) int64 {
	c.DeckID = s.deckID
	if c.Front == "" {
		c.Front, c.Back = "q", "a"
	}
	id, err := s.cards.Insert(context.Background(), c)
	s.Require().NoError(err)
	return id
}

func (s *StatsRepositorySuite) TestDeckPerformance() {
	past := s.now.Add(-time.Hour)
	soon := s.now.Add(48 * time.Hour)
	later := s.now.AddDate(0, 1, 0)

	s.insert(models.Flashcard{Difficulty: models.DifficultyEasy})
	s.insert(models.Flashcard{NextReview: &past, LastReviewed: &past, TimesReviewed: 4, CorrectCount: 4})
	s.insert(models.Flashcard{NextReview: &soon, LastReviewed: &past, TimesReviewed: 0, CorrectCount: 1, IncorrectCount: 4})
	s.insert(models.Flashcard{NextReview: &later, LastReviewed: &past, TimesReviewed: 1, CorrectCount: 1})

	perf, err := s.stats.DeckPerformance(context.Background(), s.deckID, s.now)
	s.Require().NoError(err)
	s.Assert().Equal(4, perf.TotalCards)
	s.Assert().Equal(10, perf.TotalAnswers)
	s.Assert().Equal(1, perf.CardsMastered)
	s.Assert().Equal(1, perf.CardsStruggling)
	s.Assert().Equal(2, perf.CardsDue)
	s.Assert().Equal(1, perf.CardsDueSoon)
	s.Assert().InDelta(60.0, perf.OverallAccuracy, 1e-9)
}

func (s *StatsRepositorySuite) TestEmptyDeck() {
	perf, err := s.stats.DeckPerformance(context.Background(), s.deckID, s.now)
	s.Require().NoError(err)
	s.Assert().Zero(perf.TotalCards)
	s.Assert().Zero(perf.OverallAccuracy)

	times, err := s.stats.ResponseTimeStats(context.Background(), s.deckID)
	s.Require().NoError(err)
	s.Assert().Zero(times.Reviews)
	s.Assert().Empty(times.TimeByGrade)
}

func (s *StatsRepositorySuite) TestDifficultyStats() {
	s.insert(models.Flashcard{Difficulty: models.DifficultyEasy, CorrectCount: 3, IncorrectCount: 1})
	s.insert(models.Flashcard{Difficulty: models.DifficultyHard, CorrectCount: 1, IncorrectCount: 1})
	s.insert(models.Flashcard{Difficulty: models.DifficultyHard})

	stats, err := s.stats.DifficultyStats(context.Background(), s.deckID)
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Assert().Equal(models.DifficultyHard, stats[0].Difficulty)
	s.Assert().Equal(2, stats[0].TotalCards)
	s.Assert().InDelta(50.0, stats[0].AvgAccuracy, 1e-9)
	s.Assert().Equal(models.DifficultyEasy, stats[1].Difficulty)
	s.Assert().InDelta(75.0, stats[1].AvgAccuracy, 1e-9)
}

func (s *StatsRepositorySuite) TestResponseTimeStats() {
	ctx := context.Background()
	id := s.insert(models.Flashcard{})
	for _, h := range []struct {
		quality int
		ms      int64
	}{{5, 1000}, {5, 2000}, {3, 6000}, {1, 9000}} {
		s.Require().NoError(s.cards.InsertReviewHistory(ctx, models.ReviewHistory{
			FlashcardID: id, Quality: h.quality, Correct: h.quality >= 3, ResponseTimeMs: h.ms, ReviewedAt: s.now,
		}))
	}

	times, err := s.stats.ResponseTimeStats(ctx, s.deckID)
	s.Require().NoError(err)
	s.Assert().Equal(4, times.Reviews)
	s.Assert().InDelta(4500.0, times.AvgTimeMs, 1e-9)
	s.Assert().Equal(int64(6000), times.MedianMs)
	s.Assert().Equal(int64(1000), times.FastestMs)
	s.Assert().Equal(int64(9000), times.SlowestMs)
	s.Assert().InDelta(1500.0, times.TimeByGrade[5], 1e-9)
	s.Assert().InDelta(9000.0, times.TimeByGrade[1], 1e-9)
}

func TestStatsRepositorySuite(t *testing.T) {
	suite.Run(t, new(StatsRepositorySuite))
}
