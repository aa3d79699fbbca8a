package models

// DeckPerformance summarises how well a deck is being learned.
type DeckPerformance struct {
	TotalCards   int `json:"total_cards"`
	TotalAnswers int `json:"total_answers"`
	// CardsMastered have passed at least three reviews in a row.
	CardsMastered int `json:"cards_mastered"`
	// CardsStruggling have more than three answers, most of them wrong.
	CardsStruggling int     `json:"cards_struggling"`
	CardsDue        int     `json:"cards_due"`
	CardsDueSoon    int     `json:"cards_due_soon"`
	OverallAccuracy float64 `json:"overall_accuracy"`
}

type DifficultyStat struct {
	Difficulty   Difficulty `json:"difficulty"`
	TotalCards   int        `json:"total_cards"`
	TotalAnswers int        `json:"total_answers"`
	AvgAccuracy  float64    `json:"avg_accuracy"`
}

type ResponseTimeStat struct {
	Reviews     int             `json:"reviews"`
	AvgTimeMs   float64         `json:"avg_time_ms"`
	MedianMs    int64           `json:"median_ms"`
	FastestMs   int64           `json:"fastest_ms"`
	SlowestMs   int64           `json:"slowest_ms"`
	TimeByGrade map[int]float64 `json:"time_by_quality"`
}

type PerformanceReport struct {
	Summary       DeckPerformance  `json:"summary"`
	ByDifficulty  []DifficultyStat `json:"by_difficulty"`
	ResponseTimes ResponseTimeStat `json:"response_times"`
}
