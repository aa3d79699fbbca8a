package models

import "time"

type Deck struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DeckExport is the single JSON document a deck is exported to and imported from.
type DeckExport struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ExportedAt  time.Time   `json:"exported_at"`
	Cards       []Flashcard `json:"cards"`
}

// StudySession is the persisted record of a finished study session.
type StudySession struct {
	ID                  string     `json:"id"`
	DeckID              int64      `json:"deck_id"`
	Mode                string     `json:"mode"`
	TotalCards          int        `json:"total_cards"`
	CardsStudied        int        `json:"cards_studied"`
	CorrectAnswers      int        `json:"correct_answers"`
	IncorrectAnswers    int        `json:"incorrect_answers"`
	AverageResponseTime float64    `json:"average_response_time_ms"`
	CardsGraduated      int        `json:"cards_graduated"`
	PerfectCards        int        `json:"perfect_cards"`
	TimedOut            bool       `json:"timed_out"`
	StartedAt           time.Time  `json:"started_at"`
	EndedAt             *time.Time `json:"ended_at"`
}
