package models

// DeckStats summarises how much study a card collection needs right now.
type DeckStats struct {
	TotalCards           int `json:"total_cards"`
	DueCards             int `json:"due_cards"`
	NewCards             int `json:"new_cards"`
	OverdueCards         int `json:"overdue_cards"`
	EstimatedTimeMinutes int `json:"estimated_time_minutes"`
}
