package api

import (
	"context"

	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/services"
)

// HealthChecker reports whether a backing store can serve requests.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

type Server struct {
	DB               HealthChecker
	DeckService      services.DeckService
	FlashcardService services.FlashcardService
	StudyService     services.StudyService
	Jobs             jobs.JobQueue
}
