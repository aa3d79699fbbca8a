package jobs

import "github.com/vytor/flashdeck/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueImport(export models.DeckExport) error
	EnqueueSessionRecord(record models.StudySession) error
}
