package jobs

import (
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	importPool  *worker.Pool
	sessionPool *worker.Pool
	importer    worker.DeckImporter
	sessions    repository.SessionRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(
	importPool *worker.Pool,
	sessionPool *worker.Pool,
	importer worker.DeckImporter,
	sessions repository.SessionRepository,
) *WorkerQueue {
	return &WorkerQueue{
		importPool:  importPool,
		sessionPool: sessionPool,
		importer:    importer,
		sessions:    sessions,
	}
}

func (q *WorkerQueue) EnqueueImport(export models.DeckExport) error {
	return q.importPool.Submit(&worker.ImportDeckJob{
		Importer: q.importer,
		Export:   export,
	})
}

func (q *WorkerQueue) EnqueueSessionRecord(record models.StudySession) error {
	return q.sessionPool.Submit(&worker.SaveSessionJob{
		Sessions: q.sessions,
		Record:   record,
	})
}
