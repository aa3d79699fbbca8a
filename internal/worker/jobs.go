package worker

import (
	"context"
	"fmt"

	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/models"
	"github.com/vytor/flashdeck/internal/repository"
)

// DeckImporter creates a deck and its cards from an export document.
type DeckImporter interface {
	Import(ctx context.Context, export models.DeckExport) (*models.Deck, error)
}

// ImportDeckJob loads an exported deck in the background.
type ImportDeckJob struct {
	Importer DeckImporter
	Export   models.DeckExport
}

func (j *ImportDeckJob) Name() string { return "import_deck" }

func (j *ImportDeckJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"deck":  j.Export.Name,
		"cards": len(j.Export.Cards),
	})
	log.Info("starting background deck import")

	deck, err := j.Importer.Import(ctx, j.Export)
	if err != nil {
		return fmt.Errorf("import deck %q: %w", j.Export.Name, err)
	}
	log.Info("deck imported: id=%d", deck.ID)
	return nil
}

// SaveSessionJob persists the summary of a finished study session.
type SaveSessionJob struct {
	Sessions repository.SessionRepository
	Record   models.StudySession
}

func (j *SaveSessionJob) Name() string { return "save_session" }

func (j *SaveSessionJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("session_id", j.Record.ID)
	log.Debug("saving session record: studied=%d, correct=%d, timed_out=%t",
		j.Record.CardsStudied, j.Record.CorrectAnswers, j.Record.TimedOut)

	if err := j.Sessions.Insert(ctx, j.Record); err != nil {
		return fmt.Errorf("save session %s: %w", j.Record.ID, err)
	}
	return nil
}
