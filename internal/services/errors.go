package services

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/vytor/flashdeck/internal/errors"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/session"
)

// mapStoreError turns a repository error into an AppError; sql.ErrNoRows
// means the row addressed by id does not exist.
func mapStoreError(ctx context.Context, err error, resource string, id any) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(resource, id)
	}
	logger.FromContext(ctx).Error("%s store error: %v", resource, err)
	return errors.NewInternalError(err)
}

func mapSessionError(err error) error {
	switch {
	case stderrors.Is(err, session.ErrNotActive):
		return errors.NewConflictError("session is not active", err)
	case stderrors.Is(err, session.ErrAlreadyStarted):
		return errors.NewConflictError("session already started", err)
	default:
		return errors.NewInternalError(err)
	}
}
