package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/flashdeck/internal/logger"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns a readiness probe. Returns 200 if the database answers, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if err := s.checkDatabase(r.Context()); err != nil {
		log.Warn("readiness check failed - database: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
		return
	}

	body := map[string]any{"status": "ready"}
	if v, ok := s.DB.(interface {
		SchemaVersion(context.Context) (string, error)
	}); ok {
		if version, err := v.SchemaVersion(r.Context()); err == nil {
			body["schema_version"] = version
		}
	}
	if s.StudyService != nil {
		body["active_sessions"] = s.StudyService.Active()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) checkDatabase(ctx context.Context) error {
	if s.DB == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.DB.Healthy(ctx)
}
