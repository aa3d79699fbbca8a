package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/api"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/worker"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().String("addr", "", "Listen address (overrides ADDR)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, log := a.cfg, a.log

	log.Info("===========================================")
	log.Info("flashdeck server starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("session_max_cards=%d", cfg.SessionMaxCards)
	log.Debug("session_timeout=%v", cfg.SessionTimeout())
	log.Debug("session_retention=%v", cfg.SessionRetention())
	log.Debug("sweep_interval=%v", cfg.SweepInterval())
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)

	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)
	sessionPool := worker.NewPool(1, cfg.ImportQueueSize)
	queue := jobs.NewWorkerQueue(importPool, sessionPool, a.deckService, a.sessions)

	study := services.NewStudyService(a.decks, a.cards, queue, a.scheduler, services.StudyOptions{
		MaxCards:  cfg.SessionMaxCards,
		Timeout:   cfg.SessionTimeout(),
		Retention: cfg.SessionRetention(),
	})
	sweeper := jobs.NewSweeper(study, cfg.SweepInterval())

	srv := &api.Server{
		DB:               a.db,
		DeckService:      a.deckService,
		FlashcardService: a.flashcardService,
		StudyService:     study,
		Jobs:             queue,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	importPool.Start(ctx)
	sessionPool.Start(ctx)
	if err := sweeper.Start(); err != nil {
		log.Error("failed to start session sweeper: %v", err)
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case sig := <-stop:
		log.Info("received signal %v, initiating graceful shutdown", sig)
	case err := <-serveErr:
		if err != nil {
			log.Error("HTTP server error: %v", err)
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping session sweeper")
	sweeper.Stop()
	study.Close()

	log.Debug("stopping import pool")
	importPool.Stop()
	log.Debug("stopping session pool")
	sessionPool.Stop()

	log.Info("===========================================")
	log.Info("flashdeck server stopped")
	log.Info("===========================================")
	return nil
}
