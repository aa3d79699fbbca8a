package cli

import (
	"github.com/spf13/cobra"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/flashcard"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/services"
)

// NewRootCommand builds the flashdeck command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashdeck",
		Short:         "Spaced-repetition flashcards",
		Long:          "flashdeck schedules flashcard reviews with SM-2 and serves decks and study sessions over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("db", "", "Path to SQLite database (overrides DB_PATH)")
	root.PersistentFlags().String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")

	root.AddCommand(newServeCommand())
	root.AddCommand(newStatsCommand())
	root.AddCommand(newDueCommand())
	root.AddCommand(newImportCommand())
	root.AddCommand(newExportCommand())
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}

// app holds what every subcommand needs: validated configuration, an open
// database and the services built on it.
type app struct {
	cfg       config.Config
	db        *db.DB
	log       *logger.Logger
	scheduler *flashcard.Scheduler

	decks    repository.DeckRepository
	cards    repository.FlashcardRepository
	sessions repository.SessionRepository

	deckService      services.DeckService
	flashcardService services.FlashcardService
}

// loadConfig applies command-line overrides on top of the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Load()
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if addr, err := cmd.Flags().GetString("addr"); err == nil && addr != "" {
		cfg.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}

	a := &app{
		cfg:       cfg,
		db:        database,
		log:       log,
		scheduler: flashcard.NewScheduler(cfg.Scheduler()),
		decks:     sqlite.NewDeckRepository(database.DB),
		cards:     sqlite.NewFlashcardRepository(database.DB),
		sessions:  sqlite.NewSessionRepository(database.DB),
	}
	stats := sqlite.NewStatsRepository(database.DB)
	a.deckService = services.NewDeckService(a.decks, a.cards, a.sessions, stats, a.scheduler)
	a.flashcardService = services.NewFlashcardService(a.decks, a.cards, a.scheduler)
	return a, nil
}

func (a *app) Close() {
	a.log.Debug("closing database connection")
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database: %v", err)
	}
}
