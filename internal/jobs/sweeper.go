package jobs

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vytor/flashdeck/internal/logger"
)

// SessionSweeper is implemented by anything that holds study sessions in memory.
type SessionSweeper interface {
	Sweep(now time.Time) (expired, evicted int)
}

// Sweeper periodically expires stale study sessions and evicts finished ones.
type Sweeper struct {
	scheduler *gocron.Scheduler
	target    SessionSweeper
	interval  time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// NewSweeper creates a sweeper that runs every interval once started.
func NewSweeper(target SessionSweeper, interval time.Duration) *Sweeper {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Sweeper{
		scheduler: s,
		target:    target,
		interval:  interval,
		now:       time.Now,
		log:       logger.Default().WithPrefix("sweeper"),
	}
}

// Start schedules the sweep and returns without blocking.
func (s *Sweeper) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.Run); err != nil {
		return err
	}
	s.log.Info("session sweeper running every %v", s.interval)
	s.scheduler.StartAsync()
	return nil
}

func (s *Sweeper) Stop() {
	s.scheduler.Stop()
	s.log.Debug("session sweeper stopped")
}

// Run performs a single sweep.
func (s *Sweeper) Run() {
	expired, evicted := s.target.Sweep(s.now())
	s.log.Debug("sweep finished: expired=%d, evicted=%d", expired, evicted)
}
