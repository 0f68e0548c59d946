package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/mohamedkhairy/pricepulse/internal/config"
	"github.com/mohamedkhairy/pricepulse/pkg/logger"
)

// Scheduler drives the engine at a fixed interval. Singleton mode keeps a
// slow cycle from overlapping the next tick.
type Scheduler struct {
	engine *Engine
	cron   *gocron.Scheduler
	cfg    config.EngineConfig
}

// NewScheduler creates a scheduler for the engine
func NewScheduler(engine *Engine, cfg config.EngineConfig) *Scheduler {
	return &Scheduler{
		engine: engine,
		cron:   gocron.NewScheduler(time.UTC),
		cfg:    cfg,
	}
}

// Start schedules the recurring evaluation cycle and returns immediately.
// The first cycle runs after the configured initial delay so the process
// finishes warming up before hitting market providers.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.Every(s.cfg.ScanInterval).
		StartAt(time.Now().UTC().Add(s.cfg.InitialDelay)).
		SingletonMode().
		Do(func() {
			s.engine.RunCycle(ctx)
		})
	if err != nil {
		return fmt.Errorf("failed to schedule evaluation cycle: %w", err)
	}

	s.cron.StartAsync()
	logger.Info("Evaluation scheduler started",
		logger.Duration("interval", s.cfg.ScanInterval),
		logger.Duration("initial_delay", s.cfg.InitialDelay),
	)
	return nil
}

// Stop halts scheduling and waits for a running cycle to finish
func (s *Scheduler) Stop() {
	s.cron.Stop()

	// RunCycle holds the engine mutex for the duration of a cycle; taking
	// it here blocks until any in-flight cycle drains
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()

	logger.Info("Evaluation scheduler stopped")
}
