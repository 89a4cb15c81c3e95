package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/store"
)

// Scheduler sweeps all stored accounts on a fixed interval, running a
// sequential sync pass for each. On-demand runs triggered through the
// HTTP surface are independent of the scheduler.
type Scheduler struct {
	accounts store.AccountStore
	orch     *Orchestrator
	interval time.Duration
	days     int
	logger   *zap.Logger

	stopCh  chan struct{}
	mu      sync.Mutex
	running bool

	// sweeping prevents overlapping sweeps when a pass outlasts the
	// interval. Skipped ticks are logged, not queued.
	sweeping sync.Mutex
}

// NewScheduler creates a scheduler that syncs every account's default
// folders over the given day window.
func NewScheduler(
	accounts store.AccountStore,
	orch *Orchestrator,
	interval time.Duration,
	days int,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		accounts: accounts,
		orch:     orch,
		interval: interval,
		days:     days,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop in a background goroutine. Calling
// Start on a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("sync scheduler starting", zap.Duration("interval", s.interval))

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopCh:
				s.logger.Info("sync scheduler stopped")
				return
			}
		}
	}()
}

// Stop halts the sweep loop. An in-flight sweep finishes its current
// account before the goroutine exits.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
	s.running = false
}

// sweep runs one sync pass over every account, sequentially.
func (s *Scheduler) sweep() {
	if !s.sweeping.TryLock() {
		s.logger.Warn("previous sweep still running, skipping this cycle")
		return
	}
	defer s.sweeping.Unlock()

	ctx := context.Background()

	accounts, err := s.accounts.ListAccounts(ctx)
	if err != nil {
		s.logger.Error("listing accounts for sweep", zap.Error(err))
		return
	}

	for _, acc := range accounts {
		inserted, err := s.orch.Run(ctx, acc, nil, s.days)
		if err != nil {
			s.logger.Warn("scheduled sync failed",
				zap.String("account_id", acc.ID),
				zap.Error(err))
			continue
		}
		s.logger.Info("scheduled sync finished",
			zap.String("account_id", acc.ID),
			zap.Int("inserted", inserted))
	}
}
