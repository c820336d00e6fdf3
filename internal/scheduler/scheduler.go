// Package scheduler wires up the cron job that periodically cancels open jobs
// whose deadline has passed.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and manages the expiry sweep.
type Scheduler struct {
	cron *cron.Cron
	pool *pgxpool.Pool
	spec string // cron spec, e.g. "@every 1h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(pool *pgxpool.Pool, intervalHours int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		pool: pool,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so restarts don't leave stale jobs open for another interval.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started, firing %s", s.spec)

	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSweep cancels every open job past its deadline. Jobs with an accepted
// bid are in_progress and therefore untouched.
func (s *Scheduler) runSweep(ctx context.Context) {
	res, err := s.pool.Exec(ctx,
		`UPDATE jobs SET status = 'canceled', updated_at = NOW()
         WHERE status = 'open' AND deadline_date < NOW()`)
	if err != nil {
		log.Printf("[scheduler] expiry sweep failed: %v", err)
		return
	}
	if n := res.RowsAffected(); n > 0 {
		log.Printf("[scheduler] expired %d open job(s) past deadline", n)
	}
}
