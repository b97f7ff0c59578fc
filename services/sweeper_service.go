package services

import (
	"context"
	"log"
	"time"
)

// Default sweep cadence, matching the reference behavior of the pool.
const (
	DefaultSweepInterval  = 2 * time.Minute
	DefaultStaleThreshold = 2 * time.Minute
)

// SweeperService periodically times out waiting entries whose partner never
// arrived. A failed run is just retried on the next tick; stale entries wait
// at most one extra cycle.
type SweeperService struct {
	Store      Store
	Interval   time.Duration
	StaleAfter time.Duration
}

// NewSweeperService creates a sweeper; zero durations fall back to the
// 2-minute defaults.
func NewSweeperService(store Store, interval, staleAfter time.Duration) *SweeperService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if staleAfter <= 0 {
		staleAfter = DefaultStaleThreshold
	}
	return &SweeperService{Store: store, Interval: interval, StaleAfter: staleAfter}
}

// Run sweeps on a fixed ticker until the context is cancelled.
func (s *SweeperService) Run(ctx context.Context) {
	log.Printf("Pool sweeper started (every %s, staleness %s)", s.Interval, s.StaleAfter)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("Pool sweeper stopped")
			return
		case <-ticker.C:
			if err := s.SweepOnce(ctx); err != nil {
				log.Printf("Pool sweep failed, will retry next tick: %v", err)
			}
		}
	}
}

// SweepOnce marks every over-threshold waiting entry as timed_out. Each mark
// is an independent conditional write, so entries that got matched between
// the scan and the write are left alone and re-sweeping is harmless.
func (s *SweeperService) SweepOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-s.StaleAfter)
	stale, err := s.Store.ListStaleWaiting(ctx, cutoff)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	userIDs := make([]string, 0, len(stale))
	for _, entry := range stale {
		userIDs = append(userIDs, entry.UserID)
	}
	marked, err := s.Store.MarkTimedOut(ctx, userIDs)
	if marked > 0 {
		log.Printf("Timed out %d stale waiting entries", marked)
	}
	return err
}
