package services

import (
	"context"
	"errors"
	"log"
	"time"

	"koshoku_server/models"

	"github.com/google/uuid"
)

const (
	matchmakerQueueSize = 256
	// commitAttempts bounds how often one trigger restarts its candidate
	// search after losing a commit race.
	commitAttempts = 5
	// deliveryAttempts bounds redelivery of one trigger after a transient
	// store failure.
	deliveryAttempts = 3
)

// MatchNotifier pushes a committed match out to its participants.
// categories maps each participant's user id to the category they entered
// the pool with.
type MatchNotifier interface {
	NotifyMatchFound(match models.Match, categories map[string]string)
}

// MatchmakerService pairs users out of the waiting pool. Triggers arrive on
// an in-process queue, one per waiting-entry creation, and are handled
// at-least-once: a redelivered trigger for an entry that already moved on is
// a no-op.
type MatchmakerService struct {
	Store    Store
	Notifier MatchNotifier

	queue chan string
}

// NewMatchmakerService creates a matchmaker against the given store. The
// notifier may be nil.
func NewMatchmakerService(store Store, notifier MatchNotifier) *MatchmakerService {
	return &MatchmakerService{
		Store:    store,
		Notifier: notifier,
		queue:    make(chan string, matchmakerQueueSize),
	}
}

// Enqueue schedules a pairing attempt for the user's freshly created waiting
// entry. Blocks briefly when the queue is saturated rather than dropping the
// trigger.
func (m *MatchmakerService) Enqueue(userID string) {
	m.queue <- userID
}

// Run consumes triggers until the context is cancelled.
func (m *MatchmakerService) Run(ctx context.Context) {
	log.Println("Matchmaker worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("Matchmaker worker stopped")
			return
		case userID := <-m.queue:
			m.deliver(ctx, userID)
		}
	}
}

// deliver retries one trigger through transient failures. Errors never
// propagate past here; the entry is either paired, still waiting, or has
// been rolled back to waiting.
func (m *MatchmakerService) deliver(ctx context.Context, userID string) {
	for attempt := 1; attempt <= deliveryAttempts; attempt++ {
		err := m.HandleEntryCreated(ctx, userID)
		if err == nil {
			return
		}
		log.Printf("Matchmaking attempt %d for user %s failed: %v", attempt, userID, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	log.Printf("Matchmaking for user %s gave up; entry left in the pool", userID)
}

// HandleEntryCreated runs the pairing algorithm for one trigger. Safe to
// call any number of times for the same user: anything but a live waiting
// entry is a no-op.
//
// The whole read-search-commit runs under optimistic concurrency: the commit
// asserts both entries are still waiting, and a lost race restarts the
// candidate search. At most one match is ever created per waiting entry.
func (m *MatchmakerService) HandleEntryCreated(ctx context.Context, userID string) error {
	for attempt := 0; attempt < commitAttempts; attempt++ {
		entry, err := m.Store.GetEntry(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			return nil // cancelled before we got here
		}
		if err != nil {
			return err
		}
		if entry.Status != models.StatusWaiting {
			return nil
		}

		// Miracle match first: someone waiting on the same category.
		candidate, err := m.Store.FindWaiting(ctx, entry.Category, userID)
		if err != nil {
			return err
		}
		if candidate == nil {
			// Fall back to anyone at all.
			candidate, err = m.Store.FindWaiting(ctx, "", userID)
			if err != nil {
				return err
			}
		}
		if candidate == nil {
			log.Printf("No partner for user %s yet; they stay in the pool", userID)
			return nil
		}

		match := models.Match{
			MatchID:        uuid.NewString(),
			Participants:   []string{userID, candidate.UserID},
			IsMiracleMatch: entry.Category == candidate.Category,
			CreatedAt:      time.Now(),
		}

		err = m.Store.CommitMatch(ctx, match)
		if err == nil {
			log.Printf("Matched %s with %s (miracle: %v)", userID, candidate.UserID, match.IsMiracleMatch)
			if m.Notifier != nil {
				m.Notifier.NotifyMatchFound(match, map[string]string{
					userID:           entry.Category,
					candidate.UserID: candidate.Category,
				})
			}
			return nil
		}
		if errors.Is(err, ErrConflict) {
			// Someone else paired one of us; re-read and search again.
			continue
		}

		// Datastore failure mid-transaction: put the trigger entry back into
		// a clean waiting state rather than leaving it half-written.
		m.rollback(ctx, userID, match.MatchID)
		return err
	}

	// Every attempt lost its commit race to other matchmakers. The entry is
	// still cleanly waiting; a future arrival will pick it up as a candidate.
	log.Printf("Matchmaking for user %s hit %d commit conflicts; leaving entry waiting", userID, commitAttempts)
	return nil
}

func (m *MatchmakerService) rollback(ctx context.Context, userID, matchID string) {
	if err := m.Store.ResetEntry(ctx, userID, matchID); err != nil {
		log.Printf("Failed to reset waiting entry for user %s: %v", userID, err)
	}
}
