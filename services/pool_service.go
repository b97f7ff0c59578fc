package services

import (
	"context"
	"errors"
	"log"
	"time"

	"koshoku_server/models"
)

// PoolService is the client-facing surface of the waiting pool: enter,
// observe, cancel. Pairing itself happens in the matchmaker.
type PoolService struct {
	Store      Store
	Matchmaker *MatchmakerService
}

// Enter puts the caller into the waiting pool and triggers matchmaking.
// Any previous entry for the same user is overwritten, so a user never
// holds two entries at once.
func (ps *PoolService) Enter(ctx context.Context, userID, category string) (*models.WaitingEntry, error) {
	entry := models.WaitingEntry{
		UserID:    userID,
		Category:  category,
		Status:    models.StatusWaiting,
		CreatedAt: time.Now(),
	}
	if err := ps.Store.PutEntry(ctx, entry); err != nil {
		return nil, err
	}
	log.Printf("User %s entered the waiting pool (category: %s)", userID, category)
	ps.Matchmaker.Enqueue(userID)
	return &entry, nil
}

// Status returns the caller's current waiting entry.
func (ps *PoolService) Status(ctx context.Context, userID string) (*models.WaitingEntry, error) {
	return ps.Store.GetEntry(ctx, userID)
}

// Cancel removes the caller's entry while it is still waiting. The delete is
// conditional against the same store the matchmaker commits through, so a
// cancel can never race a pairing into a half-state: either the delete wins
// and the user was never matched, or the match wins and Cancel reports the
// matched entry instead.
func (ps *PoolService) Cancel(ctx context.Context, userID string) (bool, *models.WaitingEntry, error) {
	entry, err := ps.Store.GetEntry(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return true, nil, nil // nothing to cancel
	}
	if err != nil {
		return false, nil, err
	}

	if entry.Status != models.StatusWaiting {
		return false, entry, nil
	}

	err = ps.Store.DeleteWaitingEntry(ctx, userID)
	if err == nil {
		log.Printf("User %s left the waiting pool", userID)
		return true, nil, nil
	}
	if errors.Is(err, ErrConflict) {
		// The matchmaker won the race; report what the entry became.
		entry, err = ps.Store.GetEntry(ctx, userID)
		if errors.Is(err, ErrNotFound) {
			return true, nil, nil
		}
		if err != nil {
			return false, nil, err
		}
		return false, entry, nil
	}
	return false, nil, err
}

// GetMatch returns a committed match record.
func (ps *PoolService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	return ps.Store.GetMatch(ctx, matchID)
}
