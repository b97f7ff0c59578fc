package services

import (
	"context"
	"errors"
	"time"

	"koshoku_server/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write lost against a
	// concurrent transaction. Callers retry their whole read-modify-write.
	ErrConflict = errors.New("conditional check failed")
	// ErrRoomFull is returned when a join would exceed room capacity.
	ErrRoomFull = errors.New("room is full")
)

// Store is the transactional surface the matchmaking core, the pool sweeper
// and the room lifecycle run against. Every mutating method is atomic, and
// the conditional ones report a lost race as ErrConflict so callers can
// restart their search instead of double-pairing.
//
// DynamoStore backs it in deployment; MemoryStore backs it for local runs
// and tests.
type Store interface {
	// Waiting pool
	PutEntry(ctx context.Context, entry models.WaitingEntry) error
	GetEntry(ctx context.Context, userID string) (*models.WaitingEntry, error)
	// DeleteWaitingEntry removes a user's entry only while it is still
	// waiting; ErrConflict means the matchmaker got there first.
	DeleteWaitingEntry(ctx context.Context, userID string) error
	// FindWaiting returns the oldest waiting entry other than excludeUserID.
	// An empty category matches any category. Returns nil when the pool has
	// no candidate.
	FindWaiting(ctx context.Context, category, excludeUserID string) (*models.WaitingEntry, error)
	ListStaleWaiting(ctx context.Context, cutoff time.Time) ([]models.WaitingEntry, error)
	// MarkTimedOut flips still-waiting entries to timed_out. Each flip is
	// independent and idempotent; entries that moved on are skipped. Returns
	// how many entries were actually flipped.
	MarkTimedOut(ctx context.Context, userIDs []string) (int, error)
	// ResetEntry is the compensating action after an irrecoverable
	// matchmaking failure: status back to waiting, matchId cleared. Guarded
	// so it never undoes a different, successful pairing: it only applies
	// when the entry carries no matchId or carries matchID. A no-op when the
	// entry no longer exists.
	ResetEntry(ctx context.Context, userID, matchID string) error

	// Matches
	// CommitMatch atomically creates the match record, moves both
	// participants from waiting to matched, and on a miracle match credits
	// both profiles one bonus point. ErrConflict when either participant is
	// no longer waiting.
	CommitMatch(ctx context.Context, match models.Match) error
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)

	// Rooms
	CreateRoom(ctx context.Context, room models.Room) error
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	// JoinRoom atomically increments the participant count while it is below
	// capacity. ErrNotFound when the room is gone, ErrRoomFull at capacity.
	JoinRoom(ctx context.Context, roomID string) (*models.Room, error)
	// LeaveRoom atomically decrements the participant count, deleting the
	// room instead of persisting a count of zero. A missing room is treated
	// as already cleaned up. Reports whether the room was deleted.
	LeaveRoom(ctx context.Context, roomID string) (bool, error)

	// User profiles
	// SaveProfile upserts the nickname without touching accumulated points.
	SaveProfile(ctx context.Context, userID, nickname string) (*models.UserProfile, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}
