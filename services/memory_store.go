package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"koshoku_server/models"
)

// MemoryStore implements Store with mutex-guarded maps. It mirrors the
// conditional semantics of DynamoStore exactly, which makes it good enough
// to run the whole server locally (ENV=LOCAL) and to drive the tests.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]models.WaitingEntry
	matches  map[string]models.Match
	rooms    map[string]models.Room
	profiles map[string]models.UserProfile
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]models.WaitingEntry),
		matches:  make(map[string]models.Match),
		rooms:    make(map[string]models.Room),
		profiles: make(map[string]models.UserProfile),
	}
}

func (s *MemoryStore) PutEntry(ctx context.Context, entry models.WaitingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.UserID] = entry
	return nil
}

func (s *MemoryStore) GetEntry(ctx context.Context, userID string) (*models.WaitingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (s *MemoryStore) DeleteWaitingEntry(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	if !ok || entry.Status != models.StatusWaiting {
		return ErrConflict
	}
	delete(s.entries, userID)
	return nil
}

func (s *MemoryStore) FindWaiting(ctx context.Context, category, excludeUserID string) (*models.WaitingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *models.WaitingEntry
	for userID, entry := range s.entries {
		if userID == excludeUserID || entry.Status != models.StatusWaiting {
			continue
		}
		if category != "" && entry.Category != category {
			continue
		}
		if best == nil || olderThan(entry, *best) {
			e := entry
			best = &e
		}
	}
	return best, nil
}

// olderThan orders entries by creation time, user id as the tie-break.
func olderThan(a, b models.WaitingEntry) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.UserID < b.UserID
}

func (s *MemoryStore) ListStaleWaiting(ctx context.Context, cutoff time.Time) ([]models.WaitingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var stale []models.WaitingEntry
	for _, entry := range s.entries {
		if entry.Status == models.StatusWaiting && entry.CreatedAt.Before(cutoff) {
			stale = append(stale, entry)
		}
	}
	return stale, nil
}

func (s *MemoryStore) MarkTimedOut(ctx context.Context, userIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := 0
	for _, userID := range userIDs {
		entry, ok := s.entries[userID]
		if !ok || entry.Status != models.StatusWaiting {
			continue
		}
		entry.Status = models.StatusTimedOut
		s.entries[userID] = entry
		marked++
	}
	return marked, nil
}

func (s *MemoryStore) ResetEntry(ctx context.Context, userID, matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[userID]
	if !ok {
		return nil
	}
	if entry.MatchID != "" && entry.MatchID != matchID {
		return nil // paired into a different match meanwhile
	}
	entry.Status = models.StatusWaiting
	entry.MatchID = ""
	s.entries[userID] = entry
	return nil
}

func (s *MemoryStore) CommitMatch(ctx context.Context, match models.Match) error {
	if len(match.Participants) != 2 {
		return fmt.Errorf("match %s must have exactly two participants", match.MatchID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.matches[match.MatchID]; exists {
		return ErrConflict
	}
	for _, userID := range match.Participants {
		entry, ok := s.entries[userID]
		if !ok || entry.Status != models.StatusWaiting {
			return ErrConflict
		}
	}

	s.matches[match.MatchID] = match
	for _, userID := range match.Participants {
		entry := s.entries[userID]
		entry.Status = models.StatusMatched
		entry.MatchID = match.MatchID
		s.entries[userID] = entry

		if match.IsMiracleMatch {
			profile := s.profiles[userID]
			profile.UserID = userID
			profile.MiracleMatchPoints++
			s.profiles[userID] = profile
		}
	}
	return nil
}

func (s *MemoryStore) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	return &match, nil
}

func (s *MemoryStore) CreateRoom(ctx context.Context, room models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.RoomID]; exists {
		return ErrConflict
	}
	s.rooms[room.RoomID] = room
	return nil
}

func (s *MemoryStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	return &room, nil
}

func (s *MemoryStore) JoinRoom(ctx context.Context, roomID string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	if room.ParticipantCount >= room.MaxParticipants {
		return nil, ErrRoomFull
	}
	room.ParticipantCount++
	s.rooms[roomID] = room
	return &room, nil
}

func (s *MemoryStore) LeaveRoom(ctx context.Context, roomID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return false, nil // already cleaned up
	}
	room.ParticipantCount--
	if room.ParticipantCount <= 0 {
		delete(s.rooms, roomID)
		return true, nil
	}
	s.rooms[roomID] = room
	return false, nil
}

func (s *MemoryStore) SaveProfile(ctx context.Context, userID, nickname string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		profile = models.UserProfile{UserID: userID, CreatedAt: time.Now()}
	}
	profile.UserID = userID
	profile.Nickname = nickname
	s.profiles[userID] = profile
	return &profile, nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &profile, nil
}
