package services

import (
	"context"
	"log"
	"time"

	"koshoku_server/models"

	"github.com/google/uuid"
)

// RoomService drives the room lifecycle that follows a successful match:
// create, join, leave, with capacity enforcement and cleanup-on-empty.
type RoomService struct {
	Store  Store
	Tokens *TokenService
	// Bgm may be nil; room bgm references are then used verbatim.
	Bgm BgmResolver
}

// CreateRoom opens a new room with the creator as its first participant.
func (rs *RoomService) CreateRoom(ctx context.Context, callerID, name, category, bgm string) (*models.Room, error) {
	bgmURL := bgm
	if bgm != "" && rs.Bgm != nil {
		resolved, err := rs.Bgm.ResolveURL(ctx, bgm)
		if err != nil {
			return nil, err
		}
		bgmURL = resolved
	}

	room := models.Room{
		RoomID:           uuid.NewString(),
		Name:             name,
		Category:         category,
		BgmURL:           bgmURL,
		ParticipantCount: 1,
		MaxParticipants:  models.RoomMaxParticipants,
		CreatedBy:        callerID,
		CreatedAt:        time.Now(),
	}
	if err := rs.Store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	log.Printf("User %s created room %s (%s)", callerID, room.RoomID, name)
	return &room, nil
}

// JoinRoom atomically takes a seat in the room and returns the updated room
// together with the caller's realtime access token. ErrNotFound when the
// room is gone, ErrRoomFull at capacity.
func (rs *RoomService) JoinRoom(ctx context.Context, callerID, roomID string) (*models.Room, string, error) {
	room, err := rs.Store.JoinRoom(ctx, roomID)
	if err != nil {
		return nil, "", err
	}
	log.Printf("User %s joined room %s (%d/%d)", callerID, roomID, room.ParticipantCount, room.MaxParticipants)
	return room, rs.Tokens.Issue(roomID, callerID), nil
}

// LeaveRoom gives up the caller's seat. The last participant leaving deletes
// the room; leaving a room that no longer exists succeeds quietly.
func (rs *RoomService) LeaveRoom(ctx context.Context, callerID, roomID string) (bool, error) {
	deleted, err := rs.Store.LeaveRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	if deleted {
		log.Printf("User %s left room %s; room is empty and was deleted", callerID, roomID)
	} else {
		log.Printf("User %s left room %s", callerID, roomID)
	}
	return deleted, nil
}

// GetRoom returns the room record.
func (rs *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return rs.Store.GetRoom(ctx, roomID)
}
