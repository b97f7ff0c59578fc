package services

import (
	"context"

	"koshoku_server/models"
)

// ProfileService is the thin surface over the user profile store. Bonus
// points are only ever written by the matchmaker's commit; this service just
// registers nicknames and reads profiles back.
type ProfileService struct {
	Store Store
}

// Register upserts the caller's nickname, leaving accumulated miracle match
// points untouched.
func (ps *ProfileService) Register(ctx context.Context, userID, nickname string) (*models.UserProfile, error) {
	return ps.Store.SaveProfile(ctx, userID, nickname)
}

// Get returns the caller's profile.
func (ps *ProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	return ps.Store.GetProfile(ctx, userID)
}
