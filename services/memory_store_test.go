package services_test

import (
	"context"
	"testing"
	"time"

	"koshoku_server/models"
	"koshoku_server/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindWaitingPicksOldest(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	base := time.Now().Add(-time.Minute)
	putWaiting(t, store, "newer", "ramen", base.Add(10*time.Second))
	putWaiting(t, store, "oldest", "ramen", base)
	putWaiting(t, store, "middle", "ramen", base.Add(5*time.Second))

	candidate, err := store.FindWaiting(ctx, "ramen", "me")
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "oldest", candidate.UserID)
}

func TestFindWaitingTieBreaksOnUserID(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	at := time.Now()
	putWaiting(t, store, "bbb", "ramen", at)
	putWaiting(t, store, "aaa", "ramen", at)

	candidate, err := store.FindWaiting(ctx, "ramen", "me")
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "aaa", candidate.UserID)
}

func TestFindWaitingExcludesCallerAndOtherStatuses(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	putWaiting(t, store, "me", "ramen", time.Now().Add(-time.Hour))
	require.NoError(t, store.PutEntry(ctx, models.WaitingEntry{
		UserID:    "gone",
		Category:  "ramen",
		Status:    models.StatusTimedOut,
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	candidate, err := store.FindWaiting(ctx, "ramen", "me")
	require.NoError(t, err)
	assert.Nil(t, candidate)
}

func TestFindWaitingAnyCategory(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	putWaiting(t, store, "other", "curry", time.Now())

	candidate, err := store.FindWaiting(ctx, "", "me")
	require.NoError(t, err)
	require.NotNil(t, candidate)
	assert.Equal(t, "other", candidate.UserID)
}

func TestCommitMatchRejectsNonWaitingParticipant(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	putWaiting(t, store, "userA", "ramen", time.Now())
	putWaiting(t, store, "userB", "ramen", time.Now())

	first := models.Match{
		MatchID:      "match-1",
		Participants: []string{"userA", "userB"},
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.CommitMatch(ctx, first))

	// A second commit touching an already matched user must fail whole.
	putWaiting(t, store, "userC", "ramen", time.Now())
	second := models.Match{
		MatchID:      "match-2",
		Participants: []string{"userB", "userC"},
		CreatedAt:    time.Now(),
	}
	assert.ErrorIs(t, store.CommitMatch(ctx, second), services.ErrConflict)

	entryC, err := store.GetEntry(ctx, "userC")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, entryC.Status)
	_, err = store.GetMatch(ctx, "match-2")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteWaitingEntryRefusesMatched(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	require.NoError(t, store.PutEntry(ctx, models.WaitingEntry{
		UserID:    "userA",
		Category:  "ramen",
		Status:    models.StatusMatched,
		MatchID:   "match-1",
		CreatedAt: time.Now(),
	}))

	assert.ErrorIs(t, store.DeleteWaitingEntry(ctx, "userA"), services.ErrConflict)
}

func TestMarkTimedOutSkipsNonWaiting(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	putWaiting(t, store, "userA", "ramen", time.Now().Add(-time.Hour))
	require.NoError(t, store.PutEntry(ctx, models.WaitingEntry{
		UserID:    "userB",
		Category:  "ramen",
		Status:    models.StatusMatched,
		MatchID:   "match-1",
		CreatedAt: time.Now().Add(-time.Hour),
	}))

	marked, err := store.MarkTimedOut(ctx, []string{"userA", "userB", "missing"})
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	// Marking again is a no-op.
	marked, err = store.MarkTimedOut(ctx, []string{"userA"})
	require.NoError(t, err)
	assert.Equal(t, 0, marked)
}

func TestResetEntryGuardsForeignMatch(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	require.NoError(t, store.PutEntry(ctx, models.WaitingEntry{
		UserID:    "userA",
		Category:  "ramen",
		Status:    models.StatusMatched,
		MatchID:   "match-other",
		CreatedAt: time.Now(),
	}))

	// Resetting on behalf of a different match attempt must not clobber the
	// committed pairing.
	require.NoError(t, store.ResetEntry(ctx, "userA", "match-mine"))
	entry, err := store.GetEntry(ctx, "userA")
	require.NoError(t, err)
	assert.Equal(t, models.StatusMatched, entry.Status)
	assert.Equal(t, "match-other", entry.MatchID)

	// Resetting the owning match does.
	require.NoError(t, store.ResetEntry(ctx, "userA", "match-other"))
	entry, err = store.GetEntry(ctx, "userA")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, entry.Status)
	assert.Empty(t, entry.MatchID)
}

func TestSaveProfileUpsert(t *testing.T) {
	ctx := context.Background()
	store := services.NewMemoryStore()

	profile, err := store.SaveProfile(ctx, "userA", "ponzu")
	require.NoError(t, err)
	assert.Equal(t, "ponzu", profile.Nickname)
	assert.Equal(t, 0, profile.MiracleMatchPoints)

	// A rename keeps the accumulated points.
	putWaiting(t, store, "userA", "ramen", time.Now())
	putWaiting(t, store, "userB", "ramen", time.Now())
	require.NoError(t, store.CommitMatch(ctx, models.Match{
		MatchID:        "match-1",
		Participants:   []string{"userA", "userB"},
		IsMiracleMatch: true,
		CreatedAt:      time.Now(),
	}))

	profile, err = store.SaveProfile(ctx, "userA", "yuzu")
	require.NoError(t, err)
	assert.Equal(t, "yuzu", profile.Nickname)
	assert.Equal(t, 1, profile.MiracleMatchPoints)
}
