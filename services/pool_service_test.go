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

func newPoolService() (*services.PoolService, services.Store, *services.MatchmakerService) {
	store := services.NewMemoryStore()
	mm := services.NewMatchmakerService(store, nil)
	return &services.PoolService{Store: store, Matchmaker: mm}, store, mm
}

func TestEnterPool(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newPoolService()

	entry, err := ps.Enter(ctx, "userA", "ramen")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWaiting, entry.Status)
	assert.Equal(t, "ramen", entry.Category)

	got, err := ps.Status(ctx, "userA")
	require.NoError(t, err)
	assert.Equal(t, "ramen", got.Category)
}

func TestEnterPoolOverwritesPreviousEntry(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newPoolService()

	_, err := ps.Enter(ctx, "userA", "ramen")
	require.NoError(t, err)
	_, err = ps.Enter(ctx, "userA", "curry")
	require.NoError(t, err)

	got, err := ps.Status(ctx, "userA")
	require.NoError(t, err)
	assert.Equal(t, "curry", got.Category)
	assert.Equal(t, models.StatusWaiting, got.Status)
}

func TestStatusWithoutEntry(t *testing.T) {
	ps, _, _ := newPoolService()
	_, err := ps.Status(context.Background(), "userA")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCancelWaitingEntry(t *testing.T) {
	ctx := context.Background()
	ps, _, _ := newPoolService()

	_, err := ps.Enter(ctx, "userA", "ramen")
	require.NoError(t, err)

	cancelled, entry, err := ps.Cancel(ctx, "userA")
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Nil(t, entry)

	_, err = ps.Status(ctx, "userA")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCancelWithoutEntrySucceeds(t *testing.T) {
	ps, _, _ := newPoolService()
	cancelled, entry, err := ps.Cancel(context.Background(), "userA")
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Nil(t, entry)
}

func TestCancelAfterMatchReportsMatchedEntry(t *testing.T) {
	ctx := context.Background()
	ps, store, mm := newPoolService()

	base := time.Now().Add(-time.Minute)
	putWaiting(t, store, "userB", "ramen", base)
	putWaiting(t, store, "userA", "ramen", base.Add(time.Second))
	require.NoError(t, mm.HandleEntryCreated(ctx, "userA"))

	cancelled, entry, err := ps.Cancel(ctx, "userA")
	require.NoError(t, err)
	assert.False(t, cancelled)
	require.NotNil(t, entry)
	assert.Equal(t, models.StatusMatched, entry.Status)
	assert.NotEmpty(t, entry.MatchID)
}

func TestGetMatch(t *testing.T) {
	ctx := context.Background()
	ps, store, mm := newPoolService()

	base := time.Now().Add(-time.Minute)
	putWaiting(t, store, "userB", "ramen", base)
	putWaiting(t, store, "userA", "ramen", base.Add(time.Second))
	require.NoError(t, mm.HandleEntryCreated(ctx, "userA"))

	entry, err := ps.Status(ctx, "userA")
	require.NoError(t, err)

	match, err := ps.GetMatch(ctx, entry.MatchID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"userA", "userB"}, match.Participants)

	_, err = ps.GetMatch(ctx, "no-such-match")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
