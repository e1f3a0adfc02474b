package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/loanportal/internal/common"
	"github.com/dmitrijs2005/loanportal/internal/metrics"
	"github.com/dmitrijs2005/loanportal/internal/server/models"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory(t *testing.T, clock clockwork.Clock) *MemoryRepository {
	t.Helper()
	repo, err := NewMemoryRepository(context.Background(), time.Hour, clock)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestMemoryRepository_SaveGetDelete(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := newMemory(t, clock)
	ctx := context.Background()

	s := &models.Session{ID: "abc", UserID: 7, ExpiresAt: clock.Now().Add(30 * time.Minute)}
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.True(t, got.ExpiresAt.Equal(s.ExpiresAt))

	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.Get(ctx, "abc")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_DeleteUnknownIsNoop(t *testing.T) {
	repo := newMemory(t, clockwork.NewFakeClock())
	require.NoError(t, repo.Delete(context.Background(), "missing"))
}

func TestMemoryRepository_ExpiresAfterTTL(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	repo := newMemory(t, clock)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Session{ID: "exp", UserID: 1, ExpiresAt: clock.Now().Add(time.Minute)}))

	clock.Advance(59 * time.Second)
	_, err := repo.Get(ctx, "exp")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = repo.Get(ctx, "exp")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_OverwriteKeepsLatest(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := newMemory(t, clock)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Session{ID: "s", UserID: 1, ExpiresAt: clock.Now().Add(time.Hour)}))
	require.NoError(t, repo.Save(ctx, &models.Session{ID: "s", UserID: 2, ExpiresAt: clock.Now().Add(time.Hour)}))

	got, err := repo.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.UserID)
}

func TestMemoryRepository_CountsOperations(t *testing.T) {
	repo := newMemory(t, clockwork.NewFakeClock())
	miss := metrics.SessionOpsTotal.WithLabelValues(backendMemory, "get", "miss")

	before := testutil.ToFloat64(miss)
	_, _ = repo.Get(context.Background(), "nope")
	assert.Equal(t, before+1, testutil.ToFloat64(miss))
}
