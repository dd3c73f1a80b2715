package notify

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	store := storage.NewStore(db, zap.NewNop())
	return NewService(store, nil, zap.NewNop()), store
}

func createUser(t *testing.T, store *storage.Store) *storage.User {
	t.Helper()
	user := storage.User{Email: "notify@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), &user))
	return &user
}

func waitSnapshot[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		panic("unreachable")
	}
}

func TestNotifyUserStoresAndPushes(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store)

	ch, cancel := svc.SubscribeUser(user.ID)
	defer cancel()

	require.NoError(t, svc.NotifyUser(ctx, user.ID, "your purchase was approved", "/purchases"))

	snap := waitSnapshot(t, ch)
	require.Len(t, snap, 1)
	assert.Equal(t, "your purchase was approved", snap[0].Message)
	assert.False(t, snap[0].Read)

	stored, err := svc.UserSnapshot(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestMarkUserReadPushesUpdatedSnapshot(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store)

	require.NoError(t, svc.NotifyUser(ctx, user.ID, "hello", ""))
	list, err := svc.UserSnapshot(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	ch, cancel := svc.SubscribeUser(user.ID)
	defer cancel()

	require.NoError(t, svc.MarkUserRead(ctx, list[0].ID, user.ID))

	snap := waitSnapshot(t, ch)
	require.Len(t, snap, 1)
	assert.True(t, snap[0].Read)
}

func TestNotifyAdminsReachesAdminSubscribers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ch, cancel := svc.SubscribeAdmins()
	defer cancel()

	require.NoError(t, svc.NotifyAdmins(ctx, "", "new purchase request"))

	snap := waitSnapshot(t, ch)
	require.Len(t, snap, 1)
	assert.Equal(t, "new purchase request", snap[0].Message)
}

// Sends with no subscribers must not block or fail; they only hit storage.
func TestNotifyWithoutSubscribers(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store)

	require.NoError(t, svc.NotifyUser(ctx, user.ID, "quiet", ""))
	require.NoError(t, svc.NotifyAdmins(ctx, "", "quiet too"))
}
