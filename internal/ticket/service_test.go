package ticket

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/i18n"
	"github.com/musegen/muse-server/internal/notify"
	"github.com/musegen/muse-server/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	store := storage.NewStore(db, zap.NewNop())

	i18nManager, err := i18n.NewManager("en", zap.NewNop())
	require.NoError(t, err)
	notifySvc := notify.NewService(store, nil, zap.NewNop())
	return NewService(store, notifySvc, i18nManager, zap.NewNop()), store
}

func createUser(t *testing.T, store *storage.Store, email string, role storage.Role) *storage.User {
	t.Helper()
	user := storage.User{Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, store.CreateUser(context.Background(), &user))
	return &user
}

func TestOpenNotifiesAdmins(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "user@example.com", storage.RoleUser)

	ticket, err := svc.Open(ctx, user, "cannot generate", "my avatars fail")
	require.NoError(t, err)
	assert.Equal(t, storage.TicketOpen, ticket.Status)

	adminList, err := store.ListAdminNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, adminList, 1)
	assert.Contains(t, adminList[0].Message, "user@example.com")
}

func TestAdminReplyNotifiesOwner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "user@example.com", storage.RoleUser)
	admin := createUser(t, store, "admin@example.com", storage.RoleAdmin)

	ticket, err := svc.Open(ctx, user, "help", "please")
	require.NoError(t, err)

	_, err = svc.Reply(ctx, ticket.ID, admin, "on it")
	require.NoError(t, err)

	list, err := store.ListNotifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "/tickets/"+ticket.ID, list[0].Link)
}

func TestOwnReplyDoesNotSelfNotify(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "user@example.com", storage.RoleUser)

	ticket, err := svc.Open(ctx, user, "help", "please")
	require.NoError(t, err)

	_, err = svc.Reply(ctx, ticket.ID, user, "adding details")
	require.NoError(t, err)

	list, err := store.ListNotifications(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReplyOnClosedTicket(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "user@example.com", storage.RoleUser)

	ticket, err := svc.Open(ctx, user, "help", "please")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, ticket.ID, storage.TicketClosed)
	require.NoError(t, err)

	_, err = svc.Reply(ctx, ticket.ID, user, "still there?")
	assert.ErrorIs(t, err, storage.ErrTicketClosed)
}
