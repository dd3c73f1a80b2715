package auth

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

func newTestService(t *testing.T, adminEmails []string, initialGrant int64) (*Service, *storage.Store) {
	t.Helper()
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	store := storage.NewStore(db, zap.NewNop())
	return NewService(store, adminEmails, initialGrant, time.Hour, zap.NewNop()), store
}

func TestRegisterGrantsInitialCredits(t *testing.T) {
	svc, _ := newTestService(t, nil, 30)

	user, token, err := svc.Register(context.Background(), "new@example.com", "password123", "New User")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(30), user.Credits)
	assert.Equal(t, storage.RoleUser, user.Role)
}

func TestRegisterAssignsAdminRoleFromConfig(t *testing.T) {
	svc, _ := newTestService(t, []string{"Boss@Example.com"}, 0)

	admin, _, err := svc.Register(context.Background(), "boss@example.com", "password123", "Boss")
	require.NoError(t, err)
	assert.Equal(t, storage.RoleAdmin, admin.Role)
	assert.True(t, IsAdmin(admin))

	regular, _, err := svc.Register(context.Background(), "staff@example.com", "password123", "Staff")
	require.NoError(t, err)
	assert.False(t, IsAdmin(regular))
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc, _ := newTestService(t, nil, 0)

	_, _, err := svc.Register(context.Background(), "x@example.com", "short", "")
	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, nil, 0)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "dup@example.com", "password123", "")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "dup@example.com", "password123", "")
	assert.ErrorIs(t, err, storage.ErrEmailTaken)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _ := newTestService(t, nil, 0)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, "login@example.com", "password123", "")
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	resolved, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resolved.ID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t, nil, 0)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "login@example.com", "password123", "")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "login@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, _ := newTestService(t, nil, 0)
	ctx := context.Background()

	_, token, err := svc.Register(ctx, "bye@example.com", "password123", "")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.UserFromToken(ctx, token)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
