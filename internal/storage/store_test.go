package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	return NewStore(db, zap.NewNop())
}

func createTestUser(t *testing.T, s *Store, email string, credits int64) *User {
	t.Helper()
	user := User{
		Email:        email,
		PasswordHash: "x",
		Credits:      credits,
	}
	require.NoError(t, s.CreateUser(context.Background(), &user))
	return &user
}
