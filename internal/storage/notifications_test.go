package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkNotificationReadIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "notify@example.com", 0)

	n := Notification{UserID: user.ID, Message: "hello"}
	require.NoError(t, s.CreateNotification(ctx, &n))

	require.NoError(t, s.MarkNotificationRead(ctx, n.ID, user.ID))
	require.NoError(t, s.MarkNotificationRead(ctx, n.ID, user.ID))

	list, err := s.ListNotifications(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

func TestMarkNotificationReadScopedToOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com", 0)
	other := createTestUser(t, s, "other@example.com", 0)

	n := Notification{UserID: owner.ID, Message: "private"}
	require.NoError(t, s.CreateNotification(ctx, &n))

	assert.ErrorIs(t, s.MarkNotificationRead(ctx, n.ID, other.ID), ErrNotFound)

	list, err := s.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
}

func TestAdminReadStateIsPerAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := AdminNotification{Message: "purchase pending"}
	require.NoError(t, s.CreateAdminNotification(ctx, &n))

	require.NoError(t, s.MarkAdminNotificationRead(ctx, n.ID, 1))

	got, err := s.GetAdminNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.ReadByAdmin(1))
	assert.False(t, got.ReadByAdmin(2))

	// A second admin marking read keeps the first admin's flag.
	require.NoError(t, s.MarkAdminNotificationRead(ctx, n.ID, 2))
	got, err = s.GetAdminNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.ReadByAdmin(1))
	assert.True(t, got.ReadByAdmin(2))
}

func TestMarkAdminNotificationReadIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := AdminNotification{Message: "x"}
	require.NoError(t, s.CreateAdminNotification(ctx, &n))

	require.NoError(t, s.MarkAdminNotificationRead(ctx, n.ID, 7))
	require.NoError(t, s.MarkAdminNotificationRead(ctx, n.ID, 7))

	got, err := s.GetAdminNotification(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, got.ReadByAdmin(7))
}

func TestAdminNotificationByPurchase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n := AdminNotification{PurchaseID: "p-1", Message: "x"}
	require.NoError(t, s.CreateAdminNotification(ctx, &n))

	got, err := s.AdminNotificationByPurchase(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	_, err = s.AdminNotificationByPurchase(ctx, "p-2")
	assert.ErrorIs(t, err, ErrNotFound)
}
