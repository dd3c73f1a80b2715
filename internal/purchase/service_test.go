package purchase

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

var testPackages = []Package{
	{Title: "Starter", Credits: 100, PriceCents: 499},
	{Title: "Creator", Credits: 500, PriceCents: 1999},
}

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()
	db, err := storage.InitDB(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	store := storage.NewStore(db, zap.NewNop())

	i18nManager, err := i18n.NewManager("en", zap.NewNop())
	require.NoError(t, err)
	notifySvc := notify.NewService(store, nil, zap.NewNop())
	return NewService(store, notifySvc, i18nManager, testPackages, zap.NewNop()), store
}

func createUser(t *testing.T, store *storage.Store, email string, credits int64) *storage.User {
	t.Helper()
	user := storage.User{Email: email, PasswordHash: "x", Credits: credits}
	require.NoError(t, store.CreateUser(context.Background(), &user))
	return &user
}

func createAdmin(t *testing.T, store *storage.Store) *storage.User {
	t.Helper()
	admin := storage.User{Email: "admin@example.com", PasswordHash: "x", Role: storage.RoleAdmin}
	require.NoError(t, store.CreateUser(context.Background(), &admin))
	return &admin
}

func TestRequestCreatesPendingWithoutMovingCredits(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "buyer@example.com", 10)

	rec, err := svc.Request(ctx, user, 100, 499)
	require.NoError(t, err)
	assert.Equal(t, storage.PurchasePending, rec.Status)
	assert.Equal(t, int64(100), rec.Credits)
	assert.False(t, rec.Provisional)

	balance, err := store.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	// The request writes both the admin broadcast and the user history entry.
	adminList, err := store.ListAdminNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, adminList, 1)
	assert.Equal(t, rec.ID, adminList[0].PurchaseID)

	userList, err := store.ListNotifications(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, userList, 1)
}

func TestRequestRejectsUnknownPackage(t *testing.T) {
	svc, store := newTestService(t)
	user := createUser(t, store, "buyer@example.com", 0)

	_, err := svc.Request(context.Background(), user, 100, 100)
	assert.ErrorIs(t, err, ErrUnknownPackage)
}

func TestApproveGrantsCredits(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "buyer@example.com", 10)
	admin := createAdmin(t, store)

	rec, err := svc.Request(ctx, user, 100, 499)
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, admin.ID, rec.ID, storage.PurchasePaid)
	require.NoError(t, err)
	assert.Equal(t, storage.PurchasePaid, updated.Status)

	balance, err := store.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(110), balance)

	// The acting admin's read flag lands on the broadcast entry.
	adminNote, err := store.AdminNotificationByPurchase(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, adminNote.ReadByAdmin(admin.ID))
}

func TestRejectPendingMovesNothing(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "buyer@example.com", 10)
	admin := createAdmin(t, store)

	rec, err := svc.Request(ctx, user, 100, 499)
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, admin.ID, rec.ID, storage.PurchaseRejected)
	require.NoError(t, err)
	assert.Equal(t, storage.PurchaseRejected, updated.Status)

	balance, err := store.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestSelfReportGrantsImmediately(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "buyer@example.com", 10)

	rec, err := svc.SelfReport(ctx, user, 500, 1999, "TRX-42")
	require.NoError(t, err)
	assert.Equal(t, storage.PurchasePaid, rec.Status)
	assert.True(t, rec.Provisional)
	assert.Equal(t, "TRX-42", rec.BankRef)

	balance, err := store.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(510), balance)
}

func TestRejectProvisionalClawsBack(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "buyer@example.com", 0)
	admin := createAdmin(t, store)

	rec, err := svc.SelfReport(ctx, user, 100, 499, "TRX-1")
	require.NoError(t, err)

	// The user spends part of the provisional grant before the audit.
	require.NoError(t, store.Debit(ctx, user.ID, 30))

	updated, err := svc.SetStatus(ctx, admin.ID, rec.ID, storage.PurchaseRejected)
	require.NoError(t, err)
	assert.Equal(t, storage.PurchaseRejected, updated.Status)

	// 100 granted, 30 spent, 100 clawed back: -30 surfaces the shortfall.
	balance, err := store.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-30), balance)
}

func TestInvalidTransitions(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "buyer@example.com", 0)
	admin := createAdmin(t, store)

	rec, err := svc.Request(ctx, user, 100, 499)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, admin.ID, rec.ID, storage.PurchasePending)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = svc.SetStatus(ctx, admin.ID, rec.ID, storage.PurchaseRejected)
	require.NoError(t, err)

	// rejected is terminal.
	_, err = svc.SetStatus(ctx, admin.ID, rec.ID, storage.PurchasePaid)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	balance, err := store.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestSetStatusSurvivesDeletedOwner(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	user := createUser(t, store, "gone@example.com", 0)
	admin := createAdmin(t, store)

	rec, err := svc.Request(ctx, user, 100, 499)
	require.NoError(t, err)
	require.NoError(t, store.DeleteUser(ctx, user.ID))

	updated, err := svc.SetStatus(ctx, admin.ID, rec.ID, storage.PurchaseRejected)
	require.NoError(t, err)
	assert.Equal(t, storage.PurchaseRejected, updated.Status)
}
