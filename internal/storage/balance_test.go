package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebitReducesBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "debit@example.com", 30)

	require.NoError(t, s.Debit(ctx, user.ID, 10))

	balance, err := s.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)
}

func TestDebitInsufficientLeavesBalanceUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "poor@example.com", 5)

	err := s.Debit(ctx, user.ID, 10)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	balance, err := s.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance)
}

func TestDebitExactBalanceSucceeds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "exact@example.com", 10)

	require.NoError(t, s.Debit(ctx, user.ID, 10))

	balance, err := s.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestDebitUnknownUser(t *testing.T) {
	s := newTestStore(t)
	assert.ErrorIs(t, s.Debit(context.Background(), 9999, 1), ErrNotFound)
}

func TestCreditAddsBalance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "credit@example.com", 3)

	require.NoError(t, s.Credit(ctx, user.ID, 100))

	balance, err := s.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(103), balance)
}

func TestClawBackCanGoNegative(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "clawback@example.com", 20)

	// The user already spent part of a provisional grant.
	require.NoError(t, s.ClawBack(ctx, user.ID, 50))

	balance, err := s.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(-30), balance)
}

// Concurrent debits against one balance must never overdraw it: the
// conditional decrement makes check and write a single statement.
func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, s, "race@example.com", 50)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Debit(ctx, user.ID, 10)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, ErrInsufficientCredits)
		}
	}
	assert.Equal(t, 5, succeeded)

	balance, err := s.Credits(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}
