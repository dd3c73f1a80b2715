package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan []string) []string {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestHubDeliversToTopicSubscribers(t *testing.T) {
	h := NewHub[[]string]()

	ch, cancel := h.Subscribe("user:1")
	defer cancel()

	h.Publish("user:1", []string{"a"})
	assert.Equal(t, []string{"a"}, recv(t, ch))
}

func TestHubTopicsAreIsolated(t *testing.T) {
	h := NewHub[[]string]()

	ch1, cancel1 := h.Subscribe("user:1")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("user:2")
	defer cancel2()

	h.Publish("user:1", []string{"only one"})

	assert.Equal(t, []string{"only one"}, recv(t, ch1))
	select {
	case v := <-ch2:
		t.Fatalf("unexpected snapshot on other topic: %v", v)
	default:
	}
}

func TestHubSlowSubscriberSeesLatestSnapshot(t *testing.T) {
	h := NewHub[[]string]()

	ch, cancel := h.Subscribe("admins")
	defer cancel()

	h.Publish("admins", []string{"stale"})
	h.Publish("admins", []string{"fresh"})

	assert.Equal(t, []string{"fresh"}, recv(t, ch))
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub[[]string]()

	ch, cancel := h.Subscribe("user:1")
	require.Equal(t, 1, h.Subscribers("user:1"))

	cancel()
	assert.Equal(t, 0, h.Subscribers("user:1"))

	_, ok := <-ch
	assert.False(t, ok)

	// Cancelling twice must not panic.
	cancel()
}

func TestHubSubscribersCount(t *testing.T) {
	h := NewHub[[]string]()

	assert.Equal(t, 0, h.Subscribers("admins"))
	_, cancel1 := h.Subscribe("admins")
	_, cancel2 := h.Subscribe("admins")
	assert.Equal(t, 2, h.Subscribers("admins"))
	cancel1()
	cancel2()
	assert.Equal(t, 0, h.Subscribers("admins"))
}
