package notify

import "sync"

// Hub delivers full snapshots to live subscribers. Every publish replaces
// whatever a slow subscriber has not consumed yet, so readers always see the
// newest snapshot and never block the writer.
type Hub[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan T
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[string]map[int]chan T)}
}

// Subscribe registers for snapshots on a topic. The returned cancel func
// must be called to release the subscription.
func (h *Hub[T]) Subscribe(topic string) (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[topic] == nil {
		h.subs[topic] = make(map[int]chan T)
	}
	id := h.nextID
	h.nextID++
	ch := make(chan T, 1)
	h.subs[topic][id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.subs[topic]; ok {
			if c, ok := subs[id]; ok {
				delete(subs, id)
				close(c)
			}
			if len(subs) == 0 {
				delete(h.subs, topic)
			}
		}
	}
	return ch, cancel
}

// Publish hands the snapshot to every subscriber on the topic, replacing an
// unconsumed previous snapshot if there is one.
func (h *Hub[T]) Publish(topic string, snapshot T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[topic] {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot, then deliver the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

// Subscribers reports how many subscribers a topic currently has.
func (h *Hub[T]) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}
