package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Token auth already gates the endpoint; the API serves cross-origin
	// frontends.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.notify.UserSnapshot(r.Context(), userFrom(r.Context()).ID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toNotificationViews(list))
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.notify.MarkUserRead(r.Context(), chi.URLParam(r, "id"), userFrom(r.Context()).ID)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

// handleNotificationStream upgrades to a websocket and pushes full
// notification snapshots: one on connect, then one whenever the list
// changes. Snapshots replace each other, so a slow client only ever sees
// the latest state.
func (s *Server) handleNotificationStream(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	ch, cancel := s.notify.SubscribeUser(user.ID)
	defer cancel()

	initial, err := s.notify.UserSnapshot(r.Context(), user.ID)
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.streamSnapshots(w, r, toNotificationViews(initial), func() (any, bool) {
		snap, ok := <-ch
		if !ok {
			return nil, false
		}
		return toNotificationViews(snap), true
	})
}

func (s *Server) handleAdminListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := s.notify.AdminSnapshot(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toAdminNotificationViews(list, userFrom(r.Context()).ID))
}

func (s *Server) handleAdminMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	err := s.notify.MarkAdminRead(r.Context(), chi.URLParam(r, "id"), userFrom(r.Context()).ID)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "toast_not_found")
		return
	}
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleAdminNotificationStream(w http.ResponseWriter, r *http.Request) {
	admin := userFrom(r.Context())
	ch, cancel := s.notify.SubscribeAdmins()
	defer cancel()

	initial, err := s.notify.AdminSnapshot(r.Context())
	if err != nil {
		s.writeInternal(w, r, err)
		return
	}
	s.streamSnapshots(w, r, toAdminNotificationViews(initial, admin.ID), func() (any, bool) {
		snap, ok := <-ch
		if !ok {
			return nil, false
		}
		return toAdminNotificationViews(snap, admin.ID), true
	})
}

// streamSnapshots runs the websocket write loop: the initial snapshot, then
// every update next() yields until either side disconnects.
func (s *Server) streamSnapshots(w http.ResponseWriter, r *http.Request, initial any, next func() (any, bool)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	// Drain reads so close frames and pings are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) bool {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		return conn.WriteJSON(v) == nil
	}
	if !write(initial) {
		return
	}

	updates := make(chan any)
	go func() {
		defer close(updates)
		for {
			v, ok := next()
			if !ok {
				return
			}
			select {
			case updates <- v:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case v, ok := <-updates:
			if !ok || !write(v) {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
