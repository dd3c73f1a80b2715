// Package server exposes the HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/auth"
	"github.com/musegen/muse-server/internal/generate"
	"github.com/musegen/muse-server/internal/i18n"
	"github.com/musegen/muse-server/internal/notify"
	"github.com/musegen/muse-server/internal/purchase"
	"github.com/musegen/muse-server/internal/storage"
	"github.com/musegen/muse-server/internal/ticket"
)

type Server struct {
	addr      string
	log       *zap.Logger
	store     *storage.Store
	auth      *auth.Service
	generate  *generate.Service
	purchases *purchase.Service
	tickets   *ticket.Service
	notify    *notify.Service
	i18n      *i18n.Manager
	router    *chi.Mux
}

func New(addr string, log *zap.Logger, store *storage.Store, authSvc *auth.Service, genSvc *generate.Service, purchaseSvc *purchase.Service, ticketSvc *ticket.Service, notifySvc *notify.Service, i18nManager *i18n.Manager) *Server {
	s := &Server{
		addr:      addr,
		log:       log.Named("http"),
		store:     store,
		auth:      authSvc,
		generate:  genSvc,
		purchases: purchaseSvc,
		tickets:   ticketSvc,
		notify:    notifySvc,
		i18n:      i18nManager,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Get("/feed", s.handleFeed)
		r.Get("/packages", s.handlePackages)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.Patch("/me", s.handleUpdateMe)

			r.Post("/generate/avatar", s.handleGenerateAvatar)
			r.Post("/generate/speech", s.handleGenerateSpeech)
			r.Post("/generate/story", s.handleGenerateStory)
			r.Post("/generate/video", s.handleGenerateVideo)

			r.Get("/artifacts", s.handleListArtifacts)
			r.Patch("/artifacts/{id}/visibility", s.handleArtifactVisibility)

			r.Get("/purchases", s.handleListPurchases)
			r.Post("/purchases", s.handleRequestPurchase)
			r.Post("/purchases/self-report", s.handleSelfReport)

			r.Get("/notifications", s.handleListNotifications)
			r.Post("/notifications/{id}/read", s.handleMarkNotificationRead)
			r.Get("/notifications/stream", s.handleNotificationStream)

			r.Post("/tickets", s.handleOpenTicket)
			r.Get("/tickets", s.handleListTickets)
			r.Get("/tickets/{id}", s.handleGetTicket)
			r.Post("/tickets/{id}/messages", s.handleTicketReply)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.adminMiddleware)

				r.Get("/users", s.handleAdminListUsers)
				r.Post("/users/{id}/credits", s.handleAdminAdjustCredits)
				r.Delete("/users/{id}", s.handleAdminDeleteUser)

				r.Get("/purchases", s.handleAdminListPurchases)
				r.Post("/purchases/{id}/status", s.handleAdminSetPurchaseStatus)

				r.Get("/notifications", s.handleAdminListNotifications)
				r.Post("/notifications/{id}/read", s.handleAdminMarkNotificationRead)
				r.Get("/notifications/stream", s.handleAdminNotificationStream)

				r.Get("/tickets", s.handleAdminListTickets)
				r.Post("/tickets/{id}/status", s.handleAdminSetTicketStatus)
				r.Post("/tickets/{id}/messages", s.handleAdminTicketReply)

				r.Post("/broadcast", s.handleAdminBroadcast)
			})
		})
	})

	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// Generation requests poll long-running provider jobs.
		WriteTimeout: 10 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("server shutdown error", zap.Error(err))
		}
	}()

	s.log.Info("listening", zap.String("addr", s.addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}
