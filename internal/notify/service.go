// Package notify fans notification records out to stored history, live
// snapshot subscribers and the optional Telegram admin channel.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/storage"
)

const adminTopic = "admins"

type Service struct {
	store    *storage.Store
	userHub  *Hub[[]storage.Notification]
	adminHub *Hub[[]storage.AdminNotification]
	telegram *TelegramNotifier
	log      *zap.Logger
}

func NewService(store *storage.Store, telegram *TelegramNotifier, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		userHub:  NewHub[[]storage.Notification](),
		adminHub: NewHub[[]storage.AdminNotification](),
		telegram: telegram,
		log:      log.Named("notify"),
	}
}

func userTopic(userID int64) string { return fmt.Sprintf("user:%d", userID) }

// NotifyUser writes a user notification and pushes a fresh snapshot to the
// user's live subscribers.
func (s *Service) NotifyUser(ctx context.Context, userID int64, message, link string) error {
	n := storage.Notification{UserID: userID, Message: message, Link: link}
	if err := s.store.CreateNotification(ctx, &n); err != nil {
		return err
	}
	s.RefreshUser(ctx, userID)
	return nil
}

// NotifyAdmins writes a broadcast notification shared by all admins and
// mirrors it to Telegram when configured.
func (s *Service) NotifyAdmins(ctx context.Context, purchaseID, message string) error {
	n := storage.AdminNotification{PurchaseID: purchaseID, Message: message}
	if err := s.store.CreateAdminNotification(ctx, &n); err != nil {
		return err
	}
	s.RefreshAdmins(ctx)
	s.telegram.Send(message)
	return nil
}

// MarkUserRead flips a user notification to read. Idempotent.
func (s *Service) MarkUserRead(ctx context.Context, id string, userID int64) error {
	if err := s.store.MarkNotificationRead(ctx, id, userID); err != nil {
		return err
	}
	s.RefreshUser(ctx, userID)
	return nil
}

// MarkAdminRead records the acting admin's read state. Idempotent.
func (s *Service) MarkAdminRead(ctx context.Context, id string, adminID int64) error {
	if err := s.store.MarkAdminNotificationRead(ctx, id, adminID); err != nil {
		return err
	}
	s.RefreshAdmins(ctx)
	return nil
}

func (s *Service) UserSnapshot(ctx context.Context, userID int64) ([]storage.Notification, error) {
	return s.store.ListNotifications(ctx, userID)
}

func (s *Service) AdminSnapshot(ctx context.Context) ([]storage.AdminNotification, error) {
	return s.store.ListAdminNotifications(ctx)
}

func (s *Service) SubscribeUser(userID int64) (<-chan []storage.Notification, func()) {
	return s.userHub.Subscribe(userTopic(userID))
}

func (s *Service) SubscribeAdmins() (<-chan []storage.AdminNotification, func()) {
	return s.adminHub.Subscribe(adminTopic)
}

// RefreshUser reloads the user's notification list and publishes it. Called
// after any write that touched the list, including writes done inside a
// caller's transaction.
func (s *Service) RefreshUser(ctx context.Context, userID int64) {
	topic := userTopic(userID)
	if s.userHub.Subscribers(topic) == 0 {
		return
	}
	list, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		s.log.Warn("refresh user snapshot", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	s.userHub.Publish(topic, list)
}

// RefreshAdmins reloads and publishes the shared admin snapshot.
func (s *Service) RefreshAdmins(ctx context.Context) {
	if s.adminHub.Subscribers(adminTopic) == 0 {
		return
	}
	list, err := s.store.ListAdminNotifications(ctx)
	if err != nil {
		s.log.Warn("refresh admin snapshot", zap.Error(err))
		return
	}
	s.adminHub.Publish(adminTopic, list)
}

// Alert sends a free-form message to the Telegram admin channel only.
func (s *Service) Alert(text string) {
	s.telegram.Send(text)
}
