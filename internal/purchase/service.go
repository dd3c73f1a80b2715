// Package purchase implements the metered-purchase workflow: pending
// requests awaiting admin approval, optimistic self-reported bank transfers,
// and the admin status transitions with their compensating balance moves.
package purchase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/i18n"
	"github.com/musegen/muse-server/internal/notify"
	"github.com/musegen/muse-server/internal/storage"
)

var (
	// ErrUnknownPackage is returned when the requested credits/price pair
	// does not match a configured package.
	ErrUnknownPackage = errors.New("unknown credit package")
	// ErrInvalidTransition is returned for a status change outside
	// pending->paid, pending->rejected, paid->rejected.
	ErrInvalidTransition = errors.New("invalid payment status transition")
)

// Package is a purchasable credit bundle.
type Package struct {
	Title      string `json:"title"`
	Credits    int64  `json:"credits"`
	PriceCents int64  `json:"price_cents"`
}

type Service struct {
	store    *storage.Store
	notify   *notify.Service
	i18n     *i18n.Manager
	packages []Package
	log      *zap.Logger
}

func NewService(store *storage.Store, notifier *notify.Service, i18nManager *i18n.Manager, packages []Package, log *zap.Logger) *Service {
	return &Service{
		store:    store,
		notify:   notifier,
		i18n:     i18nManager,
		packages: packages,
		log:      log.Named("purchase"),
	}
}

func (s *Service) Packages() []Package {
	out := make([]Package, len(s.packages))
	copy(out, s.packages)
	return out
}

func (s *Service) findPackage(credits, priceCents int64) (Package, bool) {
	for _, pkg := range s.packages {
		if pkg.Credits == credits && pkg.PriceCents == priceCents {
			return pkg, true
		}
	}
	return Package{}, false
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// Request records a pending purchase awaiting admin approval. No credits
// move yet. The purchase record, the admin broadcast entry and the user's
// history notification commit in one transaction.
func (s *Service) Request(ctx context.Context, user *storage.User, credits, priceCents int64) (*storage.PurchaseRecord, error) {
	pkg, ok := s.findPackage(credits, priceCents)
	if !ok {
		return nil, ErrUnknownPackage
	}

	price := formatPrice(pkg.PriceCents)
	rec := storage.PurchaseRecord{
		UserID:     user.ID,
		Email:      user.Email,
		Credits:    pkg.Credits,
		PriceCents: pkg.PriceCents,
		Status:     storage.PurchasePending,
		Message: s.i18n.T(s.i18n.DefaultLanguage(), "notify_admin_purchase_request",
			"Email", user.Email, "Credits", pkg.Credits, "Price", price),
	}

	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		if err := tx.CreatePurchase(ctx, &rec); err != nil {
			return err
		}
		admin := storage.AdminNotification{PurchaseID: rec.ID, Message: rec.Message}
		if err := tx.CreateAdminNotification(ctx, &admin); err != nil {
			return err
		}
		userNote := storage.Notification{
			UserID: user.ID,
			Message: s.i18n.T(user.Language, "notify_purchase_pending",
				"Credits", pkg.Credits, "Price", price),
			Link: "/purchases",
		}
		return tx.CreateNotification(ctx, &userNote)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase requested",
		zap.Int64("user_id", user.ID),
		zap.Int64("credits", pkg.Credits),
		zap.Int64("price_cents", pkg.PriceCents),
		zap.String("purchase_id", rec.ID))

	s.notify.RefreshUser(ctx, user.ID)
	s.notify.RefreshAdmins(ctx)
	s.notify.Alert(rec.Message)
	return &rec, nil
}

// SelfReport is the optimistic-grant path: the user claims an out-of-band
// bank transfer, the credits land immediately and the paid record is marked
// provisional for later audit. Grant and record writes are one transaction.
func (s *Service) SelfReport(ctx context.Context, user *storage.User, credits, priceCents int64, bankRef string) (*storage.PurchaseRecord, error) {
	pkg, ok := s.findPackage(credits, priceCents)
	if !ok {
		return nil, ErrUnknownPackage
	}

	price := formatPrice(pkg.PriceCents)
	rec := storage.PurchaseRecord{
		UserID:      user.ID,
		Email:       user.Email,
		Credits:     pkg.Credits,
		PriceCents:  pkg.PriceCents,
		Status:      storage.PurchasePaid,
		Provisional: true,
		BankRef:     bankRef,
		Message: s.i18n.T(s.i18n.DefaultLanguage(), "notify_admin_purchase_self_report",
			"Email", user.Email, "Credits", pkg.Credits, "Price", price, "BankRef", bankRef),
	}

	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		if err := tx.Credit(ctx, user.ID, pkg.Credits); err != nil {
			return err
		}
		if err := tx.CreatePurchase(ctx, &rec); err != nil {
			return err
		}
		admin := storage.AdminNotification{PurchaseID: rec.ID, Message: rec.Message}
		if err := tx.CreateAdminNotification(ctx, &admin); err != nil {
			return err
		}
		userNote := storage.Notification{
			UserID: user.ID,
			Message: s.i18n.T(user.Language, "notify_purchase_self_reported",
				"Credits", pkg.Credits, "Price", price),
			Link: "/purchases",
		}
		return tx.CreateNotification(ctx, &userNote)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("self-reported purchase granted",
		zap.Int64("user_id", user.ID),
		zap.Int64("credits", pkg.Credits),
		zap.String("purchase_id", rec.ID))

	s.notify.RefreshUser(ctx, user.ID)
	s.notify.RefreshAdmins(ctx)
	s.notify.Alert(rec.Message)
	return &rec, nil
}

// SetStatus applies an admin decision. pending->paid grants the credits in
// the same transaction that flips the status. Rejecting a paid record claws
// the granted credits back; rejecting a pending record moves no credits
// because none were granted. The acting admin's read flag on the related
// broadcast entry is set alongside.
func (s *Service) SetStatus(ctx context.Context, adminID int64, purchaseID string, status storage.PurchaseStatus) (*storage.PurchaseRecord, error) {
	if status != storage.PurchasePaid && status != storage.PurchaseRejected {
		return nil, ErrInvalidTransition
	}

	var rec *storage.PurchaseRecord
	var granted, clawedBack int64
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		var err error
		rec, err = tx.GetPurchase(ctx, purchaseID)
		if err != nil {
			return err
		}

		switch {
		case rec.Status == storage.PurchasePending && status == storage.PurchasePaid:
			if err := tx.Credit(ctx, rec.UserID, rec.Credits); err != nil {
				return err
			}
			granted = rec.Credits
		case rec.Status == storage.PurchasePending && status == storage.PurchaseRejected:
			// Nothing was granted, nothing to claw back.
		case rec.Status == storage.PurchasePaid && status == storage.PurchaseRejected:
			if err := tx.ClawBack(ctx, rec.UserID, rec.Credits); err != nil {
				return err
			}
			clawedBack = rec.Credits
		default:
			return ErrInvalidTransition
		}

		rec.Status = status
		if err := tx.SavePurchase(ctx, rec); err != nil {
			return err
		}

		if admin, err := tx.AdminNotificationByPurchase(ctx, purchaseID); err == nil {
			if err := tx.MarkAdminNotificationRead(ctx, admin.ID, adminID); err != nil {
				return err
			}
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		owner, err := tx.UserByID(ctx, rec.UserID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Account deleted since the request; keep the audit trail.
				return nil
			}
			return err
		}
		key := "notify_purchase_approved"
		if status == storage.PurchaseRejected {
			key = "notify_purchase_rejected"
		}
		userNote := storage.Notification{
			UserID:  owner.ID,
			Message: s.i18n.T(owner.Language, key, "Credits", rec.Credits),
			Link:    "/purchases",
		}
		return tx.CreateNotification(ctx, &userNote)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase status updated",
		zap.String("purchase_id", purchaseID),
		zap.String("status", string(status)),
		zap.Int64("admin_id", adminID),
		zap.Int64("granted", granted),
		zap.Int64("clawed_back", clawedBack))

	s.notify.RefreshUser(ctx, rec.UserID)
	s.notify.RefreshAdmins(ctx)
	return rec, nil
}

// History returns the user's purchase records, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]storage.PurchaseRecord, error) {
	return s.store.ListPurchases(ctx, userID)
}

// ReviewQueue lists purchases for admin review, optionally by status.
func (s *Service) ReviewQueue(ctx context.Context, status storage.PurchaseStatus) ([]storage.PurchaseRecord, error) {
	return s.store.ListAllPurchases(ctx, status)
}
