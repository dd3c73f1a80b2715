// Package app wires the services together and runs the server.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/musegen/muse-server/internal/auth"
	"github.com/musegen/muse-server/internal/config"
	"github.com/musegen/muse-server/internal/credits"
	"github.com/musegen/muse-server/internal/generate"
	"github.com/musegen/muse-server/internal/i18n"
	"github.com/musegen/muse-server/internal/notify"
	"github.com/musegen/muse-server/internal/objstore"
	"github.com/musegen/muse-server/internal/purchase"
	"github.com/musegen/muse-server/internal/server"
	"github.com/musegen/muse-server/internal/storage"
	"github.com/musegen/muse-server/internal/ticket"
	"github.com/musegen/muse-server/pkg/genapi"
)

// Run builds every component from config and serves until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	db, err := storage.InitDB(cfg.DBPath, log)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	store := storage.NewStore(db, log)

	i18nManager, err := i18n.NewManager(cfg.DefaultLanguage, log)
	if err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	objects, err := objstore.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	provider, err := genapi.NewClient(cfg.Provider.APIKey, cfg.Provider.BaseURL, log,
		genapi.WithModels(cfg.Provider.AvatarModel, cfg.Provider.SpeechModel,
			cfg.Provider.StoryModel, cfg.Provider.VideoModel))
	if err != nil {
		return fmt.Errorf("init provider client: %w", err)
	}

	telegram, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.AdminChatIDs, log)
	if err != nil {
		return fmt.Errorf("init telegram notifier: %w", err)
	}
	notifySvc := notify.NewService(store, telegram, log)

	authSvc := auth.NewService(store, cfg.Admins.Emails, cfg.Credits.InitialGrant,
		time.Duration(cfg.Session.TTLHours)*time.Hour, log)

	pricing := credits.Pricing{
		Avatar:      cfg.Credits.AvatarCost,
		Story:       cfg.Credits.StoryCost,
		Video:       cfg.Credits.VideoCost,
		SpeechBase:  cfg.Credits.SpeechBaseCost,
		SpeechBlock: cfg.Credits.SpeechBlockSize,
	}
	genSvc := generate.NewService(store, objects, provider, pricing,
		time.Duration(cfg.Provider.PollIntervalMS)*time.Millisecond,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second, log)

	packages := make([]purchase.Package, len(cfg.Packages))
	for i, pkg := range cfg.Packages {
		packages[i] = purchase.Package{
			Title:      pkg.Title,
			Credits:    pkg.Credits,
			PriceCents: pkg.PriceCents,
		}
	}
	purchaseSvc := purchase.NewService(store, notifySvc, i18nManager, packages, log)
	ticketSvc := ticket.NewService(store, notifySvc, i18nManager, log)

	srv := server.New(cfg.ListenAddr, log, store, authSvc, genSvc, purchaseSvc, ticketSvc, notifySvc, i18nManager)
	return srv.Run(ctx)
}
