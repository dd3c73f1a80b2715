package notify

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramNotifier mirrors admin notifications to a Telegram chat so
// operators see purchase requests without watching the console.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatIDs []int64
	logger  *zap.Logger
}

// NewTelegramNotifier returns nil when no bot token is configured; callers
// treat a nil notifier as disabled.
func NewTelegramNotifier(botToken string, chatIDs []int64, logger *zap.Logger) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	logger.Info("telegram admin notifier enabled", zap.String("username", bot.Self.UserName))
	return &TelegramNotifier{
		bot:     bot,
		chatIDs: chatIDs,
		logger:  logger.Named("telegram"),
	}, nil
}

// Send delivers the text to every configured admin chat. Delivery failures
// are logged and skipped; the in-app notification is the source of truth.
func (t *TelegramNotifier) Send(text string) {
	if t == nil {
		return
	}
	for _, chatID := range t.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Error("send admin alert", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}
