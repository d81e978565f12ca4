package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Notifier is a Telegram implementation of the Alerter interface. It sends
// pre-formatted alert messages to a fixed chat (typically a group shared
// by the people on call).
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewNotifier creates a notifier and verifies the bot token against the
// Telegram API.
func NewNotifier(botToken string, chatID int64, logger *zap.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	logger.Info("Connected to Telegram",
		zap.String("bot", bot.Self.UserName),
		zap.Int64("chat_id", chatID))

	return &Notifier{
		bot:    bot,
		chatID: chatID,
		logger: logger,
	}, nil
}

// Send delivers an alert message with Markdown formatting. The bot API
// client carries its own HTTP timeout; ctx is checked before sending.
func (n *Notifier) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, message)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send Telegram alert: %w", err)
	}

	n.logger.Debug("Sent Telegram alert", zap.Int64("chat_id", n.chatID))
	return nil
}
