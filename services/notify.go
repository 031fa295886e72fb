package services

import (
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier delivers best-effort messages. Implementations must never block
// a business operation: a failed send is logged and reported as false, not
// returned as an error.
type Notifier interface {
	Send(message string) bool
}

// TelegramNotifier posts messages to a fixed chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) Send(message string) bool {
	msg := tgbotapi.NewMessage(n.chatID, message)
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("telegram send failed: %v", err)
		return false
	}
	return true
}

// NoopNotifier is used when no notification channel is configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(message string) bool { return true }
