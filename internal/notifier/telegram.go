package notifier

import (
	"context"

	"github.com/PaulSonOfLars/gotgbot/v2"
	"go.uber.org/zap"
)

// Sender is the part of *gotgbot.Bot used for delivery.
type Sender interface {
	SendMessage(chatId int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error)
}

// Telegram delivers plain text messages to a single chat.
type Telegram struct {
	Sender Sender
	ChatID int64
	Logger *zap.Logger
}

func NewTelegram(sender Sender, chatID int64, logger *zap.Logger) *Telegram {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Telegram{
		Sender: sender,
		ChatID: chatID,
		Logger: logger,
	}
}

// Notify sends text to the chat. Delivery errors are logged and dropped; the
// result only reports whether the message went out.
func (t *Telegram) Notify(_ context.Context, text string) bool {
	_, err := t.Sender.SendMessage(t.ChatID, text, &gotgbot.SendMessageOpts{
		LinkPreviewOptions: &gotgbot.LinkPreviewOptions{
			IsDisabled: true,
		},
	})
	if err != nil {
		t.Logger.Error("failed to send message", zap.Int64("chat_id", t.ChatID), zap.String("text", text), zap.Error(err))
		return false
	}

	t.Logger.Debug(text)
	return true
}
