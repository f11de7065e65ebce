package bot

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/poiesic/depositbot/core"
)

const (
	// maxMessageLength is Telegram's limit on message text, in characters.
	maxMessageLength = 4096

	defaultPollTimeout = 60
)

// Telegram long-polls the Bot API and sends replies through it.
type Telegram struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *slog.Logger
}

var _ Sender = (*Telegram)(nil)

// TelegramOption configures a Telegram transport.
type TelegramOption func(*Telegram)

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) TelegramOption {
	return func(t *Telegram) {
		if seconds > 0 {
			t.pollTimeout = seconds
		}
	}
}

// WithTelegramLogger sets a custom logger.
// Default is slog.Default().
func WithTelegramLogger(logger *slog.Logger) TelegramOption {
	return func(t *Telegram) {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
	}
}

// NewTelegram authenticates against the Bot API.
func NewTelegram(token string, opts ...TelegramOption) (*Telegram, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	t := &Telegram{
		api:         api,
		pollTimeout: defaultPollTimeout,
		logger:      slog.Default().With("component", "telegram"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger.Info("authorized", "bot", api.Self.UserName)
	return t, nil
}

// Send delivers text to a chat, split into several messages when it exceeds
// Telegram's length limit.
func (t *Telegram) Send(ctx context.Context, chatID int64, text string) error {
	for _, part := range splitMessage(text, maxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := t.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return err
		}
	}
	return nil
}

// Run long-polls updates and dispatches text messages until ctx is done.
func (t *Telegram) Run(ctx context.Context, d *Dispatcher) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout
	updates := t.api.GetUpdatesChan(u)
	defer t.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := incomingFromUpdate(update)
			if !ok {
				continue
			}
			if err := d.Dispatch(ctx, msg); err != nil {
				t.logger.Error("error dispatching message", "chat_id", msg.ChatID, "err", err)
			}
		}
	}
}

// incomingFromUpdate extracts a text message. Updates without text are skipped.
func incomingFromUpdate(update tgbotapi.Update) (IncomingMessage, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return IncomingMessage{}, false
	}

	msg := IncomingMessage{
		ChatID:    m.Chat.ID,
		Text:      m.Text,
		RequestID: uuid.NewString(),
	}
	if m.From != nil {
		msg.User = core.User{ID: m.From.ID, Username: m.From.UserName}
	}
	return msg, true
}

// splitMessage cuts text into parts of at most limit characters, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
