package bot

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/retry"
	"github.com/poiesic/depositbot/session"
)

// IncomingMessage is a text message received from a chat.
type IncomingMessage struct {
	ChatID    int64
	User      core.User
	Text      string
	RequestID string
}

// Sender delivers a text reply to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// MessageHandler processes one inbound message.
type MessageHandler interface {
	Handle(ctx context.Context, msg IncomingMessage) error
}

// Handler turns inbound messages into replies. Errors never reach the user:
// every failure ends in a plain-text reply.
type Handler struct {
	sessions *session.Manager
	policy   *retry.Policy
	sender   Sender
	answers  *AnswerLog
	logger   *slog.Logger
}

var _ MessageHandler = (*Handler)(nil)

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithPolicy overrides the retry policy.
func WithPolicy(policy *retry.Policy) HandlerOption {
	return func(h *Handler) {
		h.policy = policy
	}
}

// WithAnswerLog records every answered question.
func WithAnswerLog(log *AnswerLog) HandlerOption {
	return func(h *Handler) {
		h.answers = log
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
	}
}

// NewHandler creates a handler answering through sessions and replying through sender.
func NewHandler(sessions *session.Manager, sender Sender, opts ...HandlerOption) (*Handler, error) {
	if sessions == nil {
		return nil, ErrSessionsRequired
	}
	if sender == nil {
		return nil, ErrSenderRequired
	}

	h := &Handler{
		sessions: sessions,
		sender:   sender,
		logger:   slog.Default().With("component", "bot"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.policy == nil {
		h.policy = retry.NewPolicy(h.logger)
	}
	return h, nil
}

// Handle processes one message. The returned error only reports a failed send.
func (h *Handler) Handle(ctx context.Context, msg IncomingMessage) error {
	if msg.RequestID == "" {
		msg.RequestID = uuid.NewString()
	}
	logger := h.logger.With("request_id", msg.RequestID, "chat_id", msg.ChatID, "user_id", msg.User.ID)

	command := Route(msg.Text)
	logger.Debug("message received", "command", command)

	switch command {
	case CommandStart:
		return h.reset(ctx, logger, msg, GreetingMessage)
	case CommandClear:
		return h.reset(ctx, logger, msg, ClearedMessage)
	case CommandUnknown:
		return h.sender.Send(ctx, msg.ChatID, UnknownCommandMessage)
	default:
		return h.answer(ctx, logger, msg)
	}
}

func (h *Handler) reset(ctx context.Context, logger *slog.Logger, msg IncomingMessage, reply string) error {
	if _, err := h.sessions.Reset(ctx, msg.ChatID); err != nil {
		logger.Error("error resetting session", "err", err)
		reply = retry.FallbackMessage
	}
	return h.sender.Send(ctx, msg.ChatID, reply)
}

func (h *Handler) answer(ctx context.Context, logger *slog.Logger, msg IncomingMessage) error {
	var reply string
	err := h.sessions.Do(ctx, msg.ChatID, func(s *session.Session) error {
		reply = h.policy.Answer(ctx, msg.Text, msg.User, s)
		logger.Debug("question answered", "route", s.LastRoute())
		return nil
	})
	if err != nil {
		logger.Error("session failure", "err", err)
		if reply == "" {
			reply = retry.FallbackMessage
		}
	}

	if err := h.sender.Send(ctx, msg.ChatID, reply); err != nil {
		logger.Error("error sending answer", "err", err)
		return err
	}
	if h.answers != nil {
		h.answers.Record(ctx, msg.User, msg.Text, reply)
	}
	return nil
}
