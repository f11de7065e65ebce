package retry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/depositbot/core"
)

const (
	// DefaultMaxAttempts is the number of answer attempts per question.
	DefaultMaxAttempts = 3

	// FallbackMessage is returned once every attempt has failed.
	FallbackMessage = "Возникла техническая ошибка. Повторите запрос, пожалуйста."

	// ApologyPrefix is prepended to answers that needed more than one attempt.
	ApologyPrefix = "Простите, что заставил ждать. "
)

// Answerer produces an answer for a question. Sessions implement it.
type Answerer interface {
	Answer(ctx context.Context, question string) (*core.Answer, error)
}

// Policy runs answer attempts sequentially until one yields text.
type Policy struct {
	// MaxAttempts defaults to DefaultMaxAttempts when <= 0.
	MaxAttempts int
	// Logger receives one error record per failed attempt.
	// Defaults to slog.Default() with component=retry.
	Logger *slog.Logger
}

// NewPolicy returns a policy with the default attempt count.
func NewPolicy(logger *slog.Logger) *Policy {
	return &Policy{MaxAttempts: DefaultMaxAttempts, Logger: logger}
}

// Answer never fails: it returns either an answer text or FallbackMessage.
// An attempt fails when it returns an error, blank text or panics.
func (p *Policy) Answer(ctx context.Context, question string, user core.User, answerer Answerer) string {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default().With("component", "retry")
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		text, err := attemptAnswer(ctx, question, answerer)
		if err == nil {
			if attempt > 1 {
				return ApologyPrefix + text
			}
			return text
		}

		logger.Error("error answering question",
			"attempt", attempt,
			"user_id", user.ID,
			"username", user.Username,
			"err", err,
		)
		if ctx.Err() != nil {
			break
		}
	}
	return FallbackMessage
}

func attemptAnswer(ctx context.Context, question string, answerer Answerer) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	answer, err := answerer.Answer(ctx, question)
	if err != nil {
		return "", err
	}
	if answer == nil || strings.TrimSpace(answer.Text) == "" {
		return "", ErrEmptyAnswer
	}
	return answer.Text, nil
}
