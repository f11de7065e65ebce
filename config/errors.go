package config

import "errors"

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrTelegramTokenRequired is returned when serving without a bot token.
	ErrTelegramTokenRequired = errors.New("telegram token required")
)
