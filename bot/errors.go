package bot

import "errors"

var (
	// ErrSessionsRequired is returned when a handler has no session manager.
	ErrSessionsRequired = errors.New("session manager required")

	// ErrSenderRequired is returned when a handler has no sender.
	ErrSenderRequired = errors.New("sender required")

	// ErrHandlerRequired is returned when a dispatcher has no handler.
	ErrHandlerRequired = errors.New("message handler required")

	// ErrDispatcherReleased is returned when dispatching after Release.
	ErrDispatcherReleased = errors.New("dispatcher released")

	// ErrTokenRequired is returned when the Telegram token is empty.
	ErrTokenRequired = errors.New("telegram token required")
)
