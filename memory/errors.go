package memory

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptSession indicates stored memory is missing required keys or has wrong types.
	ErrCorruptSession = errors.New("corrupt session state")

	// ErrUnknownMessageType indicates a stored message carries an unrecognized type tag.
	ErrUnknownMessageType = fmt.Errorf("%w: unknown message type", ErrCorruptSession)
)
