package session

import "errors"

var (
	// ErrRepositoryRequired is returned when a session repository is not provided.
	ErrRepositoryRequired = errors.New("session repository required")

	// ErrChainFactoryRequired is returned when no chain factory is provided.
	ErrChainFactoryRequired = errors.New("chain factory required")
)
