// Package retry keeps a flaky answer chain from ever surfacing an error to
// the user.
//
// Policy.Answer runs up to MaxAttempts attempts in sequence and logs every
// failure. A late success is prefixed with an apology. When nothing works the
// caller gets a fixed technical-difficulty message.
//
// WithBackoff is the general retry helper used for batch work such as
// reembedding, where attempts are spaced out with exponential delays.
package retry
