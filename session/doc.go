// Package session keeps one conversation per chat.
//
// A Manager loads a chat's memory from the session repository on first use,
// hands it to the caller under a per-chat lock and writes it back afterwards.
// Sessions survive restarts in the badger store; Reset starts a chat over.
package session
