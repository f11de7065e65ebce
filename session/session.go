package session

import (
	"context"

	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/memory"
	"github.com/poiesic/depositbot/rag"
)

// Diagnostics is implemented by chains that remember their last invocation.
type Diagnostics interface {
	LastPrompt() string
	LastRoute() string
}

// Session is the conversation state of one chat: its memory and the chain
// answering against it.
type Session struct {
	chatID int64
	mem    *memory.Conversation
	chain  rag.Chain
}

// ChatID returns the chat this session belongs to.
func (s *Session) ChatID() int64 {
	return s.chatID
}

// Memory returns the session's conversation.
func (s *Session) Memory() *memory.Conversation {
	return s.mem
}

// Answer runs the session's chain on the question.
func (s *Session) Answer(ctx context.Context, question string) (*core.Answer, error) {
	return s.chain.Answer(ctx, question, s.mem)
}

// LastPrompt returns the prompt of the most recent answer, if the chain keeps it.
func (s *Session) LastPrompt() string {
	if d, ok := s.chain.(Diagnostics); ok {
		return d.LastPrompt()
	}
	return ""
}

// LastRoute returns the route of the most recent answer, if the chain keeps it.
func (s *Session) LastRoute() string {
	if d, ok := s.chain.(Diagnostics); ok {
		return d.LastRoute()
	}
	return ""
}
