package memory

import (
	"fmt"
	"slices"

	"github.com/poiesic/depositbot/core"
	"github.com/tmc/langchaingo/llms"
)

const (
	// DefaultMemoryKey names the conversation-history slot in prompts.
	DefaultMemoryKey = "history"
	// DefaultInputKey names the user-input slot in prompts.
	DefaultInputKey = "question"

	humanPrefix = "Human"
	aiPrefix    = "AI"
)

// Conversation is an append-only, chronologically ordered buffer of turns.
// A Conversation is not safe for concurrent mutation; callers serialize access per chat.
type Conversation struct {
	memoryKey string
	inputKey  string
	turns     []core.Turn
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithMemoryKey overrides the history slot name.
func WithMemoryKey(key string) Option {
	return func(c *Conversation) {
		c.memoryKey = key
	}
}

// WithInputKey overrides the user input slot name.
func WithInputKey(key string) Option {
	return func(c *Conversation) {
		c.inputKey = key
	}
}

// NewConversation creates an empty conversation with the default keys.
func NewConversation(opts ...Option) *Conversation {
	c := &Conversation{
		memoryKey: DefaultMemoryKey,
		inputKey:  DefaultInputKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MemoryKey returns the name of the history slot.
func (c *Conversation) MemoryKey() string {
	return c.memoryKey
}

// InputKey returns the name of the user input slot.
func (c *Conversation) InputKey() string {
	return c.inputKey
}

// Append adds a validated turn to the end of the conversation.
func (c *Conversation) Append(turn core.Turn) error {
	if err := core.ValidateTurn(turn); err != nil {
		return err
	}
	c.turns = append(c.turns, turn)
	return nil
}

// AppendExchange appends a question followed by its answer.
// Neither turn is appended if either is invalid.
func (c *Conversation) AppendExchange(question, answer string) error {
	human := core.Turn{Role: core.RoleHuman, Content: question}
	ai := core.Turn{Role: core.RoleAI, Content: answer}
	if err := core.ValidateTurn(human); err != nil {
		return err
	}
	if err := core.ValidateTurn(ai); err != nil {
		return err
	}
	c.turns = append(c.turns, human, ai)
	return nil
}

// Turns returns a copy of the turns in chronological order.
func (c *Conversation) Turns() []core.Turn {
	return slices.Clone(c.turns)
}

// Len returns the number of turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}

// Messages converts the turns into langchaingo chat messages.
func (c *Conversation) Messages() []llms.ChatMessage {
	msgs := make([]llms.ChatMessage, 0, len(c.turns))
	for _, t := range c.turns {
		switch t.Role {
		case core.RoleHuman:
			msgs = append(msgs, llms.HumanChatMessage{Content: t.Content})
		case core.RoleAI:
			msgs = append(msgs, llms.AIChatMessage{Content: t.Content})
		}
	}
	return msgs
}

// Buffer renders the conversation as "Human: ...\nAI: ..." lines.
func (c *Conversation) Buffer() (string, error) {
	buf, err := llms.GetBufferString(c.Messages(), humanPrefix, aiPrefix)
	if err != nil {
		return "", fmt.Errorf("render history: %w", err)
	}
	return buf, nil
}
