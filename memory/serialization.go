package memory

import (
	"fmt"

	"github.com/poiesic/depositbot/core"
)

// Schema field names and class tags of the primitive representation.
const (
	FieldClassname  = "classname"
	FieldMemoryKey  = "memory_key"
	FieldInputKey   = "input_key"
	FieldChatMemory = "chat_memory"
	FieldMessages   = "messages"
	FieldType       = "type"
	FieldContent    = "content"

	ClassConversation = "ConversationBufferMemory"
	ClassHistory      = "ChatMessageHistory"
	ClassHuman        = "HumanMessage"
	ClassAI           = "AIMessage"
)

var roleClasses = map[core.Role]string{
	core.RoleHuman: ClassHuman,
	core.RoleAI:    ClassAI,
}

// ToPrimitive converts a conversation into a tree of maps, slices and strings.
// A nil conversation converts to an empty sequence.
func ToPrimitive(c *Conversation) any {
	if c == nil {
		return []any{}
	}

	messages := make([]any, 0, len(c.turns))
	for _, t := range c.turns {
		messages = append(messages, map[string]any{
			FieldClassname: roleClasses[t.Role],
			FieldType:      t.Role.Tag(),
			FieldContent:   t.Content,
		})
	}

	return map[string]any{
		FieldClassname: ClassConversation,
		FieldMemoryKey: c.memoryKey,
		FieldInputKey:  c.inputKey,
		FieldChatMemory: map[string]any{
			FieldClassname: ClassHistory,
			FieldMessages:  messages,
		},
	}
}

// FromPrimitive rebuilds a conversation from its primitive form.
// A nil or empty value yields a nil conversation and no error.
// Missing keys, wrong types and unknown message tags are reported as ErrCorruptSession.
func FromPrimitive(v any) (*Conversation, error) {
	if isEmpty(v) {
		return nil, nil
	}

	root, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected mapping, got %T", ErrCorruptSession, v)
	}

	memoryKey, err := stringField(root, FieldMemoryKey)
	if err != nil {
		return nil, err
	}
	inputKey, err := stringField(root, FieldInputKey)
	if err != nil {
		return nil, err
	}

	raw, ok := root[FieldChatMemory]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrCorruptSession, FieldChatMemory)
	}
	history, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T", ErrCorruptSession, FieldChatMemory, raw)
	}
	raw, ok = history[FieldMessages]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrCorruptSession, FieldMessages)
	}
	var messages []any
	switch m := raw.(type) {
	case nil:
	case []any:
		messages = m
	default:
		return nil, fmt.Errorf("%w: %q is %T", ErrCorruptSession, FieldMessages, raw)
	}

	c := NewConversation(WithMemoryKey(memoryKey), WithInputKey(inputKey))
	for i, item := range messages {
		turn, err := turnFromPrimitive(item)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		c.turns = append(c.turns, turn)
	}
	return c, nil
}

func turnFromPrimitive(v any) (core.Turn, error) {
	msg, ok := v.(map[string]any)
	if !ok {
		return core.Turn{}, fmt.Errorf("%w: message is %T", ErrCorruptSession, v)
	}
	tag, err := stringField(msg, FieldType)
	if err != nil {
		return core.Turn{}, err
	}
	role, ok := core.RoleFromTag(tag)
	if !ok {
		return core.Turn{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, tag)
	}
	if class, present := msg[FieldClassname]; present && class != roleClasses[role] {
		return core.Turn{}, fmt.Errorf("%w: classname %v does not match type %q", ErrCorruptSession, class, tag)
	}
	content, err := stringField(msg, FieldContent)
	if err != nil {
		return core.Turn{}, err
	}
	return core.Turn{Role: role, Content: content}, nil
}

func stringField(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrCorruptSession, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %T", ErrCorruptSession, key, raw)
	}
	return s, nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case string:
		return t == ""
	default:
		return false
	}
}
