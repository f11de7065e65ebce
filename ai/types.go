package ai

import (
	"errors"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// ErrMalformedResponse indicates the model returned no usable text field.
var ErrMalformedResponse = errors.New("malformed model response")

// CompletionRequest is one call to a ChatModel.
type CompletionRequest struct {
	// System is the rendered system prompt.
	System string
	// History holds earlier turns of the conversation, oldest first.
	History []llms.ChatMessage
	// User is the rendered user prompt.
	User string
}

// Messages returns the request as an ordered message list:
// system prompt, history, then the user prompt.
func (r CompletionRequest) Messages() []llms.MessageContent {
	msgs := make([]llms.MessageContent, 0, len(r.History)+2)
	if r.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, r.System))
	}
	for _, m := range r.History {
		msgs = append(msgs, llms.TextParts(m.GetType(), m.GetContent()))
	}
	return append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, r.User))
}

// Render returns the exact prompt text of the request, one "Role: content"
// block per message.
func (r CompletionRequest) Render() string {
	var sb strings.Builder
	for i, m := range r.Messages() {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(roleLabel(m.Role))
		sb.WriteString(": ")
		for _, part := range m.Parts {
			if text, ok := part.(llms.TextContent); ok {
				sb.WriteString(text.Text)
			}
		}
	}
	return sb.String()
}

func roleLabel(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeSystem:
		return "System"
	case llms.ChatMessageTypeHuman:
		return "Human"
	case llms.ChatMessageTypeAI:
		return "AI"
	default:
		return string(role)
	}
}
