package memory

import (
	"testing"

	"github.com/poiesic/depositbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestNewConversation_Defaults(t *testing.T) {
	c := NewConversation()
	assert.Equal(t, "history", c.MemoryKey())
	assert.Equal(t, "question", c.InputKey())
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Turns())
}

func TestConversation_AppendExchange(t *testing.T) {
	c := NewConversation()
	require.NoError(t, c.AppendExchange("Какой срок вклада?", "От 1 до 36 месяцев."))
	require.NoError(t, c.AppendExchange("А пополнение?", "Да."))

	turns := c.Turns()
	require.Len(t, turns, 4)
	assert.Equal(t, core.Turn{Role: core.RoleHuman, Content: "Какой срок вклада?"}, turns[0])
	assert.Equal(t, core.Turn{Role: core.RoleAI, Content: "От 1 до 36 месяцев."}, turns[1])
	assert.Equal(t, core.RoleHuman, turns[2].Role)
	assert.Equal(t, core.RoleAI, turns[3].Role)

	t.Run("invalid exchange appends nothing", func(t *testing.T) {
		err := c.AppendExchange("question", "")
		assert.ErrorIs(t, err, core.ErrEmptyContent)
		assert.Equal(t, 4, c.Len())
	})
}

func TestConversation_TurnsIsCopy(t *testing.T) {
	c := NewConversation()
	require.NoError(t, c.Append(core.Turn{Role: core.RoleHuman, Content: "hi"}))

	turns := c.Turns()
	turns[0].Content = "mutated"

	assert.Equal(t, "hi", c.Turns()[0].Content)
}

func TestConversation_Append_Invalid(t *testing.T) {
	c := NewConversation()
	err := c.Append(core.Turn{Role: core.Role(0), Content: "x"})
	assert.ErrorIs(t, err, core.ErrInvalidRole)
	assert.Equal(t, 0, c.Len())
}

func TestConversation_MessagesAndBuffer(t *testing.T) {
	c := NewConversation()
	require.NoError(t, c.AppendExchange("вопрос", "ответ"))

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[0].GetType())
	assert.Equal(t, llms.ChatMessageTypeAI, msgs[1].GetType())

	buf, err := c.Buffer()
	require.NoError(t, err)
	assert.Equal(t, "Human: вопрос\nAI: ответ", buf)

	empty, err := NewConversation().Buffer()
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}
