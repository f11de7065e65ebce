package memory

import (
	"encoding/json"
	"testing"

	"github.com/poiesic/depositbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildConversation(t *testing.T, turns []core.Turn, opts ...Option) *Conversation {
	t.Helper()
	c := NewConversation(opts...)
	for _, turn := range turns {
		require.NoError(t, c.Append(turn))
	}
	return c
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		turns []core.Turn
		opts  []Option
	}{
		{
			name: "alternating turns",
			turns: []core.Turn{
				{Role: core.RoleHuman, Content: "Какие есть вклады?"},
				{Role: core.RoleAI, Content: "Есть вклад «Лучший %» и СберВклад."},
				{Role: core.RoleHuman, Content: "А ставка?"},
				{Role: core.RoleAI, Content: "До 20% годовых."},
			},
		},
		{
			name: "non-alternating turns",
			turns: []core.Turn{
				{Role: core.RoleHuman, Content: "one"},
				{Role: core.RoleHuman, Content: "two"},
				{Role: core.RoleAI, Content: "three"},
				{Role: core.RoleAI, Content: "four"},
				{Role: core.RoleAI, Content: "five"},
			},
		},
		{
			name:  "no turns with custom keys",
			turns: nil,
			opts:  []Option{WithMemoryKey("chat_history"), WithInputKey("input")},
		},
		{
			name: "multiline content",
			turns: []core.Turn{
				{Role: core.RoleHuman, Content: "line1\nline2\n\nline3"},
			},
			opts: []Option{WithInputKey("query")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			original := buildConversation(t, tc.turns, tc.opts...)

			restored, err := FromPrimitive(ToPrimitive(original))
			require.NoError(t, err)
			require.NotNil(t, restored)

			assert.Equal(t, original.Turns(), restored.Turns())
			assert.Equal(t, original.MemoryKey(), restored.MemoryKey())
			assert.Equal(t, original.InputKey(), restored.InputKey())
		})
	}
}

func TestRoundTrip_ThroughJSON(t *testing.T) {
	original := buildConversation(t, []core.Turn{
		{Role: core.RoleHuman, Content: "Можно ли снять деньги досрочно?"},
		{Role: core.RoleAI, Content: "Да, с потерей процентов."},
	})

	data, err := json.Marshal(ToPrimitive(original))
	require.NoError(t, err)

	var decoded any
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored, err := FromPrimitive(decoded)
	require.NoError(t, err)
	assert.Equal(t, original.Turns(), restored.Turns())
}

func TestToPrimitive_Schema(t *testing.T) {
	c := buildConversation(t, []core.Turn{
		{Role: core.RoleHuman, Content: "q"},
		{Role: core.RoleAI, Content: "a"},
	})

	prim, ok := ToPrimitive(c).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ClassConversation, prim[FieldClassname])
	assert.Equal(t, "history", prim[FieldMemoryKey])
	assert.Equal(t, "question", prim[FieldInputKey])

	history := prim[FieldChatMemory].(map[string]any)
	assert.Equal(t, ClassHistory, history[FieldClassname])

	messages := history[FieldMessages].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, map[string]any{FieldClassname: ClassHuman, FieldType: "human", FieldContent: "q"}, messages[0])
	assert.Equal(t, map[string]any{FieldClassname: ClassAI, FieldType: "ai", FieldContent: "a"}, messages[1])
}

func TestEmptyValues(t *testing.T) {
	t.Run("nil conversation serializes to empty sequence", func(t *testing.T) {
		assert.Equal(t, []any{}, ToPrimitive(nil))
	})

	for name, v := range map[string]any{
		"nil":            nil,
		"empty sequence": []any{},
		"empty mapping":  map[string]any{},
		"empty string":   "",
	} {
		t.Run("from "+name, func(t *testing.T) {
			c, err := FromPrimitive(v)
			assert.NoError(t, err)
			assert.Nil(t, c)
		})
	}
}

func TestFromPrimitive_Corrupt(t *testing.T) {
	valid := func() map[string]any {
		return map[string]any{
			FieldMemoryKey: "history",
			FieldInputKey:  "question",
			FieldChatMemory: map[string]any{
				FieldMessages: []any{
					map[string]any{FieldType: "human", FieldContent: "hi"},
				},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(m map[string]any) any
	}{
		{"missing memory_key", func(m map[string]any) any { delete(m, FieldMemoryKey); return m }},
		{"missing input_key", func(m map[string]any) any { delete(m, FieldInputKey); return m }},
		{"non-string input_key", func(m map[string]any) any { m[FieldInputKey] = 7; return m }},
		{"missing chat_memory", func(m map[string]any) any { delete(m, FieldChatMemory); return m }},
		{"chat_memory not a mapping", func(m map[string]any) any { m[FieldChatMemory] = "x"; return m }},
		{"missing messages", func(m map[string]any) any { m[FieldChatMemory] = map[string]any{}; return m }},
		{"messages not a sequence", func(m map[string]any) any {
			m[FieldChatMemory] = map[string]any{FieldMessages: "x"}
			return m
		}},
		{"message missing content", func(m map[string]any) any {
			m[FieldChatMemory] = map[string]any{FieldMessages: []any{map[string]any{FieldType: "ai"}}}
			return m
		}},
		{"classname contradicts type", func(m map[string]any) any {
			m[FieldChatMemory] = map[string]any{FieldMessages: []any{
				map[string]any{FieldClassname: ClassAI, FieldType: "human", FieldContent: "x"},
			}}
			return m
		}},
		{"non-empty sequence root", func(m map[string]any) any { return []any{m} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := FromPrimitive(tc.mutate(valid()))
			assert.ErrorIs(t, err, ErrCorruptSession)
			assert.Nil(t, c)
		})
	}

	t.Run("null messages yields empty conversation", func(t *testing.T) {
		m := valid()
		m[FieldChatMemory] = map[string]any{FieldMessages: nil}
		c, err := FromPrimitive(m)
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	})
}

func TestFromPrimitive_UnknownTypeFailsFast(t *testing.T) {
	prim := map[string]any{
		FieldMemoryKey: "history",
		FieldInputKey:  "question",
		FieldChatMemory: map[string]any{
			FieldMessages: []any{
				map[string]any{FieldType: "human", FieldContent: "hi"},
				map[string]any{FieldType: "system", FieldContent: "you are a bot"},
			},
		},
	}

	c, err := FromPrimitive(prim)
	assert.ErrorIs(t, err, ErrUnknownMessageType)
	assert.ErrorIs(t, err, ErrCorruptSession)
	assert.Nil(t, c)
}
