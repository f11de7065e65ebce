package storage

import (
	"testing"
	"time"

	"github.com/poiesic/depositbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name  string
		chunk *core.Chunk
	}{
		{
			name: "chunk without vector",
			chunk: &core.Chunk{
				Id:         core.IDFromContent("Сбервклад\nСтавка 16%"),
				Text:       "Сбервклад\nСтавка 16%",
				Source:     "Сбервклад",
				InsertedAt: now,
			},
		},
		{
			name: "chunk with vector",
			chunk: &core.Chunk{
				Id:         core.ID(7),
				Text:       "Лучший %",
				Source:     "promo",
				Vector:     []float32{0.1, -0.25, 0.5, 1},
				InsertedAt: now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalChunk(tt.chunk)

			decoded, err := UnmarshalChunk(data)
			require.NoError(t, err)
			assert.Equal(t, tt.chunk.Id, decoded.Id)
			assert.Equal(t, tt.chunk.Text, decoded.Text)
			assert.Equal(t, tt.chunk.Source, decoded.Source)
			assert.Equal(t, tt.chunk.Vector, decoded.Vector)
			assert.True(t, tt.chunk.InsertedAt.Equal(decoded.InsertedAt))
		})
	}
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	data := MarshalChunk(&core.Chunk{
		Id:     1,
		Text:   "some text",
		Source: "src",
		Vector: []float32{1, 2, 3},
	})

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)
}

func TestMarshalUnmarshalPrimitive(t *testing.T) {
	tree := map[string]any{
		"classname":  "ConversationBufferMemory",
		"memory_key": "history",
		"input_key":  "question",
		"chat_memory": map[string]any{
			"classname": "ChatMessageHistory",
			"messages": []any{
				map[string]any{"classname": "HumanMessage", "type": "human", "content": "Привет"},
				map[string]any{"classname": "AIMessage", "type": "ai", "content": "Здравствуйте!"},
			},
		},
		"flag":   true,
		"count":  int64(-3),
		"ratio":  0.5,
		"nested": []any{[]any{"a", nil}, []any{}},
	}

	data, err := MarshalPrimitive(tree)
	require.NoError(t, err)

	decoded, err := UnmarshalPrimitive(data)
	require.NoError(t, err)
	assert.Equal(t, tree, decoded)
}

func TestMarshalPrimitive_NormalizesNumbers(t *testing.T) {
	data, err := MarshalPrimitive([]any{7, int32(8), float32(0.25)})
	require.NoError(t, err)

	decoded, err := UnmarshalPrimitive(data)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(7), int64(8), 0.25}, decoded)
}

func TestMarshalPrimitive_Deterministic(t *testing.T) {
	a := map[string]any{"b": "2", "a": "1", "c": "3"}
	b := map[string]any{"c": "3", "a": "1", "b": "2"}

	da, err := MarshalPrimitive(a)
	require.NoError(t, err)
	db, err := MarshalPrimitive(b)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestMarshalPrimitive_Unsupported(t *testing.T) {
	_, err := MarshalPrimitive(map[string]any{"when": time.Now()})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestUnmarshalPrimitive_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"unknown kind", []byte{99}},
		{"list longer than data", []byte{kindList, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalPrimitive(tt.data)
			assert.Error(t, err)
		})
	}
}
