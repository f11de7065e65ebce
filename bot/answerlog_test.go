package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/poiesic/depositbot/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerLog_Record(t *testing.T) {
	var buf bytes.Buffer
	log := NewAnswerLog(&buf)

	log.Record(context.Background(), core.User{ID: 42, Username: "ivan"}, "Какая ставка?", "До 18%.")
	log.Record(context.Background(), core.User{ID: 7}, "Срок?", "До 3 лет.")
	require.NoError(t, log.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Len(t, first, 5)
	assert.Equal(t, "ivan", first["username"])
	assert.Equal(t, float64(42), first["user_id"])
	assert.Equal(t, "Какая ставка?", first["question"])
	assert.Equal(t, "До 18%.", first["answer"])
	assert.NotContains(t, first, "level")
	assert.NotContains(t, first, "msg")

	stamp, ok := first["time"].(string)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339, stamp)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, parsed.Location())
	assert.True(t, strings.HasSuffix(stamp, "Z"))

	assert.True(t, strings.HasPrefix(lines[0], `{"time":`))
	assert.Less(t, strings.Index(lines[0], `"username"`), strings.Index(lines[0], `"user_id"`))
	assert.Less(t, strings.Index(lines[0], `"question"`), strings.Index(lines[0], `"answer"`))

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "", second["username"])
}
