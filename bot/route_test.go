package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		text string
		want Command
	}{
		{"/start", CommandStart},
		{"/clear", CommandClear},
		{"/unknown_command", CommandUnknown},
		{"Какая ставка по вкладу?", CommandAnswer},
		{"/start@deposit_helper_bot", CommandStart},
		{"/clear@deposit_helper_bot", CommandClear},
		{"  /clear  ", CommandClear},
		{"/start сейчас", CommandStart},
		{"/", CommandUnknown},
		{"ставка /start", CommandAnswer},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.text))
		})
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "answer", CommandAnswer.String())
	assert.Equal(t, "start", CommandStart.String())
	assert.Equal(t, "clear", CommandClear.String())
	assert.Equal(t, "unknown", CommandUnknown.String())
	assert.Equal(t, "invalid", Command(99).String())
}
