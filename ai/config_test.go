package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "https://gigachat.devices.sberbank.ru/api/v1", cfg.EmbeddingHost)
	assert.Equal(t, cfg.EmbeddingHost, cfg.ChatHost)
	assert.Equal(t, "Embeddings", cfg.EmbeddingModel)
	assert.Equal(t, "GigaChat-Pro", cfg.ChatModel)
	assert.Equal(t, 0.1, cfg.TopP)
	assert.Equal(t, 0.9, cfg.RepetitionPenalty)
	assert.Equal(t, 50*time.Second, cfg.Timeout)
	assert.False(t, cfg.TLS.Enabled())
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("with host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://custom:8080/v1"))

		assert.Equal(t, "http://custom:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://custom:8080/v1", cfg.ChatHost)
	})

	t.Run("with multiple options", func(t *testing.T) {
		cfg := NewConfig(
			WithEmbeddingHost("http://embed:8080/v1"),
			WithChatHost("http://chat:9090/v1"),
			WithEmbeddingModel("custom-embed"),
			WithChatModel("custom-chat"),
			WithToken("secret"),
			WithSampling(0.5, 0.8, 1.1),
			WithTimeout(time.Second),
			WithTLS(TLSConfig{CertFile: "c.pem", KeyFile: "c.key"}),
		)

		assert.Equal(t, "http://embed:8080/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://chat:9090/v1", cfg.ChatHost)
		assert.Equal(t, "custom-embed", cfg.EmbeddingModel)
		assert.Equal(t, "custom-chat", cfg.ChatModel)
		assert.Equal(t, "secret", cfg.Token)
		assert.Equal(t, 0.5, cfg.Temperature)
		assert.Equal(t, 0.8, cfg.TopP)
		assert.Equal(t, 1.1, cfg.RepetitionPenalty)
		assert.Equal(t, time.Second, cfg.Timeout)
		assert.True(t, cfg.TLS.Enabled())
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name              string
		embeddingHost     string
		chatHost          string
		expectedEmbedding string
		expectedChat      string
	}{
		{
			name:              "already has /v1",
			embeddingHost:     "http://localhost:11434/v1",
			chatHost:          "http://localhost:11434/v1",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "http://localhost:11434/v1",
		},
		{
			name:              "missing /v1",
			embeddingHost:     "http://localhost:11434",
			chatHost:          "http://localhost:11434",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "http://localhost:11434/v1",
		},
		{
			name:              "has trailing slash",
			embeddingHost:     "http://localhost:11434/",
			chatHost:          "http://localhost:11434/",
			expectedEmbedding: "http://localhost:11434/v1",
			expectedChat:      "http://localhost:11434/v1",
		},
		{
			name: "empty hosts",
		},
		{
			name:              "different formats",
			embeddingHost:     "http://embed:8080",
			chatHost:          "https://gigachat.devices.sberbank.ru/api/v1",
			expectedEmbedding: "http://embed:8080/v1",
			expectedChat:      "https://gigachat.devices.sberbank.ru/api/v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				EmbeddingHost: tt.embeddingHost,
				ChatHost:      tt.chatHost,
			}

			cfg.Normalize()

			assert.Equal(t, tt.expectedEmbedding, cfg.EmbeddingHost)
			assert.Equal(t, tt.expectedChat, cfg.ChatHost)
			assert.Equal(t, "none", cfg.Token)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config normalizes", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "http://localhost:11434/v1", cfg.ChatHost)
	})

	tests := []struct {
		name    string
		option  ConfigOption
		message string
	}{
		{"missing embedding host", WithEmbeddingHost(""), "EmbeddingHost"},
		{"missing chat host", WithChatHost(""), "ChatHost"},
		{"missing embedding model", WithEmbeddingModel(""), "EmbeddingModel"},
		{"missing chat model", WithChatModel(""), "ChatModel"},
		{"temperature too high", WithSampling(2.5, 0.1, 0.9), "Temperature"},
		{"negative temperature", WithSampling(-1, 0.1, 0.9), "Temperature"},
		{"zero top p", WithSampling(0, 0, 0.9), "TopP"},
		{"top p above one", WithSampling(0, 1.5, 0.9), "TopP"},
		{"zero repetition penalty", WithSampling(0, 0.1, 0), "RepetitionPenalty"},
		{"zero timeout", WithTimeout(0), "Timeout"},
		{"cert without key", WithTLS(TLSConfig{CertFile: "cert.pem"}), "KeyFile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfig(tt.option).Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
