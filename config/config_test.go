package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/depositbot/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, StandExt, cfg.LLM.Stand)
	assert.Equal(t, "GigaChat-Pro", cfg.LLM.ChatModel)
	assert.Equal(t, 1e-8, cfg.LLM.Temperature)
	assert.Equal(t, 0.1, cfg.LLM.TopP)
	assert.Equal(t, 0.9, cfg.LLM.RepetitionPenalty)
	assert.Equal(t, 50*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 1400, cfg.Index.ChunkSize)
	assert.Equal(t, 70, cfg.Index.ChunkOverlap)
	assert.Equal(t, 3, cfg.Index.K)
	assert.Equal(t, search.ModeMMR, cfg.SearchMode())
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "deposit_bot.json", cfg.AnswerLog.Path)
	assert.False(t, cfg.Router.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Storage.SessionIdleTimeout)

	assert.ErrorIs(t, cfg.RequireTelegram(), ErrTelegramTokenRequired)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
telegram:
  token: file-token
llm:
  stand: ift
  timeout: 20s
  top_p: 0.5
index:
  mode: similarity_score_threshold
  score_threshold: 0.8
  k: 5
storage:
  session_idle_timeout: 10m
router:
  enabled: true
  destinations:
    - name: vklady
      description: вопросы о вкладах
      persona: Ты консультант по вкладам.
`))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, 20*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 0.5, cfg.LLM.TopP)
	assert.Equal(t, search.ModeSimilarityThreshold, cfg.SearchMode())
	assert.Equal(t, float32(0.8), cfg.Index.ScoreThreshold)
	assert.Equal(t, 5, cfg.Index.K)
	assert.Equal(t, 1400, cfg.Index.ChunkSize, "unset keys keep defaults")
	assert.Equal(t, 10*time.Minute, cfg.Storage.SessionIdleTimeout)
	assert.Equal(t, "depositbot-data", cfg.Storage.Path)
	require.Len(t, cfg.Router.Destinations, 1)
	assert.Equal(t, "vklady", cfg.Router.Destinations[0].Name)
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("telegarm:\n  token: x\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "file-token"
	env := map[string]string{
		EnvTelegramToken: "env-token",
		EnvLLMToken:      "llm-secret",
		EnvLLMHost:       "http://localhost:8080",
	}
	cfg.ApplyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})

	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.Equal(t, "llm-secret", cfg.LLM.Token)
	assert.Equal(t, "http://localhost:8080", cfg.LLM.Host)

	aiCfg := cfg.AIConfig()
	assert.Equal(t, "http://localhost:8080/v1", aiCfg.ChatHost)
	assert.Equal(t, "http://localhost:8080/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "llm-secret", aiCfg.Token)
	assert.False(t, aiCfg.TLS.InsecureSkipVerify)
}

func TestApplyEnv_EmptyValuesIgnored(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "file-token"
	cfg.ApplyEnv(func(string) (string, bool) { return "", true })
	assert.Equal(t, "file-token", cfg.Telegram.Token)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depositbot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  path: /var/lib/depositbot\n"), 0o600))
	t.Setenv(EnvTelegramToken, "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/depositbot", cfg.Storage.Path)
	assert.Equal(t, "env-token", cfg.Telegram.Token)
	assert.NoError(t, cfg.RequireTelegram())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown mode", func(c *Config) { c.Index.Mode = "random" }},
		{"zero k", func(c *Config) { c.Index.K = 0 }},
		{"overlap too large", func(c *Config) { c.Index.ChunkOverlap = c.Index.ChunkSize }},
		{"no storage path", func(c *Config) { c.Storage.Path = "" }},
		{"router without destinations", func(c *Config) { c.Router.Enabled = true }},
		{"router default name", func(c *Config) {
			c.Router.Enabled = true
			c.Router.Destinations = []DestinationConfig{{Name: "DEFAULT"}}
		}},
		{"duplicate destination", func(c *Config) {
			c.Router.Enabled = true
			c.Router.Destinations = []DestinationConfig{{Name: "a"}, {Name: "a"}}
		}},
		{"bad top_p", func(c *Config) { c.LLM.TopP = 0 }},
		{"cert without key", func(c *Config) { c.LLM.CertFile = "cert.pem" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestAIConfig_Stands(t *testing.T) {
	tests := []struct {
		stand    string
		host     string
		certDir  string
		insecure bool
	}{
		{"ext", "https://gigachat.devices.sberbank.ru/api/v1", "", true},
		{"IFT", "https://gigachat-ift.sberdevices.delta.sbrf.ru/v1", "cert/ift", false},
		{"psi", "https://gigachat-psi.sberdevices.ca.sbrf.ru/v1", "cert/uat", false},
		{"uat", "https://gigachat-psi.sberdevices.ca.sbrf.ru/v1", "cert/uat", false},
		{"prod", "https://gigachat-prom.sberdevices.ca.sbrf.ru/v1", "cert/prod", false},
		{"anything", "https://gigachat-prom.sberdevices.ca.sbrf.ru/v1", "cert/prod", false},
	}

	for _, tt := range tests {
		t.Run(tt.stand, func(t *testing.T) {
			cfg := Default()
			cfg.LLM.Stand = tt.stand
			aiCfg := cfg.AIConfig()

			assert.Equal(t, tt.host, aiCfg.ChatHost)
			assert.Equal(t, tt.host, aiCfg.EmbeddingHost)
			assert.Equal(t, tt.insecure, aiCfg.TLS.InsecureSkipVerify)
			if tt.certDir == "" {
				assert.Empty(t, aiCfg.TLS.CertFile)
				return
			}
			assert.Equal(t, filepath.Join(tt.certDir, "ca.pem"), aiCfg.TLS.CAFile)
			assert.Equal(t, filepath.Join(tt.certDir, "cert.pem"), aiCfg.TLS.CertFile)
			assert.Equal(t, filepath.Join(tt.certDir, "key.pem"), aiCfg.TLS.KeyFile)
		})
	}
}
