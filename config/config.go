package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/depositbot/ai"
	"github.com/poiesic/depositbot/bot"
	"github.com/poiesic/depositbot/ingestion"
	"github.com/poiesic/depositbot/rag"
	"github.com/poiesic/depositbot/retry"
	"github.com/poiesic/depositbot/search"
	"github.com/poiesic/depositbot/session"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvTelegramToken = "DEPOSITBOT_TELEGRAM_TOKEN"
	EnvLLMToken      = "DEPOSITBOT_LLM_TOKEN"
	EnvLLMHost       = "DEPOSITBOT_LLM_HOST"
)

// Config is the complete bot configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	LLM       LLMConfig       `yaml:"llm"`
	Index     IndexConfig     `yaml:"index"`
	Storage   StorageConfig   `yaml:"storage"`
	Router    RouterConfig    `yaml:"router"`
	AnswerLog AnswerLogConfig `yaml:"answer_log"`
	Retry     RetryConfig     `yaml:"retry"`
	Persona   string          `yaml:"persona"`
}

// TelegramConfig configures the Bot API transport.
type TelegramConfig struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"poll_timeout"`
	Workers     int    `yaml:"workers"`
}

// LLMConfig configures the model endpoints. When Host is empty the stand
// preset decides the endpoint and certificates.
type LLMConfig struct {
	Stand             string        `yaml:"stand"`
	Host              string        `yaml:"host"`
	EmbeddingHost     string        `yaml:"embedding_host"`
	ChatModel         string        `yaml:"chat_model"`
	EmbeddingModel    string        `yaml:"embedding_model"`
	Token             string        `yaml:"token"`
	Temperature       float64       `yaml:"temperature"`
	TopP              float64       `yaml:"top_p"`
	RepetitionPenalty float64       `yaml:"repetition_penalty"`
	Timeout           time.Duration `yaml:"timeout"`
	CertDir           string        `yaml:"cert_dir"`
	CAFile            string        `yaml:"ca_file"`
	CertFile          string        `yaml:"cert_file"`
	KeyFile           string        `yaml:"key_file"`
	InsecureSkipTLS   bool          `yaml:"insecure_skip_tls"`
}

// IndexConfig configures document ingestion and retrieval.
type IndexConfig struct {
	Docs           string  `yaml:"docs"`
	BuildOnStart   bool    `yaml:"build_on_start"`
	ChunkSize      int     `yaml:"chunk_size"`
	ChunkOverlap   int     `yaml:"chunk_overlap"`
	BatchSize      int     `yaml:"batch_size"`
	// Workers of 0 uses the ingestion default.
	Workers        int     `yaml:"workers"`
	Mode           string  `yaml:"mode"`
	K              int     `yaml:"k"`
	Lambda         float64 `yaml:"lambda"`
	FetchK         int     `yaml:"fetch_k"`
	ScoreThreshold float32 `yaml:"score_threshold"`
}

// StorageConfig locates the badger database. Chats unused for
// SessionIdleTimeout are dropped from memory and reloaded from the database.
type StorageConfig struct {
	Path               string        `yaml:"path"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`
}

// RouterConfig enables routing between several personas.
type RouterConfig struct {
	Enabled      bool                `yaml:"enabled"`
	Destinations []DestinationConfig `yaml:"destinations"`
}

// DestinationConfig is one routed chain: a retrieval pipeline with its own persona.
type DestinationConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Persona     string `yaml:"persona"`
}

// AnswerLogConfig configures the JSON answer log.
type AnswerLogConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// RetryConfig configures answer attempts.
type RetryConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	llm := ai.DefaultConfig()
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 60,
			Workers:     bot.DefaultPoolSize,
		},
		LLM: LLMConfig{
			Stand:             StandExt,
			ChatModel:         llm.ChatModel,
			EmbeddingModel:    llm.EmbeddingModel,
			Temperature:       llm.Temperature,
			TopP:              llm.TopP,
			RepetitionPenalty: llm.RepetitionPenalty,
			Timeout:           llm.Timeout,
			CertDir:           "cert",
		},
		Index: IndexConfig{
			Docs:           "data",
			BuildOnStart:   true,
			ChunkSize:      ingestion.DefaultChunkSize,
			ChunkOverlap:   ingestion.DefaultChunkOverlap,
			BatchSize:      ingestion.DefaultBatchSize,
			Mode:           search.ModeMMR.String(),
			K:              rag.DefaultK,
			Lambda:         search.DefaultLambda,
			FetchK:         search.DefaultFetchK,
			ScoreThreshold: search.DefaultScoreThreshold,
		},
		Storage: StorageConfig{
			Path:               "depositbot-data",
			SessionIdleTimeout: session.DefaultIdleTimeout,
		},
		AnswerLog: AnswerLogConfig{
			Path:       bot.DefaultAnswerLogFile,
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
		Retry:   RetryConfig{MaxAttempts: retry.DefaultMaxAttempts},
		Persona: rag.DefaultPersona,
	}
}

// Load reads a YAML file over the defaults and applies environment overrides.
// An empty path yields the defaults with overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads YAML over the defaults without consulting the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ApplyEnv overrides tokens and host from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvTelegramToken); ok && v != "" {
		c.Telegram.Token = v
	}
	if v, ok := lookup(EnvLLMToken); ok && v != "" {
		c.LLM.Token = v
	}
	if v, ok := lookup(EnvLLMHost); ok && v != "" {
		c.LLM.Host = v
	}
}

// Validate checks settings that do not depend on the command being run.
func (c *Config) Validate() error {
	if _, err := search.ParseMode(c.Index.Mode); err != nil {
		return fmt.Errorf("%w: index.mode: %w", ErrInvalidConfig, err)
	}
	if c.Index.K <= 0 {
		return fmt.Errorf("%w: index.k must be positive", ErrInvalidConfig)
	}
	if c.Index.ChunkSize <= 0 || c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("%w: index.chunk_size/chunk_overlap", ErrInvalidConfig)
	}
	if c.Storage.Path == "" {
		return fmt.Errorf("%w: storage.path is required", ErrInvalidConfig)
	}
	if c.Router.Enabled {
		if len(c.Router.Destinations) == 0 {
			return fmt.Errorf("%w: router enabled without destinations", ErrInvalidConfig)
		}
		seen := make(map[string]bool, len(c.Router.Destinations))
		for _, d := range c.Router.Destinations {
			if d.Name == "" || d.Name == rag.DefaultDestination || seen[d.Name] {
				return fmt.Errorf("%w: router destination %q", ErrInvalidConfig, d.Name)
			}
			seen[d.Name] = true
		}
	}
	if err := c.AIConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// RequireTelegram checks the settings needed to serve the bot.
func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrTelegramTokenRequired
	}
	return nil
}

// AIConfig builds the model client configuration, resolving the stand preset
// when no host is set explicitly.
func (c *Config) AIConfig() *ai.Config {
	preset := LookupStand(c.LLM.Stand)

	host := c.LLM.Host
	tls := ai.TLSConfig{
		CAFile:             c.LLM.CAFile,
		CertFile:           c.LLM.CertFile,
		KeyFile:            c.LLM.KeyFile,
		InsecureSkipVerify: c.LLM.InsecureSkipTLS,
	}
	if host == "" {
		host = preset.Host
		if preset.MutualTLS && tls.CertFile == "" {
			dir := filepath.Join(c.LLM.CertDir, preset.Name)
			tls.CAFile = filepath.Join(dir, "ca.pem")
			tls.CertFile = filepath.Join(dir, "cert.pem")
			tls.KeyFile = filepath.Join(dir, "key.pem")
		}
		tls.InsecureSkipVerify = tls.InsecureSkipVerify || preset.InsecureSkipVerify
	}

	embeddingHost := c.LLM.EmbeddingHost
	if embeddingHost == "" {
		embeddingHost = host
	}

	cfg := ai.NewConfig(
		ai.WithChatHost(host),
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithChatModel(c.LLM.ChatModel),
		ai.WithEmbeddingModel(c.LLM.EmbeddingModel),
		ai.WithToken(c.LLM.Token),
		ai.WithSampling(c.LLM.Temperature, c.LLM.TopP, c.LLM.RepetitionPenalty),
		ai.WithTimeout(c.LLM.Timeout),
		ai.WithTLS(tls),
	)
	cfg.Normalize()
	return cfg
}

// SearchMode returns the parsed retrieval mode.
func (c *Config) SearchMode() search.Mode {
	mode, err := search.ParseMode(c.Index.Mode)
	if err != nil {
		return search.ModeMMR
	}
	return mode
}
