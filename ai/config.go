// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "https://gigachat.devices.sberbank.ru/api/v1"
	EmbeddingHost string

	// ChatHost is the base URL for the chat completion service API.
	ChatHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	EmbeddingModel string

	// ChatModel is the model identifier used to answer questions.
	// Example: "GigaChat-Pro"
	ChatModel string

	// Token is the bearer token sent to both services.
	// "none" is used for local services that don't require authentication.
	Token string

	// Temperature is the sampling temperature. Near zero makes answers effectively deterministic.
	Temperature float64

	// TopP is the nucleus sampling probability mass.
	TopP float64

	// RepetitionPenalty discourages the model from repeating itself.
	RepetitionPenalty float64

	// Timeout bounds every HTTP call to either service.
	Timeout time.Duration

	// TLS configures client certificates for stands that require mutual TLS.
	TLS TLSConfig
}

// TLSConfig holds file paths for mutual TLS.
// All fields are optional; an empty CertFile disables client certificates.
type TLSConfig struct {
	CAFile             string
	CertFile           string
	KeyFile            string
	InsecureSkipVerify bool
}

// Enabled reports whether any TLS customization is configured.
func (t TLSConfig) Enabled() bool {
	return t.CAFile != "" || t.CertFile != "" || t.InsecureSkipVerify
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithToken sets the API token.
func WithToken(token string) ConfigOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithSampling sets temperature, top-p and repetition penalty together.
func WithSampling(temperature, topP, repetitionPenalty float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
		c.TopP = topP
		c.RepetitionPenalty = repetitionPenalty
	}
}

// WithTimeout sets the per-call network timeout.
func WithTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = timeout
	}
}

// WithTLS sets the mutual TLS configuration.
func WithTLS(tls TLSConfig) ConfigOption {
	return func(c *Config) {
		c.TLS = tls
	}
}

// DefaultConfig returns a Config pointing at the public GigaChat API with
// near-deterministic sampling.
func DefaultConfig() *Config {
	defaultHost := "https://gigachat.devices.sberbank.ru/api/v1"
	return &Config{
		EmbeddingHost:     defaultHost,
		ChatHost:          defaultHost,
		EmbeddingModel:    "Embeddings",
		ChatModel:         "GigaChat-Pro",
		Token:             "none",
		Temperature:       1e-8,
		TopP:              0.1,
		RepetitionPenalty: 0.9,
		Timeout:           50 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithChatModel("qwen2.5:3b"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs.
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ChatHost = normalizeHost(c.ChatHost)
	if c.Token == "" {
		c.Token = "none"
	}
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return errors.New("ai config: TopP must be in (0, 1]")
	}
	if c.RepetitionPenalty <= 0 {
		return errors.New("ai config: RepetitionPenalty must be positive")
	}
	if c.Timeout <= 0 {
		return errors.New("ai config: Timeout must be positive")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return errors.New("ai config: TLS CertFile and KeyFile must be set together")
	}
	return nil
}
