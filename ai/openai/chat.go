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


package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/depositbot/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client  llms.Model
	options []llms.CallOption
	logger  *slog.Logger
}

// newChatModel is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient, err := newHTTPClient(config)
	if err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ChatModel),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	return newChatModelWithClient(client, config), nil
}

// newChatModelWithClient wraps an existing langchaingo model with the sampling
// settings from config.
func newChatModelWithClient(client llms.Model, config *ai.Config) *ChatModel {
	return &ChatModel{
		client: client,
		options: []llms.CallOption{
			llms.WithTemperature(config.Temperature),
			llms.WithTopP(config.TopP),
			llms.WithRepetitionPenalty(config.RepetitionPenalty),
		},
		logger: slog.Default().With("component", "openai-chat"),
	}
}

// NewChatModel creates a new chat model using the provided configuration.
//
// Returns ai.ChatModel interface to enforce abstraction.
func NewChatModel(config *ai.Config) (ai.ChatModel, error) {
	return newChatModel(config)
}

// Complete sends the request and returns the content of the first choice.
func (m *ChatModel) Complete(ctx context.Context, req ai.CompletionRequest) (string, error) {
	m.logger.Debug("requesting completion", "history", len(req.History), "question_length", len(req.User))

	resp, err := m.client.GenerateContent(ctx, req.Messages(), m.options...)
	if err != nil {
		m.logger.Error("completion failed", "err", err)
		return "", err
	}

	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return "", fmt.Errorf("%w: no choices", ai.ErrMalformedResponse)
	}

	return resp.Choices[0].Content, nil
}
