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


// Package ai provides abstractions for the language model services used by
// the deposit assistant.
//
// # Interfaces
//
//   - Embedder: Generates vector embeddings from text
//   - ChatModel: Completes a system prompt, history and user prompt
//   - AIProvider: Aggregates both services for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: Production implementation over OpenAI-compatible APIs (GigaChat)
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, openai.NewChatModel)
// return INTERFACE types. Test utility constructors (mock.NewMockEmbedder,
// mock.NewMockChatModel) return CONCRETE types so tests can inject behavior and
// assert on call counts.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//	chat := mock.NewMockChatModel()              // returns *mock.MockChatModel
//	count := chat.CallCount()
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithToken(token))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	answer, err := provider.ChatModel().Complete(ctx, ai.CompletionRequest{
//	    System: "Ты помощник по вкладам.",
//	    User:   "Какая ставка по вкладу?",
//	})
package ai
