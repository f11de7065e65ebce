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


// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// This package implements the ai.AIProvider interface using the langchaingo
// library to communicate with GigaChat or any other OpenAI-compatible service
// (Ollama, LocalAI, vLLM).
//
// # Usage
//
//	config := ai.NewConfig(
//	    ai.WithToken(os.Getenv("DEPOSITBOT_LLM_TOKEN")),
//	    ai.WithTLS(ai.TLSConfig{CAFile: "cert/ift/ca.pem", CertFile: "cert/ift/cert.pem", KeyFile: "cert/ift/cert.key"}),
//	)
//
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text")
//	text, err := provider.ChatModel().Complete(ctx, ai.CompletionRequest{System: "...", User: "..."})
//
// Every call shares one http.Client whose Timeout is the configured per-call
// timeout.
package openai
