// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.ChatModel,
// and ai.AIProvider for use in unit tests. The mocks allow tests to run without
// a reachable LLM endpoint and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	chat := mock.NewMockChatModel()
//	chat.CompleteFunc = func(ctx context.Context, req ai.CompletionRequest) (string, error) {
//	    return "", errors.New("gateway timeout")
//	}
//
//	// Check call counts
//	count := chat.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockChatModel: Echoes the user prompt
//   - MockProvider: Aggregates mock embedder and chat model
package mock
