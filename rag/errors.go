package rag

import (
	"errors"
	"fmt"
)

var (
	// ErrPipelineFailure is the single error kind an answer chain reports.
	// Retrieval, prompt rendering and model failures all wrap it.
	ErrPipelineFailure = errors.New("answer pipeline failure")

	// ErrRetrieval indicates the vector index could not be queried.
	ErrRetrieval = fmt.Errorf("%w: retrieval", ErrPipelineFailure)

	// ErrPromptRendering indicates a prompt template could not be rendered.
	ErrPromptRendering = fmt.Errorf("%w: prompt rendering", ErrPipelineFailure)

	// ErrModel indicates the language model call failed.
	ErrModel = fmt.Errorf("%w: model call", ErrPipelineFailure)

	// ErrRouting indicates the router could not produce a decision.
	ErrRouting = fmt.Errorf("%w: routing", ErrPipelineFailure)

	// ErrRetrieverRequired is returned when a retriever is not provided.
	ErrRetrieverRequired = errors.New("retriever required")

	// ErrChatModelRequired is returned when a chat model is not provided.
	ErrChatModelRequired = errors.New("chat model required")

	// ErrDefaultChainRequired is returned when a router has no default chain.
	ErrDefaultChainRequired = errors.New("default chain required")

	// ErrMemoryRequired is returned when a chain is invoked without memory.
	ErrMemoryRequired = errors.New("conversation memory required")
)
