package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/depositbot/ai"
	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/memory"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// DefaultK is the number of chunks retrieved per question.
const DefaultK = 3

// documentSeparator joins retrieved chunk texts in the context block.
const documentSeparator = "\n\n"

// Chain answers a question against a conversation memory.
// Implementations must not be invoked concurrently for the same memory.
type Chain interface {
	Answer(ctx context.Context, question string, mem *memory.Conversation) (*core.Answer, error)
}

// NewRetriever wraps a vector store as a retriever returning k documents.
// Non-positive k uses DefaultK.
func NewRetriever(store vectorstores.VectorStore, k int, opts ...vectorstores.Option) schema.Retriever {
	if k <= 0 {
		k = DefaultK
	}
	return vectorstores.ToRetriever(store, k, opts...)
}

// Pipeline is the retrieval-augmented answer chain: retrieve, render, call the
// model, record the exchange.
type Pipeline struct {
	retriever schema.Retriever
	chat      ai.ChatModel
	prompt    prompts.ChatPromptTemplate
	persona   string
	logger    *slog.Logger

	mu         sync.Mutex
	lastPrompt string
}

var _ Chain = (*Pipeline)(nil)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPersona replaces the instruction block of the system prompt.
func WithPersona(persona string) Option {
	return func(p *Pipeline) {
		p.persona = persona
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates an answer chain over a retriever and a chat model.
func NewPipeline(retriever schema.Retriever, chat ai.ChatModel, opts ...Option) (*Pipeline, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if chat == nil {
		return nil, ErrChatModelRequired
	}

	p := &Pipeline{
		retriever: retriever,
		chat:      chat,
		persona:   DefaultPersona,
		logger:    slog.Default().With("component", "rag"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.prompt = prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
		prompts.NewSystemMessagePromptTemplate(systemTemplate, []string{"persona", "context", "history"}),
		prompts.NewHumanMessagePromptTemplate(humanTemplate, []string{"question"}),
	})
	p.prompt.PartialVariables = map[string]any{"persona": p.persona}
	return p, nil
}

// Answer runs one invocation of the chain. Every failure wraps
// ErrPipelineFailure. An empty model reply is returned as an empty answer and
// is not recorded in memory.
func (p *Pipeline) Answer(ctx context.Context, question string, mem *memory.Conversation) (*core.Answer, error) {
	if mem == nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailure, ErrMemoryRequired)
	}
	if err := core.ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailure, err)
	}

	docs, err := p.retriever.GetRelevantDocuments(ctx, question)
	if err != nil {
		p.logger.Error("error retrieving documents", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRetrieval, err)
	}

	req, err := p.render(question, docs, mem)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPromptRendering, err)
	}

	prompt := req.Render()
	p.mu.Lock()
	p.lastPrompt = prompt
	p.mu.Unlock()

	text, err := p.chat.Complete(ctx, req)
	if err != nil {
		p.logger.Error("error calling chat model", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrModel, err)
	}

	answer := &core.Answer{Text: text, Prompt: prompt}
	if strings.TrimSpace(text) == "" {
		p.logger.Warn("model returned an empty answer")
		answer.Text = ""
		return answer, nil
	}

	if err := mem.AppendExchange(question, text); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailure, err)
	}
	p.logger.Debug("question answered", "chunks", len(docs), "turns", mem.Len())
	return answer, nil
}

// LastPrompt returns the exact prompt text sent on the most recent invocation.
func (p *Pipeline) LastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPrompt
}

// LastRoute is always empty: a plain pipeline does no routing.
func (p *Pipeline) LastRoute() string {
	return ""
}

func (p *Pipeline) render(question string, docs []schema.Document, mem *memory.Conversation) (ai.CompletionRequest, error) {
	history, err := mem.Buffer()
	if err != nil {
		return ai.CompletionRequest{}, err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	msgs, err := p.prompt.FormatMessages(map[string]any{
		"context":  strings.Join(texts, documentSeparator),
		"history":  history,
		"question": question,
	})
	if err != nil {
		return ai.CompletionRequest{}, err
	}
	if len(msgs) != 2 {
		return ai.CompletionRequest{}, fmt.Errorf("expected 2 rendered messages, got %d", len(msgs))
	}

	return ai.CompletionRequest{
		System: msgs[0].GetContent(),
		User:   msgs[1].GetContent(),
	}, nil
}
