package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/poiesic/depositbot/ai"
	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/memory"
	"github.com/tmc/langchaingo/outputparser"
	"github.com/tmc/langchaingo/prompts"
)

// DefaultDestination is the decision that selects the default chain.
const DefaultDestination = "DEFAULT"

// Destination is a named chain the router can hand a question to.
type Destination struct {
	Name        string
	Description string
	Chain       Chain
}

// Decision is the classifier's structured reply.
type Decision struct {
	Destination string
	NextInputs  string
}

// Router classifies each question with a chat model and forwards it to one of
// several destination chains. Unknown destinations fall back to the default chain.
type Router struct {
	classifier   ai.ChatModel
	destinations map[string]Destination
	defaultChain Chain
	prompt       prompts.PromptTemplate
	parser       outputparser.Structured
	logger       *slog.Logger

	mu         sync.Mutex
	lastRoute  string
	lastPrompt string
}

var _ Chain = (*Router)(nil)

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithRouterLogger sets a custom logger.
// Default is slog.Default().
func WithRouterLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRouter creates a router. Destinations are listed to the classifier in the
// order given.
func NewRouter(classifier ai.ChatModel, defaultChain Chain, destinations []Destination, opts ...RouterOption) (*Router, error) {
	if classifier == nil {
		return nil, ErrChatModelRequired
	}
	if defaultChain == nil {
		return nil, ErrDefaultChainRequired
	}

	r := &Router{
		classifier:   classifier,
		destinations: make(map[string]Destination, len(destinations)),
		defaultChain: defaultChain,
		parser: outputparser.NewStructured([]outputparser.ResponseSchema{
			{Name: "destination", Description: `имя используемого запроса или "DEFAULT"`},
			{Name: "next_inputs", Description: "исходный ввод"},
		}),
		logger: slog.Default().With("component", "router"),
	}
	for _, opt := range opts {
		opt(r)
	}

	listing := make([]string, 0, len(destinations))
	for _, d := range destinations {
		if d.Name == "" || d.Chain == nil {
			return nil, fmt.Errorf("invalid destination %q", d.Name)
		}
		r.destinations[d.Name] = d
		listing = append(listing, d.Name+": "+d.Description)
	}

	r.prompt = prompts.NewPromptTemplate(routerTemplate, []string{"history", "question"})
	r.prompt.PartialVariables = map[string]any{"destinations": strings.Join(listing, "\n\n")}
	return r, nil
}

// Route asks the classifier where the question should go.
func (r *Router) Route(ctx context.Context, question string, mem *memory.Conversation) (Decision, error) {
	history, err := mem.Buffer()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrPromptRendering, err)
	}

	text, err := r.prompt.Format(map[string]any{"history": history, "question": question})
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrPromptRendering, err)
	}

	reply, err := r.classifier.Complete(ctx, ai.CompletionRequest{User: text})
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %w", ErrModel, err)
	}

	decision, err := r.parseDecision(reply)
	if err != nil {
		r.logger.Warn("unparseable routing decision", "reply", reply, "err", err)
		return Decision{}, fmt.Errorf("%w: %w", ErrRouting, err)
	}
	return decision, nil
}

// Answer routes the question and delegates to the chosen chain. The answer's
// Route is the destination name, or DEFAULT for the default chain.
func (r *Router) Answer(ctx context.Context, question string, mem *memory.Conversation) (*core.Answer, error) {
	if mem == nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailure, ErrMemoryRequired)
	}
	if err := core.ValidateQuestion(question); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineFailure, err)
	}

	decision, err := r.Route(ctx, question, mem)
	if err != nil {
		return nil, err
	}

	route := DefaultDestination
	chain := r.defaultChain
	if d, ok := r.destinations[decision.Destination]; ok {
		route = d.Name
		chain = d.Chain
	} else if decision.Destination != DefaultDestination {
		r.logger.Debug("unknown destination, using default", "destination", decision.Destination)
	}

	next := decision.NextInputs
	if strings.TrimSpace(next) == "" {
		next = question
	}

	answer, err := chain.Answer(ctx, next, mem)
	if err != nil {
		return nil, err
	}
	answer.Route = route

	r.mu.Lock()
	r.lastRoute = route
	r.lastPrompt = answer.Prompt
	r.mu.Unlock()
	return answer, nil
}

// LastRoute returns the route chosen on the most recent invocation.
func (r *Router) LastRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRoute
}

// LastPrompt returns the prompt the chosen chain sent on the most recent invocation.
func (r *Router) LastPrompt() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastPrompt
}

// parseDecision reads the fenced json block. Replies that do not satisfy the
// structured parser go through a repair pass before giving up.
func (r *Router) parseDecision(reply string) (Decision, error) {
	if parsed, err := r.parser.Parse(reply); err == nil {
		if fields, ok := parsed.(map[string]string); ok {
			return Decision{Destination: strings.TrimSpace(fields["destination"]), NextInputs: fields["next_inputs"]}, nil
		}
	}

	body, ok := extractJSONObject(reply)
	if !ok {
		return Decision{}, fmt.Errorf("no json object in reply")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(repairJSON(body)), &fields); err != nil {
		return Decision{}, err
	}

	destination, ok := fields["destination"].(string)
	if !ok {
		return Decision{}, fmt.Errorf("missing destination")
	}

	decision := Decision{Destination: strings.TrimSpace(destination)}
	switch next := fields["next_inputs"].(type) {
	case string:
		decision.NextInputs = next
	case map[string]any:
		decision.NextInputs, _ = next["question"].(string)
	}
	return decision, nil
}
