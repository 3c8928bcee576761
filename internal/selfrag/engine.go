// Package selfrag drives the retrieval-augmented completion protocol: it
// formats prompts for the instruct model, watches raw output for the
// retrieval signal, splices in retrieved context, and resumes generation
// until the model stops asking for more.
package selfrag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_model_backend.go -package=mocks scholar-ai/internal/selfrag ModelBackend
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_retriever.go -package=mocks scholar-ai/internal/selfrag Retriever
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks -mock_names=Engine=MockEngine scholar-ai/internal/selfrag Engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"scholar-ai/internal/llm"
	"scholar-ai/internal/prompt"
)

// ModelBackend is the completion capability the engine drives. This
// interface is defined from the engine's perspective (consumer-first);
// llm.InstructClient is the concrete implementation.
type ModelBackend interface {
	// GetInstructCompletion returns one completion for one prompt.
	GetInstructCompletion(ctx context.Context, promptText string, config llm.GenerationConfig) (string, error)
	// GetBatchInstructCompletion returns one completion per prompt, in order.
	GetBatchInstructCompletion(ctx context.Context, prompts []string, config llm.GenerationConfig) ([]string, error)
}

// Retriever fetches one context string per query, same length and order.
type Retriever interface {
	GetContexts(ctx context.Context, queries []string) ([]string, error)
}

// Engine provides completions over a self-RAG model backend.
type Engine interface {
	// GetCompletion returns a single free-form completion, running the
	// iterative retrieval loop when the model name requests RAG.
	GetCompletion(ctx context.Context, promptText string, config llm.GenerationConfig) (string, error)
	// GetChatCompletion flattens a conversation into one prompt and returns
	// the assistant reply, with at most one retrieval round in RAG mode.
	GetChatCompletion(ctx context.Context, conversation []llm.Message, config llm.GenerationConfig) (string, error)
	// GetBatchCompletion passes prompts straight through to the backend's
	// batch API; no retrieval, no token stripping.
	GetBatchCompletion(ctx context.Context, prompts []string, config llm.GenerationConfig) ([]string, error)
}

// ragModelMarker in a model name requests retrieval-augmented generation.
const ragModelMarker = "RAG"

// chatSystemPrompt frames multi-turn conversations for the instruct model.
const chatSystemPrompt = "Below is a series of instructions from a USER that describes a task, paired with an input that provides further context. The ASSISTANT writes a response that concisely and appropriately completes the request"

// DefaultMaxRetrievals bounds the retrieval loop when the caller does not
// configure a limit. The protocol itself never guarantees termination; a
// backend that keeps emitting the retrieval token would otherwise loop
// forever.
const DefaultMaxRetrievals = 8

type engine struct {
	model         ModelBackend
	retriever     Retriever
	maxRetrievals int
	logger        *slog.Logger
}

// NewEngine creates a completion engine. The model backend is required;
// retriever may be nil, in which case RAG-mode requests fail with a config
// error. maxRetrievals caps retrieval rounds per completion; values <= 0
// select DefaultMaxRetrievals.
func NewEngine(model ModelBackend, retriever Retriever, maxRetrievals int) Engine {
	if maxRetrievals <= 0 {
		maxRetrievals = DefaultMaxRetrievals
	}
	return &engine{
		model:         model,
		retriever:     retriever,
		maxRetrievals: maxRetrievals,
		logger:        slog.Default(),
	}
}

// GetCompletion returns a single free-form completion.
func (e *engine) GetCompletion(ctx context.Context, promptText string, config llm.GenerationConfig) (string, error) {
	if err := checkStopToken(config.StopToken); err != nil {
		return "", err
	}
	if config.ModelName == "" {
		return "", &ConfigError{Field: "model_name", Message: "no model name provided"}
	}

	e.logger.DebugContext(ctx, "requesting completion",
		"model", config.ModelName,
		"prompt_length", len(promptText),
	)

	if !isRAGModel(config.ModelName) {
		result, err := e.model.GetInstructCompletion(ctx, promptText, config)
		if err != nil {
			return "", fmt.Errorf("failed to get completion: %w", err)
		}
		return strings.TrimSpace(result), nil
	}

	if e.retriever == nil {
		return "", &ConfigError{Field: "retriever", Message: "RAG model requested but no retriever configured"}
	}

	completion := ""
	for round := 0; ; round++ {
		promptWithContext := prompt.FormatPrompt(promptText) + completion
		latest, err := e.model.GetInstructCompletion(ctx, promptWithContext, config)
		if err != nil {
			return "", fmt.Errorf("failed to get completion: %w", err)
		}
		completion += strings.TrimSpace(latest)

		if !strings.HasSuffix(completion, string(prompt.RetrievalToken)) {
			break
		}
		if round >= e.maxRetrievals {
			return "", fmt.Errorf("%w: %d rounds with model %s", ErrRetrievalLimit, e.maxRetrievals, config.ModelName)
		}

		// The cleaned text generated so far becomes the next query; when the
		// model asked for context before generating anything, fall back to
		// the original prompt.
		contextQuery := promptText
		if completion != string(prompt.RetrievalToken) {
			contextQuery = prompt.RemoveCruft(completion)
		}

		contextText, err := e.fetchContext(ctx, contextQuery)
		if err != nil {
			return "", err
		}

		e.logger.DebugContext(ctx, "retrieval round complete",
			"round", round+1,
			"query_length", len(contextQuery),
			"context_length", len(contextText),
		)

		completion += string(prompt.InitParagraphToken) + contextText + string(prompt.EndParagraphToken)
	}

	return strings.TrimSpace(prompt.RemoveCruft(completion)), nil
}

// GetChatCompletion flattens a conversation and returns the assistant reply.
func (e *engine) GetChatCompletion(ctx context.Context, conversation []llm.Message, config llm.GenerationConfig) (string, error) {
	if err := checkStopToken(config.StopToken); err != nil {
		return "", err
	}
	if config.ModelName == "" {
		return "", &ConfigError{Field: "model_name", Message: "no model name provided"}
	}

	var b strings.Builder
	var lastUserMessage string
	addedSystemPrompt := false
	for _, message := range conversation {
		switch message.Role {
		case llm.RoleSystem:
			b.WriteString("### System:\n" + chatSystemPrompt +
				". Further, the assistant is given the following additional instructions - " +
				message.Content + "\n\n")
			addedSystemPrompt = true
		case llm.RoleUser:
			lastUserMessage = message.Content
			b.WriteString(prompt.InstructionPrefix + message.Content + "\n\n")
		case llm.RoleAssistant:
			b.WriteString(prompt.ResponsePrefix + message.Content + "\n\n")
		}
	}

	flattened := b.String()
	if !addedSystemPrompt {
		flattened = "### System:\n" + chatSystemPrompt + ".\n\n" + flattened
	}

	if isRAGModel(config.ModelName) {
		if e.retriever == nil {
			return "", &ConfigError{Field: "retriever", Message: "RAG model requested but no retriever configured"}
		}

		contextQuery, err := e.deriveChatQuery(ctx, conversation, flattened, lastUserMessage, config)
		if err != nil {
			return "", err
		}

		contextText, err := e.fetchContext(ctx, contextQuery)
		if err != nil {
			return "", err
		}

		flattened += prompt.ResponsePrefix +
			string(prompt.RetrievalToken) + " " +
			string(prompt.InitParagraphToken) + contextText + string(prompt.EndParagraphToken)
	} else {
		flattened += prompt.ResponsePrefix
	}

	latest, err := e.model.GetInstructCompletion(ctx, flattened, config)
	if err != nil {
		return "", fmt.Errorf("failed to get chat completion: %w", err)
	}

	return strings.TrimSpace(prompt.RemoveCruft(latest)), nil
}

// GetBatchCompletion passes prompts straight through to the batch API.
func (e *engine) GetBatchCompletion(ctx context.Context, prompts []string, config llm.GenerationConfig) ([]string, error) {
	e.logger.DebugContext(ctx, "requesting batch completion",
		"model", config.ModelName,
		"prompts", len(prompts),
	)
	return e.model.GetBatchInstructCompletion(ctx, prompts, config)
}

// deriveChatQuery picks the retrieval query for a chat completion. A
// single-message conversation uses the user message verbatim; longer
// conversations ask the model itself for the ideal query, with a fresh
// config whose stop token is cleared so the answer is not truncated at the
// paragraph marker.
func (e *engine) deriveChatQuery(ctx context.Context, conversation []llm.Message, flattened, lastUserMessage string, config llm.GenerationConfig) (string, error) {
	if len(conversation) <= 1 {
		return lastUserMessage, nil
	}

	queryConfig := llm.GenerationConfig{
		ModelName:   config.ModelName,
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
		TopP:        config.TopP,
		TopK:        config.TopK,
	}

	queryPrompt := prompt.InstructionPrefix +
		"Based on the following conversation, what is the ideal query to retrieve related context? ### Conversation:\n" +
		flattened + "\n\nNow, return the query.\n\n" +
		prompt.ResponsePrefix

	raw, err := e.model.GetInstructCompletion(ctx, queryPrompt, queryConfig)
	if err != nil {
		return "", fmt.Errorf("failed to derive retrieval query: %w", err)
	}

	return strings.TrimSpace(prompt.RemoveCruft(raw)), nil
}

// fetchContext retrieves context for one query.
func (e *engine) fetchContext(ctx context.Context, query string) (string, error) {
	contexts, err := e.retriever.GetContexts(ctx, []string{query})
	if err != nil {
		return "", fmt.Errorf("failed to fetch retrieval context: %w", err)
	}
	if len(contexts) == 0 {
		return "", fmt.Errorf("retriever returned no context for query")
	}
	return contexts[0], nil
}

// checkStopToken gates the non-batch entry points: generation must pause at
// the paragraph-start marker so accumulated output can be inspected for the
// retrieval signal before the model continues.
func checkStopToken(stopToken string) error {
	if stopToken != string(prompt.InitParagraphToken) {
		return &ConfigError{
			Field:   "stop_token",
			Message: fmt.Sprintf("must equal %q", prompt.InitParagraphToken),
		}
	}
	return nil
}

// isRAGModel reports whether the model name requests retrieval augmentation.
func isRAGModel(modelName string) bool {
	return strings.Contains(modelName, ragModelMarker)
}
