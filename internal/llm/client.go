package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// InstructClient is a client for an OpenAI-compatible text completions API
// (llama.cpp server, vLLM) serving an instruction-tuned model.
type InstructClient struct {
	BaseURL string
	APIKey  string
	client  *http.Client
}

// NewInstructClient creates a new instruct completion client.
func NewInstructClient(baseURL, apiKey string) *InstructClient {
	return &InstructClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		client:  http.DefaultClient,
	}
}

// CompletionRequest represents the request payload for text completions.
// Prompt carries one entry per requested completion; the server returns
// one choice per prompt.
type CompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      []string `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature float32  `json:"temperature,omitempty"`
	TopP        float32  `json:"top_p,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// CompletionChoice represents a single completion in the response.
type CompletionChoice struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// CompletionResponse represents the response from the text completions API.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Choices []CompletionChoice `json:"choices"`
}

// GetInstructCompletion sends a single completion request and returns the
// generated text.
func (c *InstructClient) GetInstructCompletion(ctx context.Context, prompt string, config GenerationConfig) (string, error) {
	texts, err := c.complete(ctx, []string{prompt}, config)
	if err != nil {
		return "", err
	}
	return texts[0], nil
}

// GetBatchInstructCompletion sends one request carrying all prompts and
// returns the generated texts in prompt order.
func (c *InstructClient) GetBatchInstructCompletion(ctx context.Context, prompts []string, config GenerationConfig) ([]string, error) {
	if len(prompts) == 0 {
		return nil, fmt.Errorf("empty prompt list")
	}
	return c.complete(ctx, prompts, config)
}

// complete posts the prompts to /v1/completions and maps the returned
// choices back to prompt order via their index field.
func (c *InstructClient) complete(ctx context.Context, prompts []string, config GenerationConfig) ([]string, error) {
	url := fmt.Sprintf("%s/v1/completions", c.BaseURL)

	payload := CompletionRequest{
		Model:       config.ModelName,
		Prompt:      prompts,
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
		TopP:        config.TopP,
		TopK:        config.TopK,
	}
	if config.StopToken != "" {
		payload.Stop = []string{config.StopToken}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var completionResp CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completionResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completionResp.Choices) != len(prompts) {
		return nil, fmt.Errorf("expected %d choices, got %d", len(prompts), len(completionResp.Choices))
	}

	texts := make([]string, len(prompts))
	for _, choice := range completionResp.Choices {
		if choice.Index < 0 || choice.Index >= len(prompts) {
			return nil, fmt.Errorf("choice index %d out of range", choice.Index)
		}
		texts[choice.Index] = choice.Text
	}

	return texts, nil
}
