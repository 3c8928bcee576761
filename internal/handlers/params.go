package handlers

import (
	"scholar-ai/internal/llm"
	"scholar-ai/internal/prompt"
)

// GenerationParams are the generation settings shared by the completion
// endpoints. Omitted fields fall back to server defaults.
type GenerationParams struct {
	ModelName   string  `json:"model_name,omitempty"`
	StopToken   string  `json:"stop_token,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
	TopP        float32 `json:"top_p,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

// toConfig builds a generation config, defaulting the model name and the
// stop token when the request leaves them empty.
func (p GenerationParams) toConfig(defaultModel string) llm.GenerationConfig {
	cfg := llm.GenerationConfig{
		ModelName:   p.ModelName,
		StopToken:   p.StopToken,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		TopP:        p.TopP,
		TopK:        p.TopK,
	}
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModel
	}
	if cfg.StopToken == "" {
		cfg.StopToken = string(prompt.InitParagraphToken)
	}
	return cfg
}
