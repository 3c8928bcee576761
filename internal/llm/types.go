package llm

// Message roles used in chat conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationConfig holds caller-supplied generation settings passed through
// to the model backend on every completion request.
type GenerationConfig struct {
	// ModelName selects the model on the backend. Required for single and
	// chat completions. A name containing "RAG" requests retrieval-augmented
	// generation.
	ModelName string

	// StopToken pauses generation at a safe inspection point. Single and
	// chat completions require it to equal the paragraph-start marker.
	StopToken string

	// MaxTokens limits the response length. 0 means backend default.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float32

	// TopP is the nucleus sampling cutoff. 0 means backend default.
	TopP float32

	// TopK limits sampling to the K most likely tokens. 0 means backend default.
	TopK int
}
