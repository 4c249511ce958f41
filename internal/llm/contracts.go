package llm

import "context"

// Chat roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one entry of a chat/completions message array.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is what the pipeline hands to a Completer. Model and temperature belong to the
// client configuration.
type ChatRequest struct {
	Messages []ChatMessage
	// JSONObject asks the endpoint to constrain the reply to a JSON object.
	JSONObject bool
}

// ChatResponse is the single assistant message of a completion.
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Completer is the interface the extraction pipeline depends on.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
