package extract

import "context"

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged chat message.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is what the model extractor sends to a text-completion
// service.
type CompletionRequest struct {
	Messages []Message
	// JSONOutput asks the provider to constrain the reply to valid JSON.
	JSONOutput bool
	// Temperature is left to the provider when nil.
	Temperature *float32
}

// Completer is the boundary to an external completion service. It returns the
// reply text of a single completion.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
