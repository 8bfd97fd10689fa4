package ai

import "context"

// Conversation roles used in the history passed to a Completer.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn of the conversation history.
type Message struct {
	Role string
	Text string
}

// Completer produces a raw text completion from system instructions, the prior
// conversation history and the new input text.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message, input string) (string, error)
}
