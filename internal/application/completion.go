package application

import "context"

// Completer sends a single prompt to a language model and returns the text of
// the first choice.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}
