// Package llm defines the completion contract shared by the extraction
// and risk-advisory callers, decoupled from any concrete provider.
package llm

import "context"

// Completion is the provider's answer to a single prompt pair, with token
// accounting for audit and metrics.
type Completion struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Completer is any backend able to answer a system+user prompt with a
// single structured-text completion.
type Completer interface {
	Complete(ctx context.Context, system, user string) (*Completion, error)
}
