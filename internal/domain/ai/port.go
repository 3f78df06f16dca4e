package ai

import "context"

// Client interface for the analysis provider. input is the incident context
// document assembled by the prompt layer.
type Client interface {
	Analyze(ctx context.Context, input string) (string, error)
}
