package domain

import "context"

// CompletionRequest is a single prompt-in, text-out call.
type CompletionRequest struct {
	Prompt          string
	Temperature     float32
	MaxOutputTokens int32
	// JSON asks the provider for a JSON-only reply when it supports that.
	JSON bool
}

// Completer is the text-completion capability. Implementations return a
// *CapabilityError on any provider failure.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// SummaryPublisher receives summaries of completed interviews.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, event SummaryEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishSummary(context.Context, SummaryEvent) error { return nil }
