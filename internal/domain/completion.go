package domain

import (
	"context"
	"time"
)

// Role is the author of a chat message.
type Role string

const (
	// RoleSystem carries instructions.
	RoleSystem Role = "system"
	// RoleUser carries the request content.
	RoleUser Role = "user"
)

// Message is a single chat message sent to the completion service.
type Message struct {
	Role    Role
	Content string
}

// CompletionParams tunes a single completion request.
// Zero MaxTokens leaves the provider default; zero Timeout means no extra bound.
type CompletionParams struct {
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// CompletionResult carries generated text and token usage.
type CompletionResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completer generates text from a conversation.
// Failures wrap ErrCompletionTimeout or ErrCompletionService.
type Completer interface {
	Generate(ctx context.Context, messages []Message, params CompletionParams) (CompletionResult, error)
}
