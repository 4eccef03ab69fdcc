package engine

import (
	"context"
	"strings"
)

// PlaceholderPrefix is prepended to the prompt by the placeholder engine.
const PlaceholderPrefix = "This is a placeholder response. In production, this would use llama.cpp with Phi-3 model to generate responses based on: "

// Placeholder is a stub engine that echoes the prompt behind a fixed prefix.
// It is stateless and never fails.
type Placeholder struct{}

// NewPlaceholder returns the placeholder engine.
func NewPlaceholder() *Placeholder {
	return &Placeholder{}
}

// Complete implements Engine.
func (p *Placeholder) Complete(_ context.Context, prompt string) (Result, error) {
	text := PlaceholderPrefix + prompt
	return Result{Text: text, Tokens: EstimateTokens(text)}, nil
}

// Name implements Engine.
func (p *Placeholder) Name() string {
	return "placeholder"
}

// EstimateTokens approximates a token count as 1.3 tokens per word.
func EstimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * 1.3)
}
