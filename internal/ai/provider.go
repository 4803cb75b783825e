// Package ai provides the writing assistant: text improvement, tag and
// category suggestion and comment moderation, backed by one of several
// large-language-model providers.
package ai

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the selected provider has no API key.
var ErrNotConfigured = errors.New("ai: provider not configured")

// CompleteOptions tune a single completion call. Zero values fall back to
// provider defaults.
type CompleteOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

func (o CompleteOptions) temperature() float64 {
	if o.Temperature == 0 {
		return defaultTemperature
	}
	return o.Temperature
}

func (o CompleteOptions) maxTokens() int {
	if o.MaxTokens == 0 {
		return defaultMaxTokens
	}
	return o.MaxTokens
}

// Provider is a text-completion backend.
type Provider interface {
	// Complete sends prompt to the model and returns the generated text.
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)

	// Name identifies the provider in logs.
	Name() string
}
