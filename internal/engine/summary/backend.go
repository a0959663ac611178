// Package summary routes transcript summarization across several LLM
// backends, falling through to the next one on any failure.
package summary

import "context"

// Kind identifies a backend class.
type Kind string

const (
	KindLocal          Kind = "local_model_server"
	KindCloudPrimary   Kind = "cloud_api_primary"
	KindCloudSecondary Kind = "cloud_api_secondary"
)

// ParseKind maps config names onto kinds. Short aliases are accepted.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case string(KindLocal), "local", "ollama":
		return KindLocal, true
	case string(KindCloudPrimary), "cloud", "primary", "mistral":
		return KindCloudPrimary, true
	case string(KindCloudSecondary), "secondary", "llm", "openai":
		return KindCloudSecondary, true
	}
	return "", false
}

// CompletionRequest is one prompt sent to one model.
type CompletionRequest struct {
	Prompt      string
	Model       string // "" = backend default
	Temperature float64
	MaxTokens   int
}

// Backend is a summarization endpoint.
type Backend interface {
	Kind() Kind
	Available(ctx context.Context) bool
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Descriptor is a configured backend with its model aliases.
// Priority is assigned by the router; lower runs first.
type Descriptor struct {
	Kind        Kind
	Priority    int
	Models      []string
	Temperature float64
	MaxTokens   int
	Backend     Backend
}
