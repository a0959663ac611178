package summary

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

const cloudMaxTokens = 1024

// CloudConfig configures an OpenAI-compatible chat completion API.
type CloudConfig struct {
	Kind         Kind
	APIBase      string
	APIKey       string
	FallbackKeys []string
	Models       []string
	HTTPClient   *http.Client
}

// Cloud is an OpenAI-compatible API backend. It keeps one client per model
// alias, all built up front.
type Cloud struct {
	kind    Kind
	hasKey  bool
	clients map[string]*llm.Client
	first   *llm.Client
}

// NewCloud builds clients for every configured model.
func NewCloud(cfg CloudConfig) *Cloud {
	c := &Cloud{
		kind:    cfg.Kind,
		hasKey:  cfg.APIKey != "" && cfg.APIBase != "",
		clients: make(map[string]*llm.Client, len(cfg.Models)),
	}
	if c.kind == "" {
		c.kind = KindCloudPrimary
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 120 * time.Second}
	}
	for _, model := range cfg.Models {
		if _, ok := c.clients[model]; ok {
			continue
		}
		client := llm.NewClient(cfg.APIBase, cfg.APIKey, model,
			llm.WithFallbackKeys(cfg.FallbackKeys),
			llm.WithHTTPClient(hc),
		)
		c.clients[model] = client
		if c.first == nil {
			c.first = client
		}
	}
	return c
}

func (c *Cloud) Kind() Kind { return c.kind }

func (c *Cloud) Available(context.Context) bool { return c.hasKey && c.first != nil }

func (c *Cloud) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	client, ok := c.clients[req.Model]
	if !ok {
		client = c.first
	}
	if client == nil {
		return "", errors.New("cloud: no models configured")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = cloudMaxTokens
	}
	return client.Complete(ctx, "", req.Prompt,
		llm.WithChatTemperature(req.Temperature),
		llm.WithChatMaxTokens(maxTokens),
	)
}
