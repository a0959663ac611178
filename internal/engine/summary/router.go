package summary

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
)

// DefaultMaxInputChars is the transcript budget when the caller passes none.
const DefaultMaxInputChars = 25000

const defaultMaxAliases = 3

// RouterConfig is read once at construction.
type RouterConfig struct {
	Priority   []string      // explicit kind order; overrides Hosted
	Hosted     bool          // constrained hosting prefers cloud backends
	Timeout    time.Duration // per completion call
	MaxAliases int           // model aliases tried per backend
}

// Summary is a successful summarization.
type Summary struct {
	Text           string `json:"text"`
	Backend        Kind   `json:"backend"`
	Model          string `json:"model,omitempty"`
	SourceLanguage string `json:"source_language,omitempty"`
}

// BackendStatus describes one routed backend for capability reports.
type BackendStatus struct {
	Kind      Kind     `json:"kind"`
	Priority  int      `json:"priority"`
	Models    []string `json:"models,omitempty"`
	Available bool     `json:"available"`
}

// Router tries backends in priority order until one returns text.
type Router struct {
	cfg      RouterConfig
	matcher  *lang.Matcher
	backends []Descriptor
}

var (
	hostedOrder = []Kind{KindCloudPrimary, KindCloudSecondary, KindLocal}
	devOrder    = []Kind{KindLocal, KindCloudPrimary, KindCloudSecondary}
)

// NewRouter orders descriptors by deployment context or explicit priority.
// Descriptors whose kind is absent from an explicit priority list are dropped.
func NewRouter(cfg RouterConfig, matcher *lang.Matcher, descriptors ...Descriptor) *Router {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.MaxAliases <= 0 {
		cfg.MaxAliases = defaultMaxAliases
	}
	if matcher == nil {
		matcher = lang.NewMatcher()
	}

	rank := kindRank(cfg)
	ordered := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.Backend == nil {
			continue
		}
		if d.Kind == "" {
			d.Kind = d.Backend.Kind()
		}
		p, ok := rank[d.Kind]
		if !ok {
			slog.Info("summary: backend not in priority list, skipping", slog.String("kind", string(d.Kind)))
			continue
		}
		d.Priority = p
		ordered = append(ordered, d)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	return &Router{cfg: cfg, matcher: matcher, backends: ordered}
}

func kindRank(cfg RouterConfig) map[Kind]int {
	order := devOrder
	if cfg.Hosted {
		order = hostedOrder
	}
	if len(cfg.Priority) > 0 {
		order = nil
		for _, name := range cfg.Priority {
			k, ok := ParseKind(strings.ToLower(strings.TrimSpace(name)))
			if !ok {
				slog.Warn("summary: unknown backend in priority list", slog.String("backend", name))
				continue
			}
			order = append(order, k)
		}
	}
	rank := make(map[Kind]int, len(order))
	for i, k := range order {
		if _, dup := rank[k]; !dup {
			rank[k] = i
		}
	}
	return rank
}

// Backends reports the routed backends in order, probing availability.
func (r *Router) Backends(ctx context.Context) []BackendStatus {
	out := make([]BackendStatus, 0, len(r.backends))
	for _, d := range r.backends {
		out = append(out, BackendStatus{
			Kind:      d.Kind,
			Priority:  d.Priority,
			Models:    d.Models,
			Available: d.Backend.Available(ctx),
		})
	}
	return out
}

// Summarize returns a summary of text, or false when every backend failed.
// It never returns an error: a missing summary is not a pipeline failure.
func (r *Router) Summarize(ctx context.Context, text string, maxInputChars int) (Summary, bool) {
	engine.IncrSummaryCall()
	text = strings.TrimSpace(text)
	if text == "" {
		return Summary{}, false
	}
	if maxInputChars <= 0 {
		maxInputChars = DefaultMaxInputChars
	}

	det := r.matcher.Detect(text, 0)
	prompt := BuildPrompt(Truncate(text, maxInputChars), det)

	for _, d := range r.backends {
		if ctx.Err() != nil {
			break
		}
		if !d.Backend.Available(ctx) {
			slog.Info("summary: backend unavailable", slog.String("kind", string(d.Kind)))
			continue
		}
		if s, ok := r.tryBackend(ctx, d, prompt); ok {
			s.SourceLanguage = det.Code
			slog.Info("summary: generated",
				slog.String("kind", string(s.Backend)),
				slog.String("model", s.Model),
				slog.String("lang", det.Code),
				slog.Int("chars", len(s.Text)),
				slog.String("preview", engine.Preview(s.Text)))
			return s, true
		}
	}

	engine.IncrSummaryExhausted()
	slog.Warn("summary: all backends failed", slog.Int("backends", len(r.backends)))
	return Summary{}, false
}

func (r *Router) tryBackend(ctx context.Context, d Descriptor, prompt string) (Summary, bool) {
	models := d.Models
	if len(models) == 0 {
		models = []string{""}
	}
	if len(models) > r.cfg.MaxAliases {
		models = models[:r.cfg.MaxAliases]
	}

	for _, model := range models {
		cctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
		out, err := d.Backend.Complete(cctx, CompletionRequest{
			Prompt:      prompt,
			Model:       model,
			Temperature: d.Temperature,
			MaxTokens:   d.MaxTokens,
		})
		cancel()

		out = strings.TrimSpace(out)
		if err == nil && out != "" {
			return Summary{Text: out, Backend: d.Kind, Model: model}, true
		}
		engine.IncrSummaryError()
		slog.Warn("summary: completion failed",
			slog.String("kind", string(d.Kind)),
			slog.String("model", model),
			slog.Bool("empty", err == nil),
			slog.Any("err", err))
		if ctx.Err() != nil {
			break
		}
	}
	return Summary{}, false
}
