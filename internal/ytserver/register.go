// Package ytserver exposes transcript resolution and summarization as MCP tools.
package ytserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/audio"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
	"github.com/anatolykoptev/go_transcript/internal/engine/pipeline"
	"github.com/anatolykoptev/go_transcript/internal/engine/summary"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Resolver is the transcript resolution entry point.
type Resolver interface {
	Resolve(ctx context.Context, videoID, preferred string) (*engine.ResolvedTranscript, error)
}

// Processor runs resolve then summarize.
type Processor interface {
	Process(ctx context.Context, videoID, language string, maxInputChars int) (*pipeline.Result, error)
}

// AudioReporter reports audio engine availability.
type AudioReporter interface {
	Capabilities() audio.Capabilities
}

// BackendReporter reports summary backend availability.
type BackendReporter interface {
	Backends(ctx context.Context) []summary.BackendStatus
}

// Deps are the collaborators the tools call into. Audio and Backends may be nil.
type Deps struct {
	Resolver        Resolver
	Processor       Processor
	Audio           AudioReporter
	Backends        BackendReporter
	Cache           *engine.Cache // nil disables caching
	Timeout         time.Duration // per tool call; 0 = no deadline
	DefaultLanguage string
}

// Tools holds the handlers behind the registered MCP tools.
type Tools struct {
	deps Deps
}

// NewTools returns the handlers with defaults filled in.
func NewTools(deps Deps) *Tools {
	if deps.DefaultLanguage == "" {
		deps.DefaultLanguage = engine.LanguageAuto
	}
	return &Tools{deps: deps}
}

// RegisterTools registers youtube_transcript, youtube_summarize and
// transcript_capabilities on the given MCP server.
func RegisterTools(server *mcp.Server, deps Deps) {
	t := NewTools(deps)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_transcript",
		Description: "Get the transcript of a YouTube video. Prefers manual captions in the video's original language, then auto-generated captions, then transcribes the audio. Accepts a URL or video ID. Optionally returns a [MM:SS] timestamped markdown rendering.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptInput) (*mcp.CallToolResult, TranscriptOutput, error) {
		out, err := t.Transcript(ctx, input)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "youtube_summarize",
		Description: "Summarize a YouTube video in English. Resolves the transcript (captions or audio transcription), then asks the configured model backends in priority order. Long transcripts are shortened keeping the beginning and the end.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input SummarizeInput) (*mcp.CallToolResult, SummarizeOutput, error) {
		out, err := t.Summarize(ctx, input)
		return nil, out, err
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_capabilities",
		Description: "Report the audio transcription engines and summary backends available in this server, and the selectable transcript languages.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ CapabilitiesInput) (*mcp.CallToolResult, CapabilitiesOutput, error) {
		return nil, t.Capabilities(ctx), nil
	})
}

// Transcript handles youtube_transcript. Successful resolutions are cached on
// video ID and language; failures never are.
func (t *Tools) Transcript(ctx context.Context, input TranscriptInput) (TranscriptOutput, error) {
	id, err := engine.ExtractVideoID(input.Video)
	if err != nil {
		return TranscriptOutput{}, err
	}
	language := t.language(input.Language)

	cacheKey := engine.CacheKey("youtube_transcript", id, language)
	if tr, ok := engine.CacheLoadJSON[engine.ResolvedTranscript](ctx, t.deps.Cache, cacheKey); ok {
		out := transcriptOutput(&tr, input.Timestamps)
		out.Cached = true
		return out, nil
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	tr, err := t.deps.Resolver.Resolve(ctx, id, language)
	if err != nil {
		return TranscriptOutput{}, err
	}
	engine.CacheStoreJSON(ctx, t.deps.Cache, cacheKey, *tr)
	return transcriptOutput(tr, input.Timestamps), nil
}

// Summarize handles youtube_summarize. A missing summary is reported through
// HasSummary, not as an error.
func (t *Tools) Summarize(ctx context.Context, input SummarizeInput) (SummarizeOutput, error) {
	id, err := engine.ExtractVideoID(input.Video)
	if err != nil {
		return SummarizeOutput{}, err
	}
	if input.MaxInputChars < 0 {
		return SummarizeOutput{}, fmt.Errorf("max_input_chars must not be negative")
	}
	language := t.language(input.Language)

	cacheKey := engine.CacheKey("youtube_summarize", id, language, fmt.Sprint(input.MaxInputChars))
	if out, ok := engine.CacheLoadJSON[SummarizeOutput](ctx, t.deps.Cache, cacheKey); ok {
		return out, nil
	}

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	res, err := t.deps.Processor.Process(ctx, id, language, input.MaxInputChars)
	if err != nil {
		return SummarizeOutput{}, err
	}

	out := SummarizeOutput{
		VideoID:          res.Transcript.VideoID,
		TranscriptSource: res.Transcript.Source,
		Language:         res.Transcript.LanguageCode,
		WordCount:        res.Transcript.WordCount,
		ElapsedMS:        res.Elapsed.Milliseconds(),
	}
	if res.Summary != nil {
		out.Summary = res.Summary.Text
		out.HasSummary = true
		out.Backend = res.Summary.Backend
		out.Model = res.Summary.Model
		engine.CacheStoreJSON(ctx, t.deps.Cache, cacheKey, out)
	} else {
		slog.Info("ytserver: transcript resolved without summary", slog.String("id", id))
	}
	return out, nil
}

// Capabilities handles transcript_capabilities.
func (t *Tools) Capabilities(ctx context.Context) CapabilitiesOutput {
	out := CapabilitiesOutput{Languages: lang.SupportedLanguages}
	if t.deps.Audio != nil {
		out.Audio = t.deps.Audio.Capabilities()
	}
	if t.deps.Backends != nil {
		out.Backends = t.deps.Backends.Backends(ctx)
	}
	return out
}

func (t *Tools) language(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return t.deps.DefaultLanguage
	}
	if !lang.Supported(code) {
		slog.Debug("ytserver: language outside the offered list, trying anyway", slog.String("lang", code))
	}
	return code
}

func (t *Tools) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.deps.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.deps.Timeout)
}
