// Package pipeline runs the per-video job: resolve a transcript, then summarize it.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/summary"
)

// Resolver produces a transcript or a *engine.ResolutionFailure.
type Resolver interface {
	Resolve(ctx context.Context, videoID, preferred string) (*engine.ResolvedTranscript, error)
}

// Summarizer returns a summary or false when none is available.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxInputChars int) (summary.Summary, bool)
}

// Result is the outcome of one Process call.
type Result struct {
	Transcript *engine.ResolvedTranscript `json:"transcript"`
	Summary    *summary.Summary           `json:"summary,omitempty"`
	Elapsed    time.Duration              `json:"elapsed"`
}

// slowProcess is the run time above which a job is logged as slow.
const slowProcess = 3 * time.Minute

// Processor runs resolve and summarize strictly in sequence for one video.
type Processor struct {
	resolver      Resolver
	summarizer    Summarizer
	maxInputChars int
}

// NewProcessor returns a Processor. summarizer may be nil to skip summaries.
func NewProcessor(r Resolver, s Summarizer, maxInputChars int) *Processor {
	return &Processor{resolver: r, summarizer: s, maxInputChars: maxInputChars}
}

// Process resolves the transcript for videoID and summarizes it.
// A missing summary is not an error. maxInputChars <= 0 uses the
// processor default.
func (p *Processor) Process(ctx context.Context, videoID, language string, maxInputChars int) (res *Result, err error) {
	_ = engine.TrackOperation(ctx, "process:"+videoID, slowProcess, func(ctx context.Context) error {
		res, err = p.process(ctx, videoID, language, maxInputChars)
		return err
	})
	return
}

func (p *Processor) process(ctx context.Context, videoID, language string, maxInputChars int) (*Result, error) {
	start := time.Now()
	tr, err := p.resolver.Resolve(ctx, videoID, language)
	if err != nil {
		return nil, err
	}

	res := &Result{Transcript: tr}
	if p.summarizer != nil {
		if maxInputChars <= 0 {
			maxInputChars = p.maxInputChars
		}
		if s, ok := p.summarizer.Summarize(ctx, tr.Text, maxInputChars); ok {
			res.Summary = &s
		} else {
			slog.Warn("pipeline: no summary available", slog.String("id", videoID))
		}
	}
	res.Elapsed = time.Since(start)
	return res, nil
}
