package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
)

// maxChunkLength bounds a single recognition request.
const maxChunkLength = 30 * time.Second

// Splitter cuts an audio file into fixed-length chunk files, returned in order.
type Splitter interface {
	Available() bool
	Split(ctx context.Context, audioPath, outDir string, window time.Duration) ([]string, error)
}

// Recognizer transcribes one short chunk.
type Recognizer interface {
	Available() bool
	Recognize(ctx context.Context, chunkPath, language string) (string, error)
}

// Online is the chunked online speech recognition engine. Chunks are
// recognized concurrently under a rate limit and reassembled in order.
// A failed chunk is skipped and marks the result partial.
type Online struct {
	window   time.Duration
	workers  int
	rps      float64
	splitter Splitter
	rec      Recognizer
}

// NewOnline returns the chunked engine.
func NewOnline(cfg engine.AudioConfig, splitter Splitter, rec Recognizer) *Online {
	window := cfg.ChunkLength
	if window <= 0 || window > maxChunkLength {
		window = maxChunkLength
	}
	return &Online{
		window:   window,
		workers:  max(cfg.ChunkWorkers, 1),
		rps:      cfg.ChunkRPS,
		splitter: splitter,
		rec:      rec,
	}
}

func (o *Online) Name() string { return engine.AudioMethodSpeechRecognition }

func (o *Online) Available() bool {
	return o.splitter != nil && o.rec != nil && o.splitter.Available() && o.rec.Available()
}

func (o *Online) Transcribe(ctx context.Context, h *Handle, languageHint string) (Result, error) {
	chunkDir := filepath.Join(h.Dir(), "chunks")
	if err := os.MkdirAll(chunkDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create chunk dir: %w", err)
	}
	chunks, err := o.splitter.Split(ctx, h.Path, chunkDir, o.window)
	if err != nil {
		return Result{}, fmt.Errorf("split audio: %w", err)
	}
	if len(chunks) == 0 {
		return Result{}, fmt.Errorf("%w: no audio chunks", engine.ErrEmptyTranscript)
	}

	language := lang.Base(languageHint)
	if language == engine.LanguageAuto {
		language = ""
	}

	// limiter is scoped to this call
	limit := rate.Inf
	if o.rps > 0 {
		limit = rate.Limit(o.rps)
	}
	limiter := rate.NewLimiter(limit, 1)

	texts := make([]string, len(chunks))
	var (
		mu      sync.Mutex
		failed  int
		lastErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			engine.IncrAudioChunk()
			text, err := o.rec.Recognize(gctx, chunk, language)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				engine.IncrAudioChunkError()
				slog.Warn("audio: chunk failed", slog.Int("chunk", i), slog.Any("err", err))
				mu.Lock()
				failed++
				lastErr = err
				mu.Unlock()
				return nil
			}
			texts[i] = engine.NormalizeText(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := o.assemble(texts, h.Duration)
	res.Language = language
	res.Partial = failed > 0
	if res.ChunksTranscribed == 0 {
		if lastErr != nil {
			return Result{}, fmt.Errorf("all %d chunks failed: %w", len(chunks), lastErr)
		}
		return Result{}, fmt.Errorf("%w: no speech recognized", engine.ErrEmptyTranscript)
	}
	if res.Partial {
		slog.Info("audio: partial transcription",
			slog.Int("chunks", res.ChunksTotal),
			slog.Int("transcribed", res.ChunksTranscribed))
	}
	return res, nil
}

// assemble joins chunk texts in chunk order, one segment per non-empty chunk.
func (o *Online) assemble(texts []string, total time.Duration) Result {
	res := Result{Engine: o.Name(), ChunksTotal: len(texts)}
	step := o.window.Seconds()
	parts := make([]string, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		start := float64(i) * step
		dur := step
		if total > 0 {
			dur = min(step, max(total.Seconds()-start, 0))
		}
		res.Segments = append(res.Segments, engine.Segment{Text: t, Start: start, Duration: dur})
		parts = append(parts, t)
		res.ChunksTranscribed++
	}
	res.Text = strings.Join(parts, " ")
	return res
}
