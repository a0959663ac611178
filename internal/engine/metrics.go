package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
// Counters are observability only; nothing reads them to make decisions.
var metrics struct {
	ResolveRequests    atomic.Int64
	ResolveCaption     atomic.Int64
	ResolveAudio       atomic.Int64
	FailuresSoft       atomic.Int64
	FailuresTransient  atomic.Int64
	FailuresHard       atomic.Int64
	CaptionListCalls   atomic.Int64
	CaptionFetchCalls  atomic.Int64
	CaptionFetchErrors atomic.Int64
	AudioDownloads     atomic.Int64
	AudioChunks        atomic.Int64
	AudioChunkErrors   atomic.Int64
	SummaryCalls       atomic.Int64
	SummaryErrors      atomic.Int64
	SummaryExhausted   atomic.Int64
	CacheHits          atomic.Int64
	CacheMisses        atomic.Int64
}

var metricKeys = []string{
	"resolve_requests", "resolve_caption", "resolve_audio",
	"failures_soft", "failures_transient", "failures_hard",
	"caption_list_calls", "caption_fetch_calls", "caption_fetch_errors",
	"audio_downloads", "audio_chunks", "audio_chunk_errors",
	"summary_calls", "summary_errors", "summary_exhausted",
	"cache_hits", "cache_misses",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"resolve_requests":     metrics.ResolveRequests.Load(),
		"resolve_caption":      metrics.ResolveCaption.Load(),
		"resolve_audio":        metrics.ResolveAudio.Load(),
		"failures_soft":        metrics.FailuresSoft.Load(),
		"failures_transient":   metrics.FailuresTransient.Load(),
		"failures_hard":        metrics.FailuresHard.Load(),
		"caption_list_calls":   metrics.CaptionListCalls.Load(),
		"caption_fetch_calls":  metrics.CaptionFetchCalls.Load(),
		"caption_fetch_errors": metrics.CaptionFetchErrors.Load(),
		"audio_downloads":      metrics.AudioDownloads.Load(),
		"audio_chunks":         metrics.AudioChunks.Load(),
		"audio_chunk_errors":   metrics.AudioChunkErrors.Load(),
		"summary_calls":        metrics.SummaryCalls.Load(),
		"summary_errors":       metrics.SummaryErrors.Load(),
		"summary_exhausted":    metrics.SummaryExhausted.Load(),
		"cache_hits":           metrics.CacheHits.Load(),
		"cache_misses":         metrics.CacheMisses.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return metrics.CacheHits.Load(), metrics.CacheMisses.Load()
}

func incrCacheHit()  { metrics.CacheHits.Add(1) }
func incrCacheMiss() { metrics.CacheMisses.Add(1) }

// Incrementors for the resolver.
func IncrResolveRequests() { metrics.ResolveRequests.Add(1) }
func IncrResolved(src TranscriptSource) {
	if src == SourceAudioTranscription {
		metrics.ResolveAudio.Add(1)
		return
	}
	metrics.ResolveCaption.Add(1)
}
func IncrFailure(kind FailureKind) {
	switch kind {
	case FailureSoft:
		metrics.FailuresSoft.Add(1)
	case FailureTransient:
		metrics.FailuresTransient.Add(1)
	default:
		metrics.FailuresHard.Add(1)
	}
}

// Incrementors for sources/ sub-package.
func IncrCaptionList()       { metrics.CaptionListCalls.Add(1) }
func IncrCaptionFetch()      { metrics.CaptionFetchCalls.Add(1) }
func IncrCaptionFetchError() { metrics.CaptionFetchErrors.Add(1) }

// Incrementors for audio/ sub-package.
func IncrAudioDownload()   { metrics.AudioDownloads.Add(1) }
func IncrAudioChunk()      { metrics.AudioChunks.Add(1) }
func IncrAudioChunkError() { metrics.AudioChunkErrors.Add(1) }

// Incrementors for summary/ sub-package.
func IncrSummaryCall()      { metrics.SummaryCalls.Add(1) }
func IncrSummaryError()     { metrics.SummaryErrors.Add(1) }
func IncrSummaryExhausted() { metrics.SummaryExhausted.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
