package ytserver

import (
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/audio"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
	"github.com/anatolykoptev/go_transcript/internal/engine/summary"
)

// --- youtube_transcript ---

// TranscriptInput is the input for youtube_transcript.
type TranscriptInput struct {
	Video      string `json:"video" jsonschema:"YouTube URL or 11-character video ID (watch, youtu.be, shorts, embed links are accepted)"`
	Language   string `json:"language,omitempty" jsonschema:"Preferred transcript language code (e.g. en, ru, pt-BR) or auto for the original language (default: auto)"`
	Timestamps bool   `json:"timestamps,omitempty" jsonschema:"Also return a markdown document with [MM:SS] timestamps per segment"`
}

// TranscriptOutput is the structured output for youtube_transcript.
type TranscriptOutput struct {
	VideoID         string                  `json:"video_id"`
	Language        string                  `json:"language"`
	Source          engine.TranscriptSource `json:"source"`
	IsAutoGenerated bool                    `json:"is_auto_generated"`
	Method          string                  `json:"method,omitempty"`
	WordCount       int                     `json:"word_count"`
	Partial         bool                    `json:"partial,omitempty"`
	Text            string                  `json:"text"`
	Timestamped     string                  `json:"timestamped,omitempty"`
	Cached          bool                    `json:"cached,omitempty"`
}

// --- youtube_summarize ---

// SummarizeInput is the input for youtube_summarize.
type SummarizeInput struct {
	Video         string `json:"video" jsonschema:"YouTube URL or 11-character video ID"`
	Language      string `json:"language,omitempty" jsonschema:"Preferred transcript language code or auto (default: auto)"`
	MaxInputChars int    `json:"max_input_chars,omitempty" jsonschema:"Transcript characters sent to the model; longer transcripts keep the first 80% and last 20% (default: 25000)"`
}

// SummarizeOutput is the structured output for youtube_summarize.
type SummarizeOutput struct {
	VideoID          string                  `json:"video_id"`
	TranscriptSource engine.TranscriptSource `json:"transcript_source"`
	Language         string                  `json:"language"`
	WordCount        int                     `json:"word_count"`
	Summary          string                  `json:"summary"`
	HasSummary       bool                    `json:"has_summary"`
	Backend          summary.Kind            `json:"backend,omitempty"`
	Model            string                  `json:"model,omitempty"`
	ElapsedMS        int64                   `json:"elapsed_ms"`
}

// --- transcript_capabilities ---

// CapabilitiesInput is the empty input for transcript_capabilities.
type CapabilitiesInput struct{}

// CapabilitiesOutput reports what this process can do.
type CapabilitiesOutput struct {
	Audio     audio.Capabilities      `json:"audio"`
	Backends  []summary.BackendStatus `json:"backends"`
	Languages []lang.Language         `json:"languages"`
}

func transcriptOutput(tr *engine.ResolvedTranscript, timestamps bool) TranscriptOutput {
	out := TranscriptOutput{
		VideoID:         tr.VideoID,
		Language:        tr.LanguageCode,
		Source:          tr.Source,
		IsAutoGenerated: tr.IsAutoGenerated,
		Method:          tr.Method,
		WordCount:       tr.WordCount,
		Partial:         tr.Partial,
		Text:            tr.Text,
	}
	if timestamps {
		out.Timestamped = engine.RenderTimestamped(tr.RawSegments, tr.Text)
	}
	return out
}
