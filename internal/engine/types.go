package engine

import "strings"

// Segment is one timed caption unit.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TrackDescriptor describes one caption track as listed upstream.
type TrackDescriptor struct {
	VideoID      string `json:"video_id"`
	LanguageCode string `json:"language_code"`
	Name         string `json:"name,omitempty"`
	IsManual     bool   `json:"is_manual"`
	BaseURL      string `json:"-"` // empty = derive from VideoID + LanguageCode
}

// TranscriptCandidate is a fetched caption track before it is accepted.
type TranscriptCandidate struct {
	LanguageCode string
	IsManual     bool
	Segments     []Segment
}

// Text returns the whitespace-normalized concatenation of all non-empty segments.
func (c TranscriptCandidate) Text() string {
	return JoinSegments(c.Segments)
}

// TranscriptSource tells where a resolved transcript came from.
type TranscriptSource string

const (
	SourceManualCaption      TranscriptSource = "manual_caption"
	SourceAutoCaption        TranscriptSource = "auto_caption"
	SourceAudioTranscription TranscriptSource = "audio_transcription"
)

// ResolvedTranscript is the canonical output of transcript resolution.
type ResolvedTranscript struct {
	VideoID         string           `json:"video_id"`
	Text            string           `json:"text"`
	LanguageCode    string           `json:"language_code"`
	IsAutoGenerated bool             `json:"is_auto_generated"`
	Source          TranscriptSource `json:"source"`
	RawSegments     []Segment        `json:"raw_segments,omitempty"`

	Method            string `json:"method,omitempty"`
	Partial           bool   `json:"partial,omitempty"`
	ChunksTotal       int    `json:"chunks_total,omitempty"`
	ChunksTranscribed int    `json:"chunks_transcribed,omitempty"`
	WordCount         int    `json:"word_count"`
}

// NonEmptySegments drops segments whose text is empty or whitespace only.
func NonEmptySegments(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if strings.TrimSpace(s.Text) == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// JoinSegments joins segment texts with single spaces, collapsing inner whitespace.
func JoinSegments(segs []Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		for _, w := range strings.Fields(s.Text) {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(w)
		}
	}
	return sb.String()
}

// NormalizeText collapses all whitespace runs in s to single spaces.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
