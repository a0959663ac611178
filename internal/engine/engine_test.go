package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{id, id, false},
		{"  " + id + "\n", id, false},
		{"https://www.youtube.com/watch?v=" + id, id, false},
		{"https://www.youtube.com/watch?v=" + id + "&t=42s", id, false},
		{"https://m.youtube.com/watch?feature=share&v=" + id, id, false},
		{"https://youtu.be/" + id, id, false},
		{"https://youtu.be/" + id + "?t=10", id, false},
		{"youtu.be/" + id, id, false},
		{"https://www.youtube.com/shorts/" + id, id, false},
		{"https://www.youtube.com/embed/" + id + "?autoplay=1", id, false},
		{"https://www.youtube-nocookie.com/embed/" + id, id, false},
		{"https://www.youtube.com/v/" + id, id, false},
		{"https://www.youtube.com/live/" + id, id, false},
		{"https://www.youtube.com/watch?v=" + id + "&list=PL1234567890", id, false},
		{"", "", true},
		{"not a video", "", true},
		{"https://example.com/about", "", true},
		{"dQw4w9WgXc", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ExtractVideoID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVideoID) {
					t.Errorf("ExtractVideoID(%q) error = %v, want ErrInvalidVideoID", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestRenderTimestamped(t *testing.T) {
	segs := []Segment{
		{Text: "intro", Start: 0},
		{Text: "   ", Start: 3},
		{Text: "second\n line", Start: 75.9},
		{Text: "late", Start: 3725},
	}
	got := RenderTimestamped(segs, "")
	want := "# Timestamps and Text\n\n" +
		"[00:00] intro\n" +
		"[01:15] second line\n" +
		"[62:05] late\n\n" +
		"# Full Text\n\n" +
		"intro second line late"
	if got != want {
		t.Errorf("RenderTimestamped() =\n%s\nwant\n%s", got, want)
	}

	only := RenderTimestamped(nil, "plain text")
	if only != "# Full Text\n\nplain text" {
		t.Errorf("without segments = %q", only)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureKind
	}{
		{"disabled", ErrCaptionsDisabled, FailureSoft},
		{"wrapped not found", fmt.Errorf("listing: %w", ErrNoCaptionsFound), FailureSoft},
		{"duration", fmt.Errorf("%w: 2h0m0s exceeds limit of 1h0m0s", ErrDurationExceeded), FailureSoft},
		{"invalid id", ErrInvalidVideoID, FailureSoft},
		{"transient", Transient(errors.New("429")), FailureTransient},
		{"download", fmt.Errorf("%w: yt-dlp exit 1", ErrDownloadFailed), FailureTransient},
		{"deadline", context.DeadlineExceeded, FailureTransient},
		{"unexpected", errors.New("nil pointer somewhere"), FailureHard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTransientKeepsChain(t *testing.T) {
	base := errors.New("connection reset")
	err := Transient(base)
	if !errors.Is(err, ErrTransient) || !errors.Is(err, base) {
		t.Errorf("Transient() lost the chain: %v", err)
	}
	if Transient(err) != err {
		t.Error("Transient() wrapped twice")
	}
	if Transient(nil) != nil {
		t.Error("Transient(nil) != nil")
	}
}

func TestResolutionFailure(t *testing.T) {
	f := NewResolutionFailure("dQw4w9WgXcQ", fmt.Errorf("%w: 2h exceeds limit", ErrDurationExceeded))
	if f.Kind != FailureSoft || f.Retryable() {
		t.Errorf("kind = %v retryable = %v", f.Kind, f.Retryable())
	}
	if !errors.Is(f, ErrDurationExceeded) {
		t.Error("failure does not unwrap to its cause")
	}
	if !strings.Contains(f.Error(), "too long") || !strings.Contains(f.Error(), "soft") {
		t.Errorf("Error() = %q", f.Error())
	}

	empty := NewResolutionFailure("dQw4w9WgXcQ", nil)
	if !errors.Is(empty, ErrEmptyTranscript) {
		t.Errorf("nil cause = %v, want ErrEmptyTranscript", empty.Err)
	}

	tr := NewResolutionFailure("dQw4w9WgXcQ", Transient(errors.New("503")))
	if !tr.Retryable() {
		t.Error("transient failure not retryable")
	}
}

func TestCleanCaption(t *testing.T) {
	tests := map[string]string{
		"it&amp;#39;s fine":              "it's fine",
		"<font color=\"#fff\">hi</font>": "hi",
		"a\n\n  b":                       "a b",
		"Tom &amp; Jerry":                "Tom & Jerry",
	}
	for in, want := range tests {
		if got := CleanCaption(in); got != want {
			t.Errorf("CleanCaption(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSegmentsHelpers(t *testing.T) {
	segs := []Segment{{Text: " hello "}, {Text: ""}, {Text: "\t"}, {Text: "big   world"}}
	if got := NonEmptySegments(segs); len(got) != 2 {
		t.Errorf("NonEmptySegments() kept %d segments, want 2", len(got))
	}
	if got := JoinSegments(segs); got != "hello big world" {
		t.Errorf("JoinSegments() = %q", got)
	}
	if got := WordCount("hello big world"); got != 3 {
		t.Errorf("WordCount() = %d", got)
	}
	if got := (TranscriptCandidate{Segments: []Segment{{Text: " "}}}).Text(); got != "" {
		t.Errorf("empty candidate text = %q", got)
	}
}

func TestDefaultSummaryConfigTokenLimits(t *testing.T) {
	c := DefaultSummaryConfig()
	if c.OllamaMaxTokens != 512 || c.MaxTokens != 1024 {
		t.Errorf("token limits = ollama %d, cloud %d; want 512, 1024", c.OllamaMaxTokens, c.MaxTokens)
	}
}
