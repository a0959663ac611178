package audio

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
)

//go:embed assets/faster_whisper.py
var fasterWhisperScript []byte

const whisperProbeTimeout = 30 * time.Second

// Whisper runs faster-whisper locally through a small Python helper.
type Whisper struct {
	python string
	model  string
	run    runFunc
	look   func(string) bool

	probeOnce sync.Once
	usable    bool
}

// NewWhisper returns the local whisper engine.
func NewWhisper(python, model string) *Whisper {
	if python == "" {
		python = "python3"
	}
	if model == "" {
		model = "base"
	}
	return &Whisper{python: python, model: model, run: runCommand, look: lookPath}
}

func (w *Whisper) Name() string { return engine.AudioMethodWhisper }

// Available reports whether the interpreter exists and can import
// faster_whisper. The import is checked once per process.
func (w *Whisper) Available() bool {
	if !w.look(w.python) {
		return false
	}
	w.probeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), whisperProbeTimeout)
		defer cancel()
		if _, err := w.run(ctx, w.python, "-c", "import faster_whisper"); err != nil {
			slog.Warn("audio: faster-whisper not importable", slog.String("python", w.python), slog.Any("err", err))
			return
		}
		w.usable = true
	})
	return w.usable
}

type whisperOut struct {
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (w *Whisper) Transcribe(ctx context.Context, h *Handle, languageHint string) (Result, error) {
	script := filepath.Join(h.Dir(), "faster_whisper.py")
	if err := os.WriteFile(script, fasterWhisperScript, 0o644); err != nil {
		return Result{}, fmt.Errorf("write helper script: %w", err)
	}

	args := []string{script, "--audio", h.Path, "--model", w.model}
	if code := lang.Base(languageHint); code != "" && code != engine.LanguageAuto {
		args = append(args, "--language", code)
	}
	out, err := w.run(ctx, w.python, args...)
	if err != nil {
		return Result{}, fmt.Errorf("faster-whisper: %w", err)
	}
	return parseWhisperOutput(out)
}

func parseWhisperOutput(out []byte) (Result, error) {
	var parsed whisperOut
	if err := json.Unmarshal(out, &parsed); err != nil {
		return Result{}, fmt.Errorf("parse helper output: %w", err)
	}
	segs := make([]engine.Segment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		segs = append(segs, engine.Segment{
			Text:     strings.TrimSpace(s.Text),
			Start:    s.Start,
			Duration: max(s.End-s.Start, 0),
		})
	}
	segs = engine.NonEmptySegments(segs)
	return Result{
		Text:     engine.JoinSegments(segs),
		Language: lang.Base(parsed.Language),
		Segments: segs,
		Engine:   engine.AudioMethodWhisper,
	}, nil
}
