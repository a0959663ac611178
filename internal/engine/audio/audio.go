// Package audio downloads a video's audio track and runs speech-to-text on it.
//
// A Source owns the download and the engine preference order. Every
// downloaded file lives in a per-call work directory that Handle.Close
// removes, whatever the outcome.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Info is what a probe learns about a video before downloading it.
type Info struct {
	Duration time.Duration // 0 = unknown (live streams, premieres)
	Title    string
}

// Downloader fetches audio for a single video.
type Downloader interface {
	Available() bool
	Probe(ctx context.Context, videoID string) (Info, error)
	// Download writes the audio into dir and returns the file path.
	Download(ctx context.Context, videoID, dir string) (string, error)
}

// Handle is a downloaded audio file plus the directory that holds it.
type Handle struct {
	Path     string
	Duration time.Duration

	dir  string
	once sync.Once
}

// Dir is the per-download work directory. Engines write scratch files here.
func (h *Handle) Dir() string { return h.dir }

// Close removes the work directory and everything in it.
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		if h.dir != "" {
			err = os.RemoveAll(h.dir)
		}
	})
	return err
}

// Result is the output of one engine run.
type Result struct {
	Text     string
	Language string // detected or hinted base code, "" if unknown
	Segments []engine.Segment
	Engine   string

	Partial           bool
	ChunksTotal       int
	ChunksTranscribed int
}

// Engine is a speech-to-text backend.
type Engine interface {
	Name() string
	Available() bool
	Transcribe(ctx context.Context, h *Handle, languageHint string) (Result, error)
}

// EngineStatus reports one engine in Capabilities.
type EngineStatus struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// Capabilities describes what the audio fallback can do in this process.
type Capabilities struct {
	Method      string         `json:"method"`
	MaxDuration string         `json:"max_duration"`
	Downloader  bool           `json:"downloader_available"`
	Engines     []EngineStatus `json:"engines"`
}

// Source is the audio fallback: probe, download, transcribe.
type Source struct {
	cfg     engine.AudioConfig
	dl      Downloader
	engines []Engine
}

// New returns a Source. Engines are tried in the order given, except that
// the engine named by cfg.Method moves to the front.
func New(cfg engine.AudioConfig, dl Downloader, engines ...Engine) *Source {
	ordered := make([]Engine, 0, len(engines))
	for _, e := range engines {
		if e != nil && e.Name() == cfg.Method {
			ordered = append(ordered, e)
		}
	}
	for _, e := range engines {
		if e != nil && e.Name() != cfg.Method {
			ordered = append(ordered, e)
		}
	}
	return &Source{cfg: cfg, dl: dl, engines: ordered}
}

// Capabilities reports the configured engines and their availability.
func (s *Source) Capabilities() Capabilities {
	c := Capabilities{
		Method:      s.cfg.Method,
		MaxDuration: s.cfg.MaxDuration.String(),
		Downloader:  s.dl != nil && s.dl.Available(),
	}
	for _, e := range s.engines {
		c.Engines = append(c.Engines, EngineStatus{Name: e.Name(), Available: e.Available()})
	}
	return c
}

// DownloadAudio probes the video, enforces maxDuration and downloads the audio.
// The caller must Close the returned handle.
func (s *Source) DownloadAudio(ctx context.Context, videoID string, maxDuration time.Duration) (*Handle, error) {
	info, err := s.probe(ctx, videoID, maxDuration)
	if err != nil {
		return nil, err
	}
	return s.download(ctx, videoID, info)
}

// Transcribe runs engines in preference order until one yields text.
func (s *Source) Transcribe(ctx context.Context, h *Handle, languageHint string) (Result, error) {
	var lastErr error
	tried := 0
	for _, e := range s.engines {
		if !e.Available() {
			slog.Debug("audio: engine unavailable", slog.String("engine", e.Name()))
			continue
		}
		tried++

		tctx, cancel := context.WithTimeout(ctx, s.transcribeTimeout())
		res, err := e.Transcribe(tctx, h, languageHint)
		cancel()
		if err != nil {
			slog.Warn("audio: engine failed", slog.String("engine", e.Name()), slog.Any("err", err))
			lastErr = fmt.Errorf("%s: %w", e.Name(), err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if strings.TrimSpace(res.Text) == "" {
			lastErr = fmt.Errorf("%s: %w", e.Name(), engine.ErrEmptyTranscript)
			continue
		}
		if res.Engine == "" {
			res.Engine = e.Name()
		}
		return res, nil
	}
	if tried == 0 {
		return Result{}, engine.ErrNoEngines
	}
	return Result{}, lastErr
}

// TranscribeVideo is the whole fallback for one video. The downloader must be
// installed for the probe to run; the duration cap is then checked before
// engine availability so an over-long video always reports ErrDurationExceeded.
func (s *Source) TranscribeVideo(ctx context.Context, videoID, languageHint string) (Result, error) {
	info, err := s.probe(ctx, videoID, s.cfg.MaxDuration)
	if err != nil {
		return Result{}, err
	}
	if !s.anyAvailable() {
		return Result{}, engine.ErrNoEngines
	}

	h, err := s.download(ctx, videoID, info)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := h.Close(); err != nil {
			slog.Warn("audio: cleanup failed", slog.String("dir", h.Dir()), slog.Any("err", err))
		}
	}()

	return s.Transcribe(ctx, h, languageHint)
}

func (s *Source) probe(ctx context.Context, videoID string, maxDuration time.Duration) (Info, error) {
	if s.dl == nil || !s.dl.Available() {
		return Info{}, fmt.Errorf("%w: audio downloader not installed", engine.ErrNoEngines)
	}
	pctx, cancel := context.WithTimeout(ctx, s.downloadTimeout())
	defer cancel()

	info, err := s.dl.Probe(pctx, videoID)
	if err != nil {
		return Info{}, fmt.Errorf("%w: probe %s: %w", engine.ErrDownloadFailed, videoID, err)
	}
	// an unknown duration is allowed; the download timeout bounds it
	if maxDuration > 0 && info.Duration > maxDuration {
		return Info{}, fmt.Errorf("%w: %s exceeds limit of %s", engine.ErrDurationExceeded, info.Duration, maxDuration)
	}
	if info.Duration <= 0 {
		slog.Info("audio: duration unknown, downloading anyway", slog.String("id", videoID))
	}
	return info, nil
}

func (s *Source) download(ctx context.Context, videoID string, info Info) (*Handle, error) {
	engine.IncrAudioDownload()
	base := s.cfg.WorkDir
	if base == "" {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "yt-audio-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	dctx, cancel := context.WithTimeout(ctx, s.downloadTimeout())
	defer cancel()

	start := time.Now()
	path, err := s.dl.Download(dctx, videoID, dir)
	if err == nil && path == "" {
		err = errors.New("downloader returned no file")
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %s: %w", engine.ErrDownloadFailed, videoID, err)
	}

	slog.Info("audio: downloaded",
		slog.String("id", videoID),
		slog.Duration("duration", info.Duration),
		slog.Duration("elapsed", time.Since(start)))
	return &Handle{Path: path, Duration: info.Duration, dir: dir}, nil
}

func (s *Source) anyAvailable() bool {
	for _, e := range s.engines {
		if e.Available() {
			return true
		}
	}
	return false
}

func (s *Source) downloadTimeout() time.Duration {
	if s.cfg.DownloadTimeout > 0 {
		return s.cfg.DownloadTimeout
	}
	return 5 * time.Minute
}

func (s *Source) transcribeTimeout() time.Duration {
	if s.cfg.TranscribeTimeout > 0 {
		return s.cfg.TranscribeTimeout
	}
	return 15 * time.Minute
}
