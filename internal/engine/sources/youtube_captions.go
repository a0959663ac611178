// Package sources lists and fetches YouTube caption tracks.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Config configures the YouTube caption source.
// URL fields default to the public YouTube endpoints; tests point them at fakes.
type Config struct {
	HTTPClient   *http.Client
	Browser      *engine.BrowserClient // optional; used for the watch page when set
	Timeout      time.Duration         // per listing or fetch call
	Retry        engine.RetryConfig
	WatchURL     string
	PlayerURL    string
	TimedTextURL string
}

// YouTube is a stateless caption source backed by the public YouTube endpoints.
type YouTube struct {
	cfg Config
}

// NewYouTube returns a caption source with defaults filled in.
func NewYouTube(cfg Config) *YouTube {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.MaxRetries == 0 && cfg.Retry.InitialWait == 0 {
		cfg.Retry = engine.DefaultRetryConfig
	}
	if cfg.WatchURL == "" {
		cfg.WatchURL = ytWatchURL
	}
	if cfg.PlayerURL == "" {
		cfg.PlayerURL = ytInnertubeURL
	}
	if cfg.TimedTextURL == "" {
		cfg.TimedTextURL = ytTimedTextURL
	}
	return &YouTube{cfg: cfg}
}

// ListTracks returns the caption tracks of a video in upstream listing order.
// Primary:  scrape watch page ytInitialPlayerResponse (works from any IP)
// Fallback: ANDROID Innertube /player
//
// Errors: engine.ErrCaptionsDisabled, engine.ErrNoCaptionsFound, or an
// engine.ErrTransient chain for network, rate-limit and bot-check conditions.
func (y *YouTube) ListTracks(ctx context.Context, videoID string) ([]engine.TrackDescriptor, error) {
	engine.IncrCaptionList()
	ctx, cancel := context.WithTimeout(ctx, y.cfg.Timeout)
	defer cancel()

	web, webErr := y.watchPagePlayer(ctx, videoID)
	if webErr == nil && web.hasTracks() {
		return tracksFromPlayer(videoID, web)
	}
	slog.Warn("youtube: watch page has no caption tracks, trying android player",
		slog.String("id", videoID), slog.Any("err", webErr))

	android, androidErr := y.androidPlayer(ctx, videoID)
	switch {
	case androidErr == nil && android.hasTracks():
		return tracksFromPlayer(videoID, android)
	case webErr == nil:
		return tracksFromPlayer(videoID, web)
	case androidErr == nil:
		return tracksFromPlayer(videoID, android)
	}
	return nil, errors.Join(webErr, androidErr)
}

// tracksFromPlayer maps a player response onto descriptors or a typed error.
func tracksFromPlayer(videoID string, p *playerResp) ([]engine.TrackDescriptor, error) {
	if p.Captions == nil {
		status, reason := p.status()
		switch status {
		case "LOGIN_REQUIRED":
			return nil, engine.Transient(fmt.Errorf("youtube: login required: %s", reason))
		case "ERROR", "UNPLAYABLE":
			return nil, fmt.Errorf("%w: video unplayable: %s", engine.ErrNoCaptionsFound, reason)
		}
		return nil, engine.ErrCaptionsDisabled
	}

	raw := p.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(raw) == 0 {
		return nil, engine.ErrNoCaptionsFound
	}

	tracks := make([]engine.TrackDescriptor, 0, len(raw))
	for _, t := range raw {
		if t.LanguageCode == "" || needsPoToken(t.BaseURL) {
			continue
		}
		tracks = append(tracks, engine.TrackDescriptor{
			VideoID:      videoID,
			LanguageCode: t.LanguageCode,
			Name:         t.Name.String(),
			IsManual:     t.Kind != "asr",
			BaseURL:      t.BaseURL,
		})
	}
	if len(tracks) == 0 {
		return nil, engine.Transient(errors.New("youtube: all caption tracks require PoToken"))
	}
	return tracks, nil
}

// Fetch downloads one caption track and normalizes it into segments.
func (y *YouTube) Fetch(ctx context.Context, track engine.TrackDescriptor) (engine.TranscriptCandidate, error) {
	engine.IncrCaptionFetch()
	cand := engine.TranscriptCandidate{LanguageCode: track.LanguageCode, IsManual: track.IsManual}

	u := track.BaseURL
	if u == "" {
		u = y.timedTextURL(track)
	}
	if needsPoToken(u) {
		engine.IncrCaptionFetchError()
		return cand, engine.Transient(errors.New("youtube: caption track requires PoToken"))
	}

	ctx, cancel := context.WithTimeout(ctx, y.cfg.Timeout)
	defer cancel()

	resp, err := engine.RetryHTTP(ctx, y.cfg.Retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return y.cfg.HTTPClient.Do(req)
	})
	if err != nil {
		engine.IncrCaptionFetchError()
		return cand, engine.Transient(fmt.Errorf("fetch timedtext: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		engine.IncrCaptionFetchError()
		return cand, fmt.Errorf("%w: track %s", engine.ErrNoCaptionsFound, track.LanguageCode)
	case resp.StatusCode != http.StatusOK:
		engine.IncrCaptionFetchError()
		return cand, engine.Transient(fmt.Errorf("fetch timedtext: %w", &engine.StatusError{StatusCode: resp.StatusCode}))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		engine.IncrCaptionFetchError()
		return cand, engine.Transient(fmt.Errorf("read timedtext: %w", err))
	}

	cand.Segments = Normalize(DecodePayload(body))
	slog.Debug("youtube: caption track fetched",
		slog.String("id", track.VideoID),
		slog.String("lang", track.LanguageCode),
		slog.Bool("manual", track.IsManual),
		slog.Int("segments", len(cand.Segments)))
	return cand, nil
}

// timedTextURL builds a timedtext URL for a track known only by language.
func (y *YouTube) timedTextURL(track engine.TrackDescriptor) string {
	q := url.Values{}
	q.Set("v", track.VideoID)
	q.Set("lang", track.LanguageCode)
	if !track.IsManual {
		q.Set("kind", "asr")
	}
	return y.cfg.TimedTextURL + "?" + q.Encode()
}
