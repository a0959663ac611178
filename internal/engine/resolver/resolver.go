// Package resolver turns a video ID into one canonical transcript by walking
// an ordered list of acquisition strategies: captions first, audio last.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/audio"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
)

// CaptionSource lists and fetches caption tracks.
type CaptionSource interface {
	ListTracks(ctx context.Context, videoID string) ([]engine.TrackDescriptor, error)
	Fetch(ctx context.Context, track engine.TrackDescriptor) (engine.TranscriptCandidate, error)
}

// AudioSource transcribes a video from its audio track.
type AudioSource interface {
	TranscribeVideo(ctx context.Context, videoID, languageHint string) (audio.Result, error)
}

// Strategy is one step of the fallback chain. Attempt returns a transcript or
// the last error it saw; every error it sees is also noted on the State.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, st *State) (*engine.ResolvedTranscript, error)
}

// State is shared by the strategies of a single Resolve call.
type State struct {
	VideoID   string
	Preferred string // engine.LanguageAuto or an explicit code

	Tracks []engine.TrackDescriptor // caption listing, nil when unavailable
	Listed bool

	errs []error
}

// Auto reports whether the caller left language selection to the resolver.
func (s *State) Auto() bool { return s.Preferred == engine.LanguageAuto }

func (s *State) note(err error) {
	if err != nil {
		s.errs = append(s.errs, err)
	}
}

// failure picks the error that explains the outcome: the last one of the
// most severe kind seen (hard > transient > soft).
func (s *State) failure() *engine.ResolutionFailure {
	var pick error
	kind := engine.FailureSoft
	for _, err := range s.errs {
		if k := engine.Classify(err); pick == nil || k >= kind {
			pick, kind = err, k
		}
	}
	return engine.NewResolutionFailure(s.VideoID, pick)
}

// Resolver runs the strategies in order until one yields non-empty text.
type Resolver struct {
	strategies []Strategy
}

// New returns the standard chain: captions, then audio. audioSrc may be nil.
func New(captions CaptionSource, audioSrc AudioSource, matcher *lang.Matcher) *Resolver {
	if matcher == nil {
		matcher = lang.NewMatcher()
	}
	return NewWithStrategies(
		&captionStrategy{src: captions, matcher: matcher},
		&audioStrategy{src: audioSrc, matcher: matcher, minChars: minAudioChars},
	)
}

// NewWithStrategies returns a resolver over a custom chain.
func NewWithStrategies(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Resolve returns a transcript with non-empty text, or a
// *engine.ResolutionFailure. preferred is a language code or "auto".
func (r *Resolver) Resolve(ctx context.Context, videoID, preferred string) (*engine.ResolvedTranscript, error) {
	engine.IncrResolveRequests()
	start := time.Now()
	st := &State{VideoID: videoID, Preferred: normalizePreferred(preferred)}

	if !engine.IsValidVideoID(videoID) {
		st.note(fmt.Errorf("%w: %q", engine.ErrInvalidVideoID, videoID))
		return nil, r.fail(st, start)
	}

	for _, s := range r.strategies {
		if ctx.Err() != nil {
			st.note(ctx.Err())
			break
		}
		res, err := s.Attempt(ctx, st)
		if err != nil {
			slog.Debug("resolver: strategy produced nothing",
				slog.String("id", videoID), slog.String("strategy", s.Name()), slog.Any("err", err))
			continue
		}
		if res == nil || strings.TrimSpace(res.Text) == "" {
			st.note(fmt.Errorf("%s: %w", s.Name(), engine.ErrEmptyTranscript))
			continue
		}

		res.VideoID = videoID
		res.WordCount = engine.WordCount(res.Text)
		engine.IncrResolved(res.Source)
		slog.Info("resolver: transcript resolved",
			slog.String("id", videoID),
			slog.String("source", string(res.Source)),
			slog.String("lang", res.LanguageCode),
			slog.Int("words", res.WordCount),
			slog.String("preview", engine.Preview(res.Text)),
			slog.Duration("elapsed", time.Since(start)))
		return res, nil
	}
	return nil, r.fail(st, start)
}

func (r *Resolver) fail(st *State, start time.Time) *engine.ResolutionFailure {
	f := st.failure()
	engine.IncrFailure(f.Kind)
	attrs := []any{
		slog.String("id", st.VideoID),
		slog.String("kind", f.Kind.String()),
		slog.String("reason", f.Reason),
		slog.Int("errors", len(st.errs)),
		slog.Duration("elapsed", time.Since(start)),
	}
	if f.Kind == engine.FailureHard {
		slog.Error("resolver: resolution failed", append(attrs, slog.Any("err", f.Err))...)
	} else {
		slog.Warn("resolver: resolution failed", attrs...)
	}
	return f
}

func normalizePreferred(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, engine.LanguageAuto) {
		return engine.LanguageAuto
	}
	return code
}
