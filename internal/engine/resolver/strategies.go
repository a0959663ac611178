package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
)

// minAudioChars is the trimmed length an audio transcript must exceed.
const minAudioChars = 10

// --- captions ---

type captionStrategy struct {
	src     CaptionSource
	matcher *lang.Matcher
}

func (c *captionStrategy) Name() string { return "captions" }

func (c *captionStrategy) Attempt(ctx context.Context, st *State) (*engine.ResolvedTranscript, error) {
	if c.src == nil {
		err := fmt.Errorf("%w: no caption source", engine.ErrNoCaptionsFound)
		st.note(err)
		return nil, err
	}

	var candidates []engine.TrackDescriptor
	tracks, err := c.src.ListTracks(ctx, st.VideoID)
	switch {
	case err == nil:
		st.Tracks, st.Listed = tracks, true
		candidates = orderCandidates(tracks, st.Preferred, c.matcher)
		if len(candidates) == 0 {
			err = fmt.Errorf("%w: listing is empty", engine.ErrNoCaptionsFound)
			st.note(err)
			return nil, err
		}
	case errors.Is(err, engine.ErrCaptionsDisabled), errors.Is(err, engine.ErrNoCaptionsFound):
		st.note(err)
		return nil, err
	default:
		// a failed listing proves nothing about what exists
		st.note(err)
		slog.Warn("resolver: caption listing failed, trying known tracks",
			slog.String("id", st.VideoID), slog.Any("err", err))
		candidates = blindCandidates(st.VideoID, st.Preferred, c.matcher)
	}

	var lastErr error
	for _, track := range candidates {
		if err := ctx.Err(); err != nil {
			st.note(err)
			return nil, err
		}
		cand, err := c.src.Fetch(ctx, track)
		if err != nil {
			slog.Debug("resolver: caption fetch failed",
				slog.String("id", st.VideoID), slog.String("lang", track.LanguageCode),
				slog.Bool("manual", track.IsManual), slog.Any("err", err))
			st.note(err)
			lastErr = err
			continue
		}
		text := cand.Text()
		if text == "" {
			lastErr = fmt.Errorf("%w: %s track", engine.ErrEmptyTranscript, track.LanguageCode)
			st.note(lastErr)
			continue
		}

		res := &engine.ResolvedTranscript{
			Text:            text,
			LanguageCode:    track.LanguageCode,
			IsAutoGenerated: !track.IsManual,
			Source:          engine.SourceManualCaption,
			RawSegments:     engine.NonEmptySegments(cand.Segments),
			Method:          "captions",
		}
		if !track.IsManual {
			res.Source = engine.SourceAutoCaption
		}
		return res, nil
	}
	return nil, lastErr
}

// orderCandidates ranks listed tracks for the requested language.
//
// Explicit language: the exact code, then its variants, then any other track
// sharing the base code; manual before auto for each code. The remaining
// tracks follow as a last caption resort: manual, then English, then the rest.
//
// Auto: manual non-English, manual English, auto non-English, auto English.
//
// Ties keep listing order.
func orderCandidates(tracks []engine.TrackDescriptor, preferred string, m *lang.Matcher) []engine.TrackDescriptor {
	out := make([]engine.TrackDescriptor, 0, len(tracks))
	used := make([]bool, len(tracks))
	take := func(match func(engine.TrackDescriptor) bool) {
		for i, t := range tracks {
			if !used[i] && match(t) {
				used[i] = true
				out = append(out, t)
			}
		}
	}

	if preferred == engine.LanguageAuto {
		for _, tier := range autoTiers {
			take(tier)
		}
		return out
	}

	for _, code := range m.ExpandVariants(preferred) {
		for _, manual := range []bool{true, false} {
			take(func(t engine.TrackDescriptor) bool {
				return t.IsManual == manual && strings.EqualFold(t.LanguageCode, code)
			})
		}
	}
	for _, manual := range []bool{true, false} {
		take(func(t engine.TrackDescriptor) bool {
			return t.IsManual == manual && lang.SameBase(t.LanguageCode, preferred)
		})
	}
	for _, tier := range otherLanguageTiers {
		take(tier)
	}
	return out
}

var otherLanguageTiers = []func(engine.TrackDescriptor) bool{
	func(t engine.TrackDescriptor) bool { return t.IsManual },
	func(t engine.TrackDescriptor) bool { return lang.IsEnglish(t.LanguageCode) },
	func(engine.TrackDescriptor) bool { return true },
}

var autoTiers = []func(engine.TrackDescriptor) bool{
	func(t engine.TrackDescriptor) bool { return t.IsManual && !lang.IsEnglish(t.LanguageCode) },
	func(t engine.TrackDescriptor) bool { return t.IsManual && lang.IsEnglish(t.LanguageCode) },
	func(t engine.TrackDescriptor) bool { return !t.IsManual && !lang.IsEnglish(t.LanguageCode) },
	func(t engine.TrackDescriptor) bool { return !t.IsManual && lang.IsEnglish(t.LanguageCode) },
}

// blindCandidates are descriptors built without a listing: the preferred
// language and its variants, or English in auto mode.
func blindCandidates(videoID, preferred string, m *lang.Matcher) []engine.TrackDescriptor {
	codes := []string{"en"}
	if preferred != engine.LanguageAuto {
		codes = m.ExpandVariants(preferred)
	}
	out := make([]engine.TrackDescriptor, 0, 2*len(codes))
	for _, manual := range []bool{true, false} {
		for _, code := range codes {
			out = append(out, engine.TrackDescriptor{VideoID: videoID, LanguageCode: code, IsManual: manual})
		}
	}
	return out
}

// --- audio ---

type audioStrategy struct {
	src      AudioSource
	matcher  *lang.Matcher
	minChars int
}

func (a *audioStrategy) Name() string { return "audio" }

func (a *audioStrategy) Attempt(ctx context.Context, st *State) (*engine.ResolvedTranscript, error) {
	if a.src == nil {
		st.note(engine.ErrNoEngines)
		return nil, engine.ErrNoEngines
	}

	hint := audioHint(st)
	slog.Info("resolver: falling back to audio transcription",
		slog.String("id", st.VideoID), slog.String("hint", hint))

	res, err := a.src.TranscribeVideo(ctx, st.VideoID, hint)
	if err != nil {
		st.note(err)
		return nil, err
	}

	text := engine.NormalizeText(res.Text)
	if n := utf8.RuneCountInString(text); n <= a.minChars {
		err := fmt.Errorf("%w: %d characters", engine.ErrInsufficientAudio, n)
		st.note(err)
		return nil, err
	}

	language := lang.Base(res.Language)
	switch {
	case language != "":
	case hint != "":
		language = lang.Base(hint)
	default:
		language = a.matcher.Detect(text, 0).Code
	}

	return &engine.ResolvedTranscript{
		Text:              text,
		LanguageCode:      language,
		IsAutoGenerated:   true,
		Source:            engine.SourceAudioTranscription,
		RawSegments:       res.Segments,
		Method:            res.Engine,
		Partial:           res.Partial,
		ChunksTotal:       res.ChunksTotal,
		ChunksTranscribed: res.ChunksTranscribed,
	}, nil
}

// audioHint picks the language passed to speech-to-text: the explicit
// preference, else the first non-English manual track, else the first
// non-English listed track, else none.
func audioHint(st *State) string {
	if !st.Auto() {
		return st.Preferred
	}
	for _, t := range st.Tracks {
		if t.IsManual && !lang.IsEnglish(t.LanguageCode) {
			return t.LanguageCode
		}
	}
	for _, t := range st.Tracks {
		if !lang.IsEnglish(t.LanguageCode) {
			return t.LanguageCode
		}
	}
	return ""
}
