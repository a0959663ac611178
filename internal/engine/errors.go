package engine

import (
	"context"
	"errors"
	"fmt"
)

// Soft failures drive fallback and mean the content is unavailable.
var (
	ErrCaptionsDisabled  = errors.New("captions are disabled for this video")
	ErrNoCaptionsFound   = errors.New("no captions found")
	ErrEmptyTranscript   = errors.New("transcript content is empty")
	ErrInsufficientAudio = errors.New("audio transcription produced too little text")
	ErrDurationExceeded  = errors.New("video too long for audio transcription")
	ErrNoEngines         = errors.New("no speech-to-text engines available")
	ErrInvalidVideoID    = errors.New("invalid youtube video id")
)

// Transient failures: the whole job may succeed later.
var (
	ErrTransient      = errors.New("transient upstream error")
	ErrDownloadFailed = errors.New("audio download failed")
)

// FailureKind classifies a resolution failure for the job runner.
type FailureKind int

const (
	FailureSoft      FailureKind = iota // content unavailable, do not retry
	FailureTransient                    // retry the job later
	FailureHard                         // unexpected, logged with context
)

func (k FailureKind) String() string {
	switch k {
	case FailureSoft:
		return "soft"
	case FailureTransient:
		return "transient"
	default:
		return "hard"
	}
}

// Classify maps an error chain onto a FailureKind.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrTransient),
		errors.Is(err, ErrDownloadFailed),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return FailureTransient
	case errors.Is(err, ErrCaptionsDisabled),
		errors.Is(err, ErrNoCaptionsFound),
		errors.Is(err, ErrEmptyTranscript),
		errors.Is(err, ErrInsufficientAudio),
		errors.Is(err, ErrDurationExceeded),
		errors.Is(err, ErrNoEngines),
		errors.Is(err, ErrInvalidVideoID):
		return FailureSoft
	}
	return FailureHard
}

// Transient marks err as a transient upstream failure, keeping the original chain.
func Transient(err error) error {
	if err == nil || errors.Is(err, ErrTransient) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// ResolutionFailure is returned when no strategy produced a usable transcript.
type ResolutionFailure struct {
	VideoID string
	Kind    FailureKind
	Reason  string
	Err     error
}

// NewResolutionFailure builds a failure whose kind and reason come from err.
func NewResolutionFailure(videoID string, err error) *ResolutionFailure {
	if err == nil {
		err = ErrEmptyTranscript
	}
	return &ResolutionFailure{
		VideoID: videoID,
		Kind:    Classify(err),
		Reason:  err.Error(),
		Err:     err,
	}
}

func (f *ResolutionFailure) Error() string {
	return fmt.Sprintf("resolve %s: %s failure: %s", f.VideoID, f.Kind, f.Reason)
}

func (f *ResolutionFailure) Unwrap() error { return f.Err }

// Retryable reports whether the job runner should queue the video again.
func (f *ResolutionFailure) Retryable() bool {
	return f.Kind != FailureSoft
}
