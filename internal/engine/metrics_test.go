package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestTrackOperationWarnsWhenSlow(t *testing.T) {
	logs := captureLogs(t)
	boom := errors.New("boom")

	err := TrackOperation(context.Background(), "process:dQw4w9WgXcQ", time.Millisecond, func(context.Context) error {
		time.Sleep(5 * time.Millisecond)
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("TrackOperation() error = %v, want the fn error", err)
	}
	if !strings.Contains(logs.String(), "slow operation") || !strings.Contains(logs.String(), "process:dQw4w9WgXcQ") {
		t.Errorf("no slow warning logged: %q", logs.String())
	}
}

func TestTrackOperationQuiet(t *testing.T) {
	logs := captureLogs(t)

	if err := TrackOperation(context.Background(), "fast", time.Hour, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("TrackOperation() error = %v", err)
	}
	if logs.Len() != 0 {
		t.Errorf("unexpected log output: %q", logs.String())
	}
}
