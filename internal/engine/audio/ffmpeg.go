package audio

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// FFmpegSplitter cuts audio into mono 16 kHz WAV chunks with ffmpeg's segment muxer.
type FFmpegSplitter struct {
	bin string
	run runFunc
}

func NewFFmpegSplitter(bin string) *FFmpegSplitter {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpegSplitter{bin: bin, run: runCommand}
}

func (f *FFmpegSplitter) Available() bool { return lookPath(f.bin) }

func (f *FFmpegSplitter) Split(ctx context.Context, audioPath, outDir string, window time.Duration) ([]string, error) {
	_, err := f.run(ctx, f.bin,
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", audioPath,
		"-ac", "1", "-ar", "16000",
		"-f", "segment",
		"-segment_time", strconv.FormatFloat(window.Seconds(), 'f', -1, 64),
		"-reset_timestamps", "1",
		filepath.Join(outDir, "chunk_%05d.wav"))
	if err != nil {
		return nil, err
	}
	chunks, err := filepath.Glob(filepath.Join(outDir, "chunk_*.wav"))
	if err != nil {
		return nil, err
	}
	sort.Strings(chunks) // zero-padded, so lexical order is chunk order
	return chunks, nil
}
