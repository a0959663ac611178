package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// YTDLP downloads audio with the yt-dlp binary.
type YTDLP struct {
	bin    string
	ffmpeg string
	run    runFunc
}

// NewYTDLP returns a downloader using the given yt-dlp and ffmpeg binaries.
func NewYTDLP(bin, ffmpeg string) *YTDLP {
	if bin == "" {
		bin = "yt-dlp"
	}
	return &YTDLP{bin: bin, ffmpeg: ffmpeg, run: runCommand}
}

// Available reports whether the yt-dlp binary is on PATH.
func (y *YTDLP) Available() bool { return lookPath(y.bin) }

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Probe reads duration and title without downloading.
func (y *YTDLP) Probe(ctx context.Context, videoID string) (Info, error) {
	out, err := y.run(ctx, y.bin,
		"--no-warnings", "--no-playlist", "--skip-download",
		"--print", "%(duration)s\t%(title)s",
		watchURL(videoID))
	if err != nil {
		return Info{}, err
	}
	return parseProbe(string(out))
}

func parseProbe(out string) (Info, error) {
	line, _, _ := strings.Cut(strings.TrimSpace(out), "\n")
	durStr, title, _ := strings.Cut(line, "\t")
	if line == "" {
		return Info{}, errors.New("yt-dlp: empty probe output")
	}
	info := Info{Title: strings.TrimSpace(title)}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(durStr), 64); err == nil && secs > 0 {
		info.Duration = time.Duration(secs * float64(time.Second))
	}
	return info, nil
}

// Download extracts mono 16 kHz WAV audio into dir.
func (y *YTDLP) Download(ctx context.Context, videoID, dir string) (string, error) {
	args := []string{
		"--no-warnings", "--no-playlist", "--no-progress",
		"-f", "bestaudio/best",
		"-x", "--audio-format", "wav",
		"--postprocessor-args", "ffmpeg:-ac 1 -ar 16000",
		"-o", filepath.Join(dir, videoID+".%(ext)s"),
	}
	if y.ffmpeg != "" && y.ffmpeg != "ffmpeg" {
		args = append(args, "--ffmpeg-location", y.ffmpeg)
	}
	args = append(args, watchURL(videoID))

	if _, err := y.run(ctx, y.bin, args...); err != nil {
		return "", err
	}

	want := filepath.Join(dir, videoID+".wav")
	if _, err := os.Stat(want); err == nil {
		return want, nil
	}
	// some formats skip the postprocessor; take whatever landed
	matches, _ := filepath.Glob(filepath.Join(dir, videoID+".*"))
	if len(matches) == 0 {
		return "", fmt.Errorf("yt-dlp: no audio file written to %s", dir)
	}
	return matches[0], nil
}
