package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

type fakeDownloader struct {
	missing     bool
	info        Info
	probeErr    error
	downloadErr error
	probes      int
	downloads   int
	lastDir     string
}

func (f *fakeDownloader) Available() bool { return !f.missing }

func (f *fakeDownloader) Probe(context.Context, string) (Info, error) {
	f.probes++
	return f.info, f.probeErr
}

func (f *fakeDownloader) Download(_ context.Context, videoID, dir string) (string, error) {
	f.downloads++
	f.lastDir = dir
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	path := filepath.Join(dir, videoID+".wav")
	return path, os.WriteFile(path, []byte("RIFF"), 0o644)
}

type fakeEngine struct {
	name      string
	available bool
	text      string
	err       error
	calls     int
	sawFile   bool
}

func (f *fakeEngine) Name() string    { return f.name }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) Transcribe(_ context.Context, h *Handle, _ string) (Result, error) {
	f.calls++
	_, statErr := os.Stat(h.Path)
	f.sawFile = statErr == nil
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{Text: f.text}, nil
}

func testConfig(t *testing.T) engine.AudioConfig {
	cfg := engine.DefaultAudioConfig()
	cfg.WorkDir = t.TempDir()
	return cfg
}

func TestTranscribeVideoCleansUp(t *testing.T) {
	cfg := testConfig(t)
	dl := &fakeDownloader{info: Info{Duration: 2 * time.Minute}}
	eng := &fakeEngine{name: engine.AudioMethodWhisper, available: true, text: "hello world this is a test"}

	res, err := New(cfg, dl, eng).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "en")
	if err != nil {
		t.Fatalf("TranscribeVideo() error: %v", err)
	}
	if res.Text != "hello world this is a test" || res.Engine != engine.AudioMethodWhisper {
		t.Errorf("result = %+v", res)
	}
	if !eng.sawFile {
		t.Error("engine did not see the downloaded file")
	}
	if _, err := os.Stat(dl.lastDir); !os.IsNotExist(err) {
		t.Errorf("work dir %s not removed: %v", dl.lastDir, err)
	}
}

func TestTranscribeVideoCleansUpOnEngineFailure(t *testing.T) {
	cfg := testConfig(t)
	dl := &fakeDownloader{info: Info{Duration: time.Minute}}
	eng := &fakeEngine{name: engine.AudioMethodWhisper, available: true, err: errors.New("boom")}

	if _, err := New(cfg, dl, eng).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", ""); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(dl.lastDir); !os.IsNotExist(err) {
		t.Errorf("work dir not removed after failure: %v", err)
	}
}

func TestTranscribeVideoDurationExceeded(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxDuration = time.Hour
	dl := &fakeDownloader{info: Info{Duration: 5000 * time.Second}}

	// no engines at all: the duration cap still wins
	_, err := New(cfg, dl).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "")
	if !errors.Is(err, engine.ErrDurationExceeded) {
		t.Fatalf("error = %v, want ErrDurationExceeded", err)
	}
	if !strings.Contains(err.Error(), "too long") {
		t.Errorf("error %q does not mention the video being too long", err)
	}
	if dl.downloads != 0 {
		t.Error("over-long video was downloaded")
	}
}

func TestTranscribeVideoNoEngines(t *testing.T) {
	cfg := testConfig(t)
	dl := &fakeDownloader{info: Info{Duration: time.Minute}}
	off := &fakeEngine{name: engine.AudioMethodWhisper}

	_, err := New(cfg, dl, off).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "")
	if !errors.Is(err, engine.ErrNoEngines) {
		t.Fatalf("error = %v, want ErrNoEngines", err)
	}
	if dl.downloads != 0 {
		t.Error("downloaded without any engine")
	}
}

func TestTranscribeVideoMissingDownloader(t *testing.T) {
	cfg := testConfig(t)
	dl := &fakeDownloader{missing: true, info: Info{Duration: time.Minute}}
	eng := &fakeEngine{name: engine.AudioMethodWhisper, available: true, text: "never reached"}

	_, err := New(cfg, dl, eng).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "")
	if !errors.Is(err, engine.ErrNoEngines) {
		t.Fatalf("error = %v, want ErrNoEngines", err)
	}
	if engine.Classify(err) != engine.FailureSoft {
		t.Errorf("Classify() = %v, want soft", engine.Classify(err))
	}
	if dl.probes != 0 || eng.calls != 0 {
		t.Errorf("probes = %d, engine calls = %d; want none", dl.probes, eng.calls)
	}
}

func TestTranscribeVideoUnknownDuration(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxDuration = time.Hour
	dl := &fakeDownloader{info: Info{Title: "Live now"}}
	eng := &fakeEngine{name: engine.AudioMethodWhisper, available: true, text: "streamed words here"}

	res, err := New(cfg, dl, eng).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "")
	if err != nil {
		t.Fatalf("TranscribeVideo() error: %v", err)
	}
	if res.Text != "streamed words here" || dl.downloads != 1 {
		t.Errorf("result = %+v, downloads = %d", res, dl.downloads)
	}
}

func TestDownloadFailureIsTransient(t *testing.T) {
	cfg := testConfig(t)
	dl := &fakeDownloader{info: Info{Duration: time.Minute}, downloadErr: errors.New("HTTP 403")}

	_, err := New(cfg, dl).DownloadAudio(context.Background(), "dQw4w9WgXcQ", time.Hour)
	if !errors.Is(err, engine.ErrDownloadFailed) {
		t.Fatalf("error = %v, want ErrDownloadFailed", err)
	}
	if engine.Classify(err) != engine.FailureTransient {
		t.Errorf("Classify() = %v, want transient", engine.Classify(err))
	}
	entries, _ := os.ReadDir(cfg.WorkDir)
	if len(entries) != 0 {
		t.Errorf("work dir left behind: %v", entries)
	}
}

func TestEnginePreference(t *testing.T) {
	tests := []struct {
		name   string
		method string
		want   string
	}{
		{"whisper first", engine.AudioMethodWhisper, "whisper text"},
		{"online first", engine.AudioMethodSpeechRecognition, "online text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Method = tt.method
			w := &fakeEngine{name: engine.AudioMethodWhisper, available: true, text: "whisper text"}
			o := &fakeEngine{name: engine.AudioMethodSpeechRecognition, available: true, text: "online text"}
			dl := &fakeDownloader{info: Info{Duration: time.Minute}}

			res, err := New(cfg, dl, w, o).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "")
			if err != nil {
				t.Fatalf("TranscribeVideo() error: %v", err)
			}
			if res.Text != tt.want {
				t.Errorf("text = %q, want %q", res.Text, tt.want)
			}
		})
	}
}

func TestEngineFallsThrough(t *testing.T) {
	cfg := testConfig(t)
	w := &fakeEngine{name: engine.AudioMethodWhisper, available: true, err: errors.New("no module named faster_whisper")}
	empty := &fakeEngine{name: "empty", available: true, text: "   "}
	o := &fakeEngine{name: engine.AudioMethodSpeechRecognition, available: true, text: "from the online engine"}
	dl := &fakeDownloader{info: Info{Duration: time.Minute}}

	res, err := New(cfg, dl, w, empty, o).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "")
	if err != nil {
		t.Fatalf("TranscribeVideo() error: %v", err)
	}
	if res.Engine != engine.AudioMethodSpeechRecognition {
		t.Errorf("engine = %q", res.Engine)
	}
	if w.calls != 1 || empty.calls != 1 || o.calls != 1 {
		t.Errorf("calls = %d/%d/%d, want 1/1/1", w.calls, empty.calls, o.calls)
	}
}

func TestCapabilities(t *testing.T) {
	cfg := testConfig(t)
	cfg.Method = engine.AudioMethodSpeechRecognition
	src := New(cfg, &fakeDownloader{},
		&fakeEngine{name: engine.AudioMethodWhisper},
		&fakeEngine{name: engine.AudioMethodSpeechRecognition, available: true})

	c := src.Capabilities()
	if len(c.Engines) != 2 {
		t.Fatalf("engines = %+v", c.Engines)
	}
	if c.Engines[0].Name != engine.AudioMethodSpeechRecognition || !c.Engines[0].Available {
		t.Errorf("first engine = %+v", c.Engines[0])
	}
	if c.MaxDuration != time.Hour.String() {
		t.Errorf("max duration = %q", c.MaxDuration)
	}
	if !c.Downloader {
		t.Error("downloader reported missing")
	}
	if New(cfg, &fakeDownloader{missing: true}).Capabilities().Downloader {
		t.Error("missing downloader reported available")
	}
}

func TestParseProbe(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		title   string
		wantErr bool
	}{
		{"212.0\tNever Gonna Give You Up\n", 212 * time.Second, "Never Gonna Give You Up", false},
		{"NA\tLive now", 0, "Live now", false},
		{"", 0, "", true},
	}
	for _, tt := range tests {
		got, err := parseProbe(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseProbe(%q) error = %v", tt.in, err)
			continue
		}
		if got.Duration != tt.want || got.Title != tt.title {
			t.Errorf("parseProbe(%q) = %+v", tt.in, got)
		}
	}
}

func TestYTDLPDownload(t *testing.T) {
	dir := t.TempDir()
	var gotArgs []string
	y := NewYTDLP("yt-dlp", "")
	y.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.wav"), nil, 0o644)
	}

	path, err := y.Download(context.Background(), "dQw4w9WgXcQ", dir)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if filepath.Base(path) != "dQw4w9WgXcQ.wav" {
		t.Errorf("path = %q", path)
	}
	if last := gotArgs[len(gotArgs)-1]; last != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("url arg = %q", last)
	}
	for _, a := range gotArgs {
		if a == "--ffmpeg-location" {
			t.Error("default ffmpeg should not be passed explicitly")
		}
	}
}

func TestWhisperOutput(t *testing.T) {
	w := NewWhisper("python3", "base")
	var gotArgs []string
	w.run = func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		return []byte(`{"language":"am","duration":4,"segments":[{"start":0,"end":1.5,"text":" ሰላም "},{"start":1.5,"end":2,"text":" "},{"start":2,"end":4,"text":"ለዓለም"}]}`), nil
	}
	h := &Handle{Path: "/tmp/x.wav", dir: t.TempDir()}

	res, err := w.Transcribe(context.Background(), h, "am-ET")
	if err != nil {
		t.Fatalf("Transcribe() error: %v", err)
	}
	if res.Text != "ሰላም ለዓለም" || res.Language != "am" || len(res.Segments) != 2 {
		t.Errorf("result = %+v", res)
	}
	if res.Segments[1].Duration != 2 {
		t.Errorf("segment duration = %v", res.Segments[1].Duration)
	}
	if got := strings.Join(gotArgs, " "); !strings.Contains(got, "--language am") {
		t.Errorf("args = %s", got)
	}
	if _, err := os.Stat(filepath.Join(h.Dir(), "faster_whisper.py")); err != nil {
		t.Errorf("helper script not written: %v", err)
	}
}

func TestWhisperAvailableChecksModule(t *testing.T) {
	tests := []struct {
		name   string
		found  bool
		runErr error
		want   bool
		probes int
	}{
		{"no interpreter", false, nil, false, 0},
		{"module missing", true, errors.New("python3: exit status 1: ModuleNotFoundError"), false, 1},
		{"usable", true, nil, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWhisper("python3", "base")
			w.look = func(string) bool { return tt.found }
			probes := 0
			w.run = func(_ context.Context, _ string, args ...string) ([]byte, error) {
				probes++
				if strings.Join(args, " ") != "-c import faster_whisper" {
					t.Errorf("args = %q", args)
				}
				return nil, tt.runErr
			}
			for range 2 {
				if got := w.Available(); got != tt.want {
					t.Errorf("Available() = %v, want %v", got, tt.want)
				}
			}
			if probes != tt.probes {
				t.Errorf("import checked %d times, want %d", probes, tt.probes)
			}
		})
	}
}

func TestHandleCloseIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "work")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	h := &Handle{dir: dir}
	for i := range 2 {
		if err := h.Close(); err != nil {
			t.Errorf("Close() #%d error: %v", i, err)
		}
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("dir still exists: %v", err)
	}
}

func ExampleSource_TranscribeVideo() {
	cfg := engine.DefaultAudioConfig()
	dl := &fakeDownloader{info: Info{Duration: 90 * time.Minute}}
	_, err := New(cfg, dl).TranscribeVideo(context.Background(), "dQw4w9WgXcQ", "")
	fmt.Println(engine.Classify(err))
	// Output: soft
}
