package engine

import (
	"net/http"
	"time"
)

// Audio transcription method preferences.
const (
	AudioMethodWhisper           = "whisper"
	AudioMethodSpeechRecognition = "speech_recognition"
)

// LanguageAuto asks the resolver to pick the caption language itself.
const LanguageAuto = "auto"

// Config holds all engine configuration, injected from main.
// It is built once at startup and passed by value into constructors.
type Config struct {
	PreferredLanguage string
	FetchTimeout      time.Duration
	PipelineTimeout   time.Duration
	HTTPClient        *http.Client
	BrowserClient     *BrowserClient // optional; watch-page requests go through it when set

	Audio   AudioConfig
	Summary SummaryConfig

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
}

// AudioConfig configures the speech-to-text fallback.
type AudioConfig struct {
	MaxDuration       time.Duration
	Method            string // AudioMethodWhisper or AudioMethodSpeechRecognition
	ChunkLength       time.Duration
	ChunkWorkers      int
	ChunkRPS          float64
	DownloadTimeout   time.Duration
	TranscribeTimeout time.Duration
	WorkDir           string // "" = os.TempDir()

	YTDLPBin      string
	FFmpegBin     string
	WhisperPython string
	WhisperModel  string
	AssemblyAIKey string
}

// SummaryConfig configures the summarization backends.
type SummaryConfig struct {
	MaxInputChars   int
	BackendPriority []string
	Hosted          bool // constrained hosting (Railway-style); prefers cloud APIs
	Timeout         time.Duration

	OllamaURL       string
	OllamaModels    []string
	OllamaMaxTokens int

	MistralAPIKey  string
	MistralAPIBase string
	MistralModels  []string

	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModels          []string

	Temperature float64
	MaxTokens   int
}

// DefaultAudioConfig returns the audio settings used when main leaves fields empty.
func DefaultAudioConfig() AudioConfig {
	return AudioConfig{
		MaxDuration:       time.Hour,
		Method:            AudioMethodWhisper,
		ChunkLength:       30 * time.Second,
		ChunkWorkers:      4,
		ChunkRPS:          2,
		DownloadTimeout:   5 * time.Minute,
		TranscribeTimeout: 15 * time.Minute,
		YTDLPBin:          "yt-dlp",
		FFmpegBin:         "ffmpeg",
		WhisperPython:     "python3",
		WhisperModel:      "base",
	}
}

// DefaultSummaryConfig returns the summary settings used when main leaves fields empty.
func DefaultSummaryConfig() SummaryConfig {
	return SummaryConfig{
		MaxInputChars:   25000,
		Timeout:         90 * time.Second,
		OllamaURL:       "http://localhost:11434",
		OllamaModels:    []string{"mistral-small:22b"},
		OllamaMaxTokens: 512,
		MistralAPIBase:  "https://api.mistral.ai/v1",
		MistralModels:   []string{"mistral-small-latest", "mistral-small"},
		Temperature:     0.2,
		MaxTokens:       1024,
	}
}
