// go_transcript — YouTube transcript and summary MCP server.
//
// Exposes three MCP tools: youtube_transcript, youtube_summarize,
// transcript_capabilities. Captions are preferred; audio transcription is the
// fallback. Summaries go through local and cloud model backends in priority order.
package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/proxypool"
	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/audio"
	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
	"github.com/anatolykoptev/go_transcript/internal/engine/pipeline"
	"github.com/anatolykoptev/go_transcript/internal/engine/resolver"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/engine/summary"
	"github.com/anatolykoptev/go_transcript/internal/ytserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	cfg := loadConfig()
	deps, cache := buildDeps(cfg)
	defer cache.Close()

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
		slog.String("audio_method", cfg.Audio.Method),
		slog.Bool("hosted", cfg.Summary.Hosted),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	ytserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: cfg.PipelineTimeout + 30*time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	audioDefaults := engine.DefaultAudioConfig()
	sumDefaults := engine.DefaultSummaryConfig()

	c := engine.Config{
		PreferredLanguage: env.Str("PREFERRED_LANGUAGE", engine.LanguageAuto),
		FetchTimeout:      env.Duration("FETCH_TIMEOUT", 15*time.Second),
		PipelineTimeout:   env.Duration("PIPELINE_TIMEOUT", 20*time.Minute),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		Audio: engine.AudioConfig{
			MaxDuration:       time.Duration(env.Int("AUDIO_MAX_DURATION_SECONDS", int(audioDefaults.MaxDuration/time.Second))) * time.Second,
			Method:            env.Str("AUDIO_METHOD", audioDefaults.Method),
			ChunkLength:       time.Duration(env.Int("AUDIO_CHUNK_SECONDS", int(audioDefaults.ChunkLength/time.Second))) * time.Second,
			ChunkWorkers:      env.Int("AUDIO_CHUNK_WORKERS", audioDefaults.ChunkWorkers),
			ChunkRPS:          env.Float("AUDIO_CHUNK_RPS", audioDefaults.ChunkRPS),
			DownloadTimeout:   env.Duration("AUDIO_DOWNLOAD_TIMEOUT", audioDefaults.DownloadTimeout),
			TranscribeTimeout: env.Duration("AUDIO_TRANSCRIBE_TIMEOUT", audioDefaults.TranscribeTimeout),
			WorkDir:           env.Str("AUDIO_WORK_DIR", ""),
			YTDLPBin:          env.Str("YTDLP_BIN", audioDefaults.YTDLPBin),
			FFmpegBin:         env.Str("FFMPEG_BIN", audioDefaults.FFmpegBin),
			WhisperPython:     env.Str("WHISPER_PYTHON", audioDefaults.WhisperPython),
			WhisperModel:      env.Str("WHISPER_MODEL", audioDefaults.WhisperModel),
			AssemblyAIKey:     env.Str("ASSEMBLYAI_API_KEY", ""),
		},
		Summary: engine.SummaryConfig{
			MaxInputChars:      env.Int("SUMMARY_MAX_INPUT_CHARS", sumDefaults.MaxInputChars),
			BackendPriority:    env.List("BACKEND_PRIORITY", ""),
			Hosted:             env.Str("RAILWAY_STATIC_URL", "") != "" || env.Str("RAILWAY_SERVICE_NAME", "") != "",
			Timeout:            env.Duration("SUMMARY_TIMEOUT", sumDefaults.Timeout),
			OllamaURL:          env.Str("OLLAMA_URL", sumDefaults.OllamaURL),
			OllamaModels:       env.List("OLLAMA_MODELS", "mistral-small:22b"),
			OllamaMaxTokens:    env.Int("OLLAMA_MAX_TOKENS", sumDefaults.OllamaMaxTokens),
			MistralAPIKey:      env.Str("MISTRAL_API_KEY", ""),
			MistralAPIBase:     env.Str("MISTRAL_API_BASE", sumDefaults.MistralAPIBase),
			MistralModels:      env.List("MISTRAL_MODELS", "mistral-small-latest,mistral-small"),
			LLMAPIKey:          env.Str("LLM_API_KEY", ""),
			LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
			LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
			LLMModels:          env.List("LLM_MODELS", "gemini-2.5-flash"),
			Temperature:        env.Float("SUMMARY_TEMPERATURE", sumDefaults.Temperature),
			MaxTokens:          env.Int("SUMMARY_MAX_TOKENS", sumDefaults.MaxTokens),
		},
		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 6*time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
	}

	var opts []stealth.ClientOption
	opts = append(opts, stealth.WithTimeout(15))

	if apiKey := env.Str("WEBSHARE_API_KEY", ""); apiKey != "" {
		pool, err := proxypool.NewWebshare(apiKey)
		if err != nil {
			slog.Warn("proxy pool init failed, running without proxy", slog.Any("error", err))
		} else {
			opts = append(opts, stealth.WithProxyPool(pool))
			slog.Info("proxy pool initialized", slog.Int("proxies", pool.Len()))
		}
	}

	bc, err := stealth.NewClient(opts...)
	if err != nil {
		slog.Warn("stealth client init failed, using plain http for watch pages", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
		slog.Info("stealth browser client initialized")
	}
	return c
}

func buildDeps(c engine.Config) (ytserver.Deps, *engine.Cache) {
	matcher := lang.NewMatcher()

	captions := sources.NewYouTube(sources.Config{
		HTTPClient: c.HTTPClient,
		Browser:    c.BrowserClient,
		Timeout:    c.FetchTimeout,
	})

	audioSrc := audio.New(c.Audio,
		audio.NewYTDLP(c.Audio.YTDLPBin, c.Audio.FFmpegBin),
		audio.NewWhisper(c.Audio.WhisperPython, c.Audio.WhisperModel),
		audio.NewOnline(c.Audio,
			audio.NewFFmpegSplitter(c.Audio.FFmpegBin),
			audio.NewAssemblyAI(c.Audio.AssemblyAIKey),
		),
	)

	res := resolver.New(captions, audioSrc, matcher)

	s := c.Summary
	llmHTTP := &http.Client{Timeout: s.Timeout}
	router := summary.NewRouter(summary.RouterConfig{
		Priority: s.BackendPriority,
		Hosted:   s.Hosted,
		Timeout:  s.Timeout,
	}, matcher,
		summary.Descriptor{
			Models:      s.OllamaModels,
			Temperature: s.Temperature,
			MaxTokens:   s.OllamaMaxTokens,
			Backend:     summary.NewOllama(s.OllamaURL, llmHTTP),
		},
		summary.Descriptor{
			Models:      s.MistralModels,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Backend: summary.NewCloud(summary.CloudConfig{
				Kind:       summary.KindCloudPrimary,
				APIBase:    s.MistralAPIBase,
				APIKey:     s.MistralAPIKey,
				Models:     s.MistralModels,
				HTTPClient: llmHTTP,
			}),
		},
		summary.Descriptor{
			Models:      s.LLMModels,
			Temperature: s.Temperature,
			MaxTokens:   s.MaxTokens,
			Backend: summary.NewCloud(summary.CloudConfig{
				Kind:         summary.KindCloudSecondary,
				APIBase:      s.LLMAPIBase,
				APIKey:       s.LLMAPIKey,
				FallbackKeys: s.LLMAPIKeyFallbacks,
				Models:       s.LLMModels,
				HTTPClient:   llmHTTP,
			}),
		},
	)

	caps := audioSrc.Capabilities()
	for _, e := range caps.Engines {
		slog.Info("audio engine", slog.String("name", e.Name), slog.Bool("available", e.Available))
	}

	cache := engine.NewCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	return ytserver.Deps{
		Resolver:        res,
		Processor:       pipeline.NewProcessor(res, router, s.MaxInputChars),
		Audio:           audioSrc,
		Backends:        router,
		Cache:           cache,
		Timeout:         c.PipelineTimeout,
		DefaultLanguage: c.PreferredLanguage,
	}, cache
}
