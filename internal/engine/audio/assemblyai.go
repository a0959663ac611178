package audio

import (
	"context"
	"errors"
	"fmt"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// assemblyAILanguages are the base codes AssemblyAI accepts as language_code.
// Anything else is sent with language detection on.
var assemblyAILanguages = map[string]bool{
	"en": true, "es": true, "fr": true, "de": true, "it": true, "pt": true,
	"nl": true, "hi": true, "ja": true, "zh": true, "fi": true, "ko": true,
	"pl": true, "ru": true, "tr": true, "uk": true, "vi": true, "ar": true,
	"bg": true, "ca": true, "cs": true, "da": true, "el": true, "et": true,
	"he": true, "hu": true, "id": true, "lt": true, "lv": true, "ms": true,
	"no": true, "ro": true, "sk": true, "sl": true, "sv": true, "th": true,
}

// AssemblyAI recognizes chunks with the AssemblyAI transcription API.
type AssemblyAI struct {
	client *aai.Client
}

// NewAssemblyAI returns a recognizer. An empty key yields an unavailable one.
func NewAssemblyAI(apiKey string) *AssemblyAI {
	if apiKey == "" {
		return &AssemblyAI{}
	}
	return &AssemblyAI{client: aai.NewClient(apiKey)}
}

func (a *AssemblyAI) Available() bool { return a.client != nil }

func (a *AssemblyAI) Recognize(ctx context.Context, chunkPath, language string) (string, error) {
	if a.client == nil {
		return "", errors.New("assemblyai: no api key")
	}
	f, err := os.Open(chunkPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	params := &aai.TranscriptOptionalParams{}
	if assemblyAILanguages[language] {
		params.LanguageCode = aai.TranscriptLanguageCode(language)
	} else {
		params.LanguageDetection = aai.Bool(true)
	}

	transcript, err := a.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return "", engine.Transient(fmt.Errorf("assemblyai: %w", err))
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "transcription failed"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", fmt.Errorf("assemblyai: %s", msg)
	}
	if transcript.Text == nil {
		return "", nil
	}
	return *transcript.Text, nil
}
