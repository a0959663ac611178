package summary

import (
	"fmt"

	"github.com/anatolykoptev/go_transcript/internal/engine/lang"
)

// Prompt templates: data only.

// summaryPrompt is used for English (or undetected) transcripts.
// Args: transcript.
const summaryPrompt = `You are a video summarization expert. Summarize the video transcript below.
The summary must be structured, easy to read, in English, and free of personal opinions.
Write it for someone who has not watched the video. Include:
1. The main topic and purpose of the video
2. Key points and arguments presented
3. Key people, places or organizations mentioned
4. Important facts, statistics, or examples
5. Conclusions or takeaways

Use short paragraphs with headings. Aim for 200-300 words depending on length and complexity.
Do not state facts not present in the transcript.
If the transcript appears truncated, summarize what is available.

Transcript:
%s

Summary:`

// summaryPromptForeign is used when the transcript is not in English.
// Args: language name, language name, transcript.
const summaryPromptForeign = `You are a video summarization expert. The video transcript below is in %s.
Start the summary with one line naming the source language, then summarize the video IN ENGLISH.
The summary must be structured, easy to read, and free of personal opinions. Include:
1. The main topic and purpose of the video
2. Key points and arguments presented
3. Key people, places or organizations mentioned
4. Important facts, statistics, or examples
5. Conclusions or takeaways

Use short paragraphs with headings. Aim for 200-300 words depending on length and complexity.
Do not state facts not present in the transcript. Do not guess at words you cannot translate.
If the transcript appears truncated, summarize what is available.

Transcript (%s):
%s

Summary (in English):`

// foreignMinConfidence is the detection confidence needed to switch prompts.
const foreignMinConfidence = 0.5

// BuildPrompt picks the prompt variant for the detected transcript language.
func BuildPrompt(transcript string, det lang.Detection) string {
	if det.Code != "" && !det.IsEnglish() && det.Confidence >= foreignMinConfidence {
		name := lang.Name(det.Code)
		return fmt.Sprintf(summaryPromptForeign, name, name, transcript)
	}
	return fmt.Sprintf(summaryPrompt, transcript)
}
