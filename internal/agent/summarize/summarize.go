// Package summarize defines the summarization capability: a black-box text
// generator the pipeline uses for document synopses.
package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/digibhoomi/record-translator/internal/agent/gemini"
)

// Capability produces a short synopsis of text, or an error when the
// underlying service is unavailable. An absent summary is non-fatal to the
// pipeline.
type Capability interface {
	Summarize(ctx context.Context, text string) (string, error)
}

const summaryPrompt = `Summarize the following translated South Asian land record in 2-3 plain English sentences. Mention the parcel, owner and location when present. Output only the summary.

DOCUMENT:
%s

SUMMARY:`

// GeminiSummarizer backs the capability with the Gemini client.
type GeminiSummarizer struct {
	client *gemini.Client
}

func NewGeminiSummarizer(client *gemini.Client) *GeminiSummarizer {
	return &GeminiSummarizer{client: client}
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.client.Generate(ctx, fmt.Sprintf(summaryPrompt, text))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}
