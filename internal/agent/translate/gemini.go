package translate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/digibhoomi/record-translator/internal/agent/gemini"
)

const translationPrompt = `You are an expert translator specializing in South Asian land records and legal documents.

TASK: Translate the following %s text to English.

GUIDELINES:
1. Preserve all numbers, dates and measurements exactly.
2. Keep proper nouns (names, places) transliterated, not translated.
3. Use standard English equivalents for revenue terms (Khasra, Jamabandi, Patwari, Tehsil, Mauza, Intiqal).
4. Maintain document structure and line breaks.
5. Output only the translation, no explanations.

TEXT TO TRANSLATE:
%s

TRANSLATION:`

const continuationPrompt = `Continue translating this land record document to English. Previous source context:
%s

NEW TEXT TO TRANSLATE:
%s

TRANSLATION (consistent with previous terminology):`

// GeminiTranslator adapts the Gemini client to the translation capability
// contract, classifying transport and API failures into the pipeline's
// taxonomy.
type GeminiTranslator struct {
	client *gemini.Client
}

func NewGeminiTranslator(client *gemini.Client) *GeminiTranslator {
	return &GeminiTranslator{client: client}
}

func (t *GeminiTranslator) Translate(ctx context.Context, req Request) (string, error) {
	lang := req.SourceLang
	if lang == "" || lang == "unknown" || lang == "mixed" {
		lang = "Urdu or Hindi"
	}

	var prompt string
	if req.Context != "" {
		prompt = fmt.Sprintf(continuationPrompt, req.Context, req.Text)
	} else {
		prompt = fmt.Sprintf(translationPrompt, titled(lang), req.Text)
	}

	out, err := t.client.Generate(ctx, prompt)
	if err != nil {
		return "", Classify(err)
	}
	return strings.TrimSpace(out), nil
}

func titled(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Classify maps a raw capability error to the translate taxonomy.
func Classify(err error) error {
	var apiErr *gemini.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return NewError(KindQuota, err)
		case apiErr.StatusCode == http.StatusBadRequest:
			return NewError(KindMalformed, err)
		case apiErr.StatusCode == http.StatusRequestTimeout:
			return NewError(KindTimeout, err)
		default:
			return NewError(KindUnavailable, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(KindTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(KindTimeout, err)
	}
	return NewError(KindUnavailable, err)
}
