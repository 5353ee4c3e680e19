package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digibhoomi/record-translator/internal/agent/translate"
	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
)

// echoTranslator pretends the document is already English and returns the
// source text, so assertions can target deterministic output.
func echoTranslator() *stubTranslator {
	return &stubTranslator{
		fn: func(req translate.Request) (string, error) { return req.Text, nil },
	}
}

func newTestPipeline(t *testing.T, translator translate.Capability, opts ...Option) *Pipeline {
	t.Helper()
	return New(
		Config{Concurrency: 2},
		translator,
		&stubSummarizer{out: "A short synopsis."},
		logger.NewTestLogger(),
		opts...,
	)
}

func TestPipeline_Run(t *testing.T) {
	p := newTestPipeline(t, echoTranslator())

	pages := []models.RawPage{
		{Index: 0, Text: "Survey No. 45, Owner: Ram Lal, Village: Atmapur."},
	}
	result, err := p.Run(context.Background(), pages)
	require.NoError(t, err)

	assert.Equal(t, pages[0].Text, result.OriginalText)
	assert.Equal(t, pages[0].Text, result.TranslatedText)
	assert.Equal(t, 1, result.PagesProcessed)
	assert.Equal(t, 1, result.ChunksProcessed)
	assert.Equal(t, LangEnglish, result.DetectedLanguage)
	assert.Equal(t, "A short synopsis.", result.Summary)
	assert.Equal(t, []string{"45"}, result.ExtractedFields[models.FieldSurveyNumber])
	assert.Equal(t, []string{"Ram Lal"}, result.ExtractedFields[models.FieldOwnerName])
	assert.Equal(t, []string{"Atmapur"}, result.ExtractedFields[models.FieldVillage])
}

func TestPipeline_RunEmptyDocument(t *testing.T) {
	p := newTestPipeline(t, echoTranslator())

	_, err := p.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrExtractionEmpty)

	_, err = p.Run(context.Background(), []models.RawPage{{Index: 0, Text: "   \n "}})
	assert.ErrorIs(t, err, ErrExtractionEmpty)
}

func TestPipeline_RunAllChunksFailed(t *testing.T) {
	broken := &stubTranslator{
		fn: func(translate.Request) (string, error) {
			return "", translate.NewError(translate.KindUnavailable, errors.New("down"))
		},
	}
	p := newTestPipeline(t, broken)

	_, err := p.Run(context.Background(), []models.RawPage{{Index: 0, Text: "कुछ पाठ यहाँ है।"}})
	assert.ErrorIs(t, err, ErrAllChunksFailed)
}

func TestPipeline_RunPartialFailureStillSucceeds(t *testing.T) {
	flaky := &stubTranslator{
		fn: func(req translate.Request) (string, error) {
			if strings.Contains(req.Text, "दूसरा") {
				return "", translate.NewError(translate.KindTimeout, errors.New("slow"))
			}
			return "translated: " + req.Text, nil
		},
	}
	p := New(Config{MaxChunkChars: 10, Concurrency: 2}, flaky, &stubSummarizer{out: "s"}, logger.NewTestLogger())

	pages := []models.RawPage{{Index: 0, Text: "पहला वाक्य यहाँ है। दूसरा वाक्य यहाँ है। तीसरा वाक्य यहाँ है।"}}
	result, err := p.Run(context.Background(), pages)
	require.NoError(t, err)

	// The failed chunk contributes its source text; the rest translate.
	assert.Equal(t, 3, result.ChunksProcessed)
	assert.Contains(t, result.TranslatedText, "दूसरा वाक्य यहाँ है।")
	assert.Contains(t, result.TranslatedText, "translated:")
}

func TestPipeline_EnglishSkipsCapability(t *testing.T) {
	stub := &stubTranslator{
		fn: func(translate.Request) (string, error) {
			return "reworded by the model", nil
		},
	}
	p := New(Config{MaxChunkChars: 25, Concurrency: 2}, stub, &stubSummarizer{out: "s"}, logger.NewTestLogger())

	text := "Plot number 45 recorded. Owner: Ram Lal. Village: Atmapur."
	result, err := p.Run(context.Background(), []models.RawPage{{Index: 0, Text: text}})
	require.NoError(t, err)

	// English documents pass through; the capability never runs. Only the
	// lexicon touches the text.
	assert.Empty(t, stub.Requests())
	assert.Equal(t, LangEnglish, result.DetectedLanguage)
	assert.Equal(t, "Khasra number 45 recorded. Owner: Ram Lal. Village: Atmapur.", result.TranslatedText)
	assert.Equal(t, 3, result.ChunksProcessed)
	// Structuring still applies to the passed-through text.
	assert.Equal(t, []string{"Ram Lal"}, result.ExtractedFields[models.FieldOwnerName])
	assert.Contains(t, result.DomainTermsApplied, "Khasra number")
}

func TestPipeline_PageMarkers(t *testing.T) {
	p := newTestPipeline(t, echoTranslator())

	t.Run("single page stays unmarked", func(t *testing.T) {
		result, err := p.Run(context.Background(), []models.RawPage{{Index: 0, Text: "only page text."}})
		require.NoError(t, err)
		assert.NotContains(t, result.OriginalText, "--- Page")
	})

	t.Run("multi page gets markers", func(t *testing.T) {
		pages := []models.RawPage{
			{Index: 0, Text: "first page."},
			{Index: 1, Text: "second page."},
		}
		result, err := p.Run(context.Background(), pages)
		require.NoError(t, err)
		assert.Contains(t, result.OriginalText, "--- Page 1 ---")
		assert.Contains(t, result.OriginalText, "--- Page 2 ---")
		assert.Equal(t, 2, result.PagesProcessed)
	})

	t.Run("unreadable pages skipped", func(t *testing.T) {
		pages := []models.RawPage{
			{Index: 0, Text: "first page."},
			{Index: 1, Text: ""},
			{Index: 2, Text: "third page."},
		}
		result, err := p.Run(context.Background(), pages)
		require.NoError(t, err)
		assert.Contains(t, result.OriginalText, "--- Page 1 ---")
		assert.NotContains(t, result.OriginalText, "--- Page 2 ---")
		assert.Contains(t, result.OriginalText, "--- Page 3 ---")
	})
}

func TestPipeline_DomainTermsApplied(t *testing.T) {
	// The capability renders generic English; the lexicon canonicalizes it.
	generic := &stubTranslator{
		fn: func(translate.Request) (string, error) {
			return "The record of rights lists plot number 45.", nil
		},
	}
	p := newTestPipeline(t, generic)

	result, err := p.Run(context.Background(), []models.RawPage{{Index: 0, Text: "जमाबंदी में खसरा 45 दर्ज है।"}})
	require.NoError(t, err)

	assert.Equal(t, "The Jamabandi lists Khasra number 45.", result.TranslatedText)
	assert.Equal(t, []string{"Jamabandi", "Khasra number"}, result.DomainTermsApplied)
	assert.Equal(t, LangHindi, result.DetectedLanguage)
}

func TestPipeline_ProgressMilestones(t *testing.T) {
	var mu sync.Mutex
	var events []Progress
	obs := ObserverFunc(func(p Progress) {
		mu.Lock()
		events = append(events, p)
		mu.Unlock()
	})

	p := newTestPipeline(t, echoTranslator())
	_, err := p.Run(context.Background(), []models.RawPage{{Index: 0, Text: "one short document."}}, obs)
	require.NoError(t, err)

	require.NotEmpty(t, events)
	assert.Equal(t, PhaseIngest, events[0].Phase)
	assert.Equal(t, PhaseComplete, events[len(events)-1].Phase)
	assert.Equal(t, 100, events[len(events)-1].Percent)

	var phases []Phase
	for _, e := range events {
		phases = append(phases, e.Phase)
	}
	assert.Contains(t, phases, PhaseTranslating)
	assert.Contains(t, phases, PhaseStructuring)
}

func TestPipeline_CustomLexiconAndRules(t *testing.T) {
	lex := NewLexicon([]TermMapping{{From: "field holder", To: "Khatedar"}})
	rules := NewRuleTable(nil)

	p := newTestPipeline(t, echoTranslator(), WithLexicon(lex), WithRuleTable(rules))

	result, err := p.Run(context.Background(), []models.RawPage{{Index: 0, Text: "the field holder appeared."}})
	require.NoError(t, err)

	assert.Equal(t, "the Khatedar appeared.", result.TranslatedText)
	assert.Empty(t, result.ExtractedFields)
	assert.Equal(t, []string{"Khatedar"}, result.DomainTermsApplied)
}
