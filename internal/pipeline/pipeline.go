// Package pipeline implements the document translation and structuring
// pipeline: chunk planning, ordered per-chunk translation, terminology
// remapping, field extraction, summary generation and result assembly.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/digibhoomi/record-translator/internal/agent/summarize"
	"github.com/digibhoomi/record-translator/internal/agent/translate"
	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/metrics"
)

// Config carries every tunable the pipeline needs, injected at construction.
// Lexicon and rule table are loaded once and shared read-only across
// requests.
type Config struct {
	MaxChunkChars  int
	Concurrency    int
	ChunkTimeout   time.Duration
	SummaryTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.MaxChunkChars <= 0 {
		c.MaxChunkChars = DefaultMaxChunkChars
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.ChunkTimeout <= 0 {
		c.ChunkTimeout = 30 * time.Second
	}
	if c.SummaryTimeout <= 0 {
		c.SummaryTimeout = 30 * time.Second
	}
}

// Pipeline processes one document per Run call. It holds no per-request
// state, so a single instance serves concurrent requests.
type Pipeline struct {
	cfg        Config
	translator translate.Capability
	summarizer summarize.Capability
	lexicon    *Lexicon
	rules      *RuleTable
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// Option customizes pipeline construction.
type Option func(*Pipeline)

// WithLexicon replaces the default domain lexicon.
func WithLexicon(l *Lexicon) Option {
	return func(p *Pipeline) { p.lexicon = l }
}

// WithRuleTable replaces the default field extraction table.
func WithRuleTable(t *RuleTable) Option {
	return func(p *Pipeline) { p.rules = t }
}

// WithMetrics attaches Prometheus collectors to every stage.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

func New(cfg Config, translator translate.Capability, summarizer summarize.Capability, log logger.Logger, opts ...Option) *Pipeline {
	cfg.applyDefaults()
	p := &Pipeline{
		cfg:        cfg,
		translator: translator,
		summarizer: summarizer,
		lexicon:    DefaultLexicon(),
		rules:      DefaultRuleTable(),
		logger:     log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lexicon exposes the active domain vocabulary (read-only).
func (p *Pipeline) Lexicon() *Lexicon { return p.lexicon }

// Run translates the raw pages end to end and assembles the result.
// Observers receive coarse milestones; per-chunk and per-field failures are
// absorbed locally, and only ErrExtractionEmpty and ErrAllChunksFailed (or a
// caller cancellation) surface as request-level errors.
func (p *Pipeline) Run(ctx context.Context, pages []models.RawPage, observers ...Observer) (*models.TranslationResult, error) {
	startedAt := time.Now()
	var obs Observer = nopObserver{}
	if len(observers) > 0 {
		obs = multiObserver(observers)
	}

	obs.OnProgress(Progress{Phase: PhaseIngest, Percent: 5, Message: "extracting document text"})

	fullText := joinPages(pages)
	if strings.TrimSpace(fullText) == "" {
		if p.metrics != nil {
			p.metrics.DocumentsTotal.WithLabelValues("empty").Inc()
		}
		return nil, ErrExtractionEmpty
	}

	lang := DetectLanguage(fullText)
	chunks := Plan(fullText, p.cfg.MaxChunkChars)

	p.logger.Info("document planned",
		logger.Int("pages", len(pages)),
		logger.Int("chunks", len(chunks)),
		logger.Int("chars", len(fullText)),
		logger.String("language", lang),
	)

	obs.OnProgress(Progress{
		Phase:   PhaseTranslating,
		Percent: 10,
		Message: fmt.Sprintf("translating %d chunks", len(chunks)),
	})

	var elapsed time.Duration
	if lang == LangEnglish {
		// Already English: the text must pass through unchanged, so the
		// capability is never called. Term remap, field extraction and the
		// summary still run on it below.
		for i := range chunks {
			chunks[i].Status = models.ChunkTranslated
			chunks[i].TranslatedText = chunks[i].SourceText
		}
	} else {
		orchestrator := NewOrchestrator(p.translator, p.cfg.Concurrency, p.cfg.ChunkTimeout, lang, p.logger, obs)
		orchestrator.SetMetrics(p.metrics)
		var err error
		chunks, elapsed, err = orchestrator.TranslateAll(ctx, chunks)
		if err != nil {
			if p.metrics != nil {
				p.metrics.DocumentsTotal.WithLabelValues("failed").Inc()
			}
			return nil, err
		}
	}

	obs.OnProgress(Progress{Phase: PhaseStructuring, Percent: 92, Message: "structuring translated text"})

	// Remap terminology chunk by chunk; substitutions are local phrases, so
	// per-chunk application equals whole-document application and keeps the
	// chunk set consistent with the merged text.
	var applied []string
	seenTerms := map[string]bool{}
	for i := range chunks {
		if chunks[i].Status != models.ChunkTranslated {
			continue
		}
		remapped, terms := p.lexicon.remap(chunks[i].TranslatedText)
		chunks[i].TranslatedText = remapped
		for _, term := range terms {
			if !seenTerms[term] {
				seenTerms[term] = true
				applied = append(applied, term)
			}
		}
	}

	merged := MergeTranslated(chunks)
	fields := p.rules.Extract(CleanText(merged))
	summarizer := NewSummaryGenerator(p.summarizer, p.cfg.SummaryTimeout, p.logger)
	summarizer.SetMetrics(p.metrics)
	summary := summarizer.Summarize(ctx, merged, fields)

	result, err := Assemble(fullText, chunks, fields, summary, len(pages), startedAt)
	if err != nil {
		return nil, err
	}
	result.DetectedLanguage = lang
	result.DomainTermsApplied = applied

	p.logger.Info("document translated",
		logger.Int("chunksProcessed", result.ChunksProcessed),
		logger.Int64("processingMs", result.ProcessingTimeMS),
		logger.Duration("translationTime", elapsed),
		logger.Int("fieldsExtracted", len(fields)),
	)

	if p.metrics != nil {
		p.metrics.DocumentsTotal.WithLabelValues("completed").Inc()
		p.metrics.DocumentDuration.Observe(time.Since(startedAt).Seconds())
		p.metrics.DocumentPages.Observe(float64(len(pages)))
		p.metrics.FieldsExtracted.Observe(float64(len(fields)))
	}

	obs.OnProgress(Progress{Phase: PhaseComplete, Percent: 100, Message: "complete"})
	return result, nil
}

// joinPages concatenates per-page text, skipping pages the OCR collaborator
// could not read. Page markers only appear for multi-page documents; raw text
// input arrives as a single page and stays unmarked.
func joinPages(pages []models.RawPage) string {
	var nonEmpty []models.RawPage
	for _, page := range pages {
		if strings.TrimSpace(page.Text) != "" {
			nonEmpty = append(nonEmpty, page)
		}
	}
	if len(nonEmpty) == 1 && len(pages) == 1 {
		return nonEmpty[0].Text
	}

	parts := make([]string, 0, len(nonEmpty))
	for _, page := range nonEmpty {
		parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s", page.Index+1, page.Text))
	}
	return strings.Join(parts, "\n\n")
}
