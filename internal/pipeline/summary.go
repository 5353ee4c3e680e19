package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/digibhoomi/record-translator/internal/agent/summarize"
	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/metrics"
)

const (
	// DefaultSummaryInputChars bounds what is sent to the capability.
	DefaultSummaryInputChars = 6000
	// DefaultSummaryOutputChars bounds what comes back.
	DefaultSummaryOutputChars = 600
)

// SummaryGenerator shapes input for the summarization capability and bounds
// its output. The capability itself is a black box; when it fails or is
// absent, the summary degrades to a field-derived synopsis rather than
// failing the document.
type SummaryGenerator struct {
	capability summarize.Capability
	maxInput   int
	maxOutput  int
	timeout    time.Duration
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// SetMetrics attaches an optional counter for fallback summaries.
func (s *SummaryGenerator) SetMetrics(m *metrics.Metrics) {
	s.metrics = m
}

func NewSummaryGenerator(capability summarize.Capability, timeout time.Duration, log logger.Logger) *SummaryGenerator {
	return &SummaryGenerator{
		capability: capability,
		maxInput:   DefaultSummaryInputChars,
		maxOutput:  DefaultSummaryOutputChars,
		timeout:    timeout,
		logger:     log,
	}
}

// Summarize produces a short synopsis of translated. Empty input yields an
// empty summary.
func (s *SummaryGenerator) Summarize(ctx context.Context, translated string, fields models.ExtractedFields) string {
	if strings.TrimSpace(translated) == "" {
		return ""
	}

	if s.capability != nil {
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}
		out, err := s.capability.Summarize(ctx, truncateAtWord(translated, s.maxInput))
		if err == nil {
			out = strings.TrimSpace(out)
			if out != "" {
				return truncateAtWord(out, s.maxOutput)
			}
		} else {
			s.logger.Warn("summarization capability failed, falling back to field synopsis", logger.Error(err))
		}
	}

	if s.metrics != nil {
		s.metrics.SummaryFallbackTotal.Inc()
	}
	return FieldSynopsis(fields)
}

// FieldSynopsis builds a deterministic one-line summary from extracted
// fields, first value per field.
func FieldSynopsis(fields models.ExtractedFields) string {
	var parts []string
	if v, ok := fields[models.FieldSurveyNumber]; ok {
		parts = append(parts, fmt.Sprintf("Survey/Khasra: %s", v[0]))
	}
	if v, ok := fields[models.FieldOwnerName]; ok {
		parts = append(parts, fmt.Sprintf("Owner: %s", v[0]))
	}
	if v, ok := fields[models.FieldVillage]; ok {
		location := []string{v[0]}
		if t, ok := fields[models.FieldTehsil]; ok {
			location = append(location, t[0])
		}
		if d, ok := fields[models.FieldDistrict]; ok {
			location = append(location, d[0])
		}
		parts = append(parts, fmt.Sprintf("Location: %s", strings.Join(location, ", ")))
	}
	if v, ok := fields[models.FieldArea]; ok {
		parts = append(parts, fmt.Sprintf("Area: %s", v[0]))
	}
	if len(parts) == 0 {
		return "Land record document"
	}
	return strings.Join(parts, " | ")
}

// truncateAtWord cuts s to at most max runes without splitting a word.
func truncateAtWord(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := max
	for cut > 0 && !isSpaceRune(runes[cut-1]) && cut < len(runes) && !isSpaceRune(runes[cut]) {
		cut--
	}
	if cut == 0 {
		cut = max
	}
	return strings.TrimSpace(string(runes[:cut]))
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
