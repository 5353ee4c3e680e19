package pipeline

import (
	"fmt"
	"time"

	"github.com/digibhoomi/record-translator/internal/models"
)

// Assemble composes the final TranslationResult. The translated document is
// the per-chunk output concatenated in SequenceIndex order, with untranslated
// chunks contributing their original-language text as placeholders.
// ChunksProcessed counts every chunk that was attempted (status != pending).
// The result is fully populated or an error; Assemble never hands back a
// half-built artifact.
func Assemble(
	originalText string,
	chunks []models.Chunk,
	fields models.ExtractedFields,
	summary string,
	pagesProcessed int,
	startedAt time.Time,
) (*models.TranslationResult, error) {
	if startedAt.IsZero() {
		return nil, fmt.Errorf("assemble: start time not set")
	}
	if pagesProcessed < 0 {
		return nil, fmt.Errorf("assemble: negative page count %d", pagesProcessed)
	}
	for i, ch := range chunks {
		if ch.SequenceIndex < 0 || ch.SequenceIndex >= len(chunks) {
			return nil, fmt.Errorf("assemble: chunk %d has out-of-range sequence index %d", i, ch.SequenceIndex)
		}
	}

	processed := 0
	for _, ch := range chunks {
		if ch.Status != models.ChunkPending {
			processed++
		}
	}

	return &models.TranslationResult{
		OriginalText:     originalText,
		TranslatedText:   MergeTranslated(chunks),
		PagesProcessed:   pagesProcessed,
		ChunksProcessed:  processed,
		ProcessingTimeMS: time.Since(startedAt).Milliseconds(),
		ExtractedFields:  fields,
		Summary:          summary,
	}, nil
}
