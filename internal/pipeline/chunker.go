package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/digibhoomi/record-translator/internal/models"
)

// DefaultMaxChunkChars keeps chunks comfortably inside the translation
// capability's input limit while leaving room for the prompt.
const DefaultMaxChunkChars = 1200

// Plan splits rawText into ordered, bounded-size chunks. Sentences and lines
// are accumulated until adding the next one would exceed maxChunkChars; a
// chunk boundary never falls inside a word, and a single sentence longer than
// the limit becomes its own oversized chunk. Concatenating SourceText in
// SequenceIndex order reproduces rawText exactly, separators included.
func Plan(rawText string, maxChunkChars int) []models.Chunk {
	if rawText == "" {
		return nil
	}
	if maxChunkChars < 1 {
		maxChunkChars = DefaultMaxChunkChars
	}

	var chunks []models.Chunk
	var cur strings.Builder
	curLen := 0

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{
			SequenceIndex: len(chunks),
			SourceText:    cur.String(),
			Status:        models.ChunkPending,
		})
		cur.Reset()
		curLen = 0
	}

	for _, seg := range splitSegments(rawText) {
		segLen := utf8.RuneCountInString(seg)
		if curLen > 0 && curLen+segLen > maxChunkChars {
			flush()
		}
		cur.WriteString(seg)
		curLen += segLen
	}
	flush()

	return chunks
}

// sentence-terminal runes: Latin plus danda/double danda (Hindi) and the
// Urdu full stop.
func isSentenceTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '।', '॥', '۔':
		return true
	}
	return false
}

// splitSegments cuts text into sentence/line segments. Every segment keeps
// its own trailing separator, so the segments are an exact partition of the
// input and any grouping of consecutive segments reassembles losslessly.
func splitSegments(text string) []string {
	var segs []string
	var b strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		if r == '\n' {
			segs = append(segs, b.String())
			b.Reset()
			continue
		}
		if isSentenceTerminal(r) {
			// A terminal only ends a sentence when followed by whitespace or
			// end of input; "3.5" and "No.45" stay intact.
			if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\t' && runes[i+1] != '\n' {
				continue
			}
			for i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\t') {
				i++
				b.WriteRune(runes[i])
			}
			segs = append(segs, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		segs = append(segs, b.String())
	}
	return segs
}

// MergeTranslated concatenates per-chunk output strictly in SequenceIndex
// order. Chunks that never got a translation contribute their source text so
// the document stays position-consistent.
func MergeTranslated(chunks []models.Chunk) string {
	parts := make([]string, len(chunks))
	for _, ch := range chunks {
		text := ch.TranslatedText
		if ch.Status != models.ChunkTranslated {
			text = ch.SourceText
		}
		if ch.SequenceIndex >= 0 && ch.SequenceIndex < len(parts) {
			parts[ch.SequenceIndex] = text
		}
	}

	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), " ") && !strings.HasSuffix(b.String(), "\n") && !strings.HasPrefix(p, " ") && !strings.HasPrefix(p, "\n") {
			b.WriteString(" ")
		}
		b.WriteString(p)
	}
	return strings.TrimSpace(b.String())
}
