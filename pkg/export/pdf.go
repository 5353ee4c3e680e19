package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/digibhoomi/record-translator/internal/models"
)

const originalAppendixLimit = 3000

// PDFRenderer lays out a translation result as a printable report: header,
// extracted field table, summary, translated text and a truncated appendix
// with the original.
type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render produces the PDF bytes for a result.
func (r *PDFRenderer) Render(result *models.TranslationResult, filename string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Land Record Translation", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	meta := fmt.Sprintf("Source: %s | Language: %s | Pages: %d | Chunks: %d | Generated: %s",
		orDash(filename),
		orDash(result.DetectedLanguage),
		result.PagesProcessed,
		result.ChunksProcessed,
		time.Now().UTC().Format("2006-01-02 15:04 UTC"),
	)
	pdf.CellFormat(0, 6, sanitize(meta), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	r.renderFields(pdf, result.ExtractedFields)

	if result.Summary != "" {
		r.sectionTitle(pdf, "Summary")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, sanitize(result.Summary), "", "L", false)
		pdf.Ln(4)
	}

	r.sectionTitle(pdf, "Translated Text")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, sanitize(result.TranslatedText), "", "L", false)
	pdf.Ln(4)

	if result.OriginalText != "" {
		original := result.OriginalText
		if len(original) > originalAppendixLimit {
			original = original[:originalAppendixLimit] + "\n[... truncated ...]"
		}
		r.sectionTitle(pdf, "Original Text (excerpt)")
		pdf.SetFont("Helvetica", "", 8)
		pdf.MultiCell(0, 4, sanitize(original), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *PDFRenderer) renderFields(pdf *gofpdf.Fpdf, fields models.ExtractedFields) {
	if len(fields) == 0 {
		return
	}

	r.sectionTitle(pdf, "Extracted Fields")
	pdf.SetFont("Helvetica", "", 10)

	for _, field := range FieldOrder {
		values, ok := fields[field]
		if !ok || len(values) == 0 {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, sanitize(Label(field)), "1", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, sanitize(strings.Join(values, ", ")), "1", "L", false)
	}
	pdf.Ln(4)
}

func (r *PDFRenderer) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

// sanitize keeps output inside the core font's latin range. Non-latin script
// from the original document is replaced rather than rendered as garbage.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || (r >= 32 && r < 256) {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
