// Package pdf extracts page text from digital PDFs.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
)

const maxWorkers = 4

type Extractor struct {
	logger logger.Logger
}

func NewExtractor(log logger.Logger) *Extractor {
	return &Extractor{
		logger: log,
	}
}

func (e *Extractor) CanProcess(mimeType string) bool {
	return mimeType == "application/pdf"
}

// ExtractPages reads every page in parallel. Pages are written into an
// indexed slice so document order survives the fan-out; unreadable pages are
// logged and left empty.
func (e *Extractor) ExtractPages(ctx context.Context, file io.Reader) ([]models.RawPage, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	// pdf.NewReader needs io.ReaderAt, so the document is held in memory.
	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]models.RawPage, numPages)

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			slot := &pages[pageNum-1]
			slot.Index = pageNum - 1

			page := pdfReader.Page(pageNum)
			if page.V.IsNull() {
				return nil
			}

			text, err := page.GetPlainText(nil)
			if err != nil {
				e.logger.Warn("page unreadable",
					logger.Int("page", pageNum),
					logger.Error(err),
				)
				return nil
			}
			slot.Text = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pages, nil
}

func (e *Extractor) Close() error {
	return nil
}
