// Package ocr extracts per-page text from uploaded documents. Extractors are
// registered by MIME type; callers resolve one by file extension.
package ocr

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
)

// PageExtractor pulls raw page text out of one document format.
type PageExtractor interface {
	// CanProcess reports whether the extractor handles the MIME type.
	CanProcess(mimeType string) bool

	// ExtractPages returns the document pages in order. Pages the engine
	// cannot read come back with empty text rather than failing the call.
	ExtractPages(ctx context.Context, reader io.Reader) ([]models.RawPage, error)

	// Close releases engine resources.
	Close() error
}

var extToMIME = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".tiff": "image/tiff",
	".pdf":  "application/pdf",
}

// MIMEForExtension resolves a file extension to its MIME type.
func MIMEForExtension(ext string) (string, bool) {
	mime, ok := extToMIME[strings.ToLower(ext)]
	return mime, ok
}

// Registry maps MIME types to extractors.
type Registry struct {
	extractors map[string]PageExtractor
	logger     logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		extractors: make(map[string]PageExtractor),
		logger:     log,
	}
}

// Register binds extractor to every MIME type it can process.
func (r *Registry) Register(extractor PageExtractor) {
	for _, mime := range extToMIME {
		if extractor.CanProcess(mime) {
			r.extractors[mime] = extractor
		}
	}
}

// ForFile returns the extractor for a file extension such as ".pdf".
func (r *Registry) ForFile(ext string) (PageExtractor, error) {
	mime, ok := MIMEForExtension(ext)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}

	extractor, ok := r.extractors[mime]
	if !ok {
		r.logger.Error("no extractor registered",
			logger.String("mimeType", mime),
		)
		return nil, fmt.Errorf("no extractor registered for mime type: %s", mime)
	}
	return extractor, nil
}

// Close shuts down every registered extractor.
func (r *Registry) Close() error {
	seen := make(map[PageExtractor]bool)
	var firstErr error
	for _, e := range r.extractors {
		if seen[e] {
			continue
		}
		seen[e] = true
		if err := e.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
