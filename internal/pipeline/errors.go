package pipeline

import "errors"

var (
	// ErrExtractionEmpty means the OCR collaborator produced no usable text
	// for any page. There is nothing to translate, so the whole request fails.
	ErrExtractionEmpty = errors.New("no text could be extracted from the document")

	// ErrAllChunksFailed means every chunk translation failed. A document with
	// zero translated chunks is reported as an error, never as an empty success.
	ErrAllChunksFailed = errors.New("translation failed for every chunk")
)
