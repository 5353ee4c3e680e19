// Package image extracts text from scanned record images, either locally via
// Tesseract or through AWS Textract.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
)

// TesseractExtractor is the offline fallback when Textract credentials are
// absent. Land records mix Urdu, Hindi and English, so all three traineddata
// sets are loaded.
type TesseractExtractor struct {
	logger        logger.Logger
	preprocessors []Preprocessor
	config        *TesseractConfig
}

type TesseractConfig struct {
	Languages     []string
	PageSegMode   gosseract.PageSegMode
	MinConfidence float64
}

func NewTesseractExtractor(log logger.Logger, cfg *TesseractConfig) *TesseractExtractor {
	if cfg == nil {
		cfg = &TesseractConfig{
			Languages:     []string{"urd", "hin", "eng"},
			PageSegMode:   gosseract.PSM_AUTO,
			MinConfidence: 60.0,
		}
	}

	return &TesseractExtractor{
		logger: log,
		preprocessors: []Preprocessor{
			NewGrayscaleProcessor(),
			NewDenoiseProcessor(0.5),
			NewContrastNormalizationProcessor(),
			NewSharpenProcessor(0.5),
		},
		config: cfg,
	}
}

func (e *TesseractExtractor) CanProcess(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/jpg", "image/png", "image/tiff":
		return true
	default:
		return false
	}
}

func (e *TesseractExtractor) ExtractPages(ctx context.Context, file io.Reader) ([]models.RawPage, error) {
	// gosseract clients are not safe for concurrent use, one per call.
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(strings.Join(e.config.Languages, "+")); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(e.config.PageSegMode); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	processed, err := e.applyPreprocessing(img)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess image: %w", err)
	}

	text, confidence, err := e.recognize(processed, client)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("tesseract extracted",
		logger.Int("chars", len(text)),
		logger.Float64("confidence", confidence),
	)

	return []models.RawPage{{Index: 0, Text: text}}, nil
}

func (e *TesseractExtractor) Close() error {
	return nil
}

func (e *TesseractExtractor) applyPreprocessing(img image.Image) (image.Image, error) {
	result := img
	var err error
	for _, p := range e.preprocessors {
		result, err = p.Process(result)
		if err != nil {
			return nil, fmt.Errorf("preprocessing failed: %w", err)
		}
	}
	return result, nil
}

func (e *TesseractExtractor) recognize(img image.Image, client *gosseract.Client) (string, float64, error) {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 100}); err != nil {
		return "", 0, fmt.Errorf("failed to encode image: %w", err)
	}

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to get text: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		e.logger.Warn("failed to get bounding boxes", logger.Error(err))
		return text, 0, nil
	}

	var total float64
	var valid int
	for _, box := range boxes {
		if box.Confidence >= e.config.MinConfidence {
			total += box.Confidence
			valid++
		}
	}
	avg := 0.0
	if valid > 0 {
		avg = total / float64(valid)
	}
	return text, avg, nil
}
