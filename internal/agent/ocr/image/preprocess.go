package image

import (
	"image"

	"github.com/disintegration/imaging"
)

// Preprocessor is one stage of the image cleanup pipeline run before OCR.
type Preprocessor interface {
	Process(img image.Image) (image.Image, error)
}

type GrayscaleProcessor struct{}

func NewGrayscaleProcessor() *GrayscaleProcessor {
	return &GrayscaleProcessor{}
}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

// DenoiseProcessor smooths scanner noise with a light gaussian blur.
type DenoiseProcessor struct {
	strength float64
}

func NewDenoiseProcessor(strength float64) *DenoiseProcessor {
	return &DenoiseProcessor{strength: strength}
}

func (p *DenoiseProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Blur(img, p.strength), nil
}

type SharpenProcessor struct {
	strength float64
}

func NewSharpenProcessor(strength float64) *SharpenProcessor {
	return &SharpenProcessor{strength: strength}
}

func (p *SharpenProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Sharpen(img, p.strength), nil
}

// ContrastNormalizationProcessor lifts faded stamp and manuscript ink before
// recognition.
type ContrastNormalizationProcessor struct{}

func NewContrastNormalizationProcessor() *ContrastNormalizationProcessor {
	return &ContrastNormalizationProcessor{}
}

func (p *ContrastNormalizationProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, 20), nil
}
