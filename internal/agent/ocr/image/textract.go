package image

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/digibhoomi/record-translator/internal/models"
	"github.com/digibhoomi/record-translator/pkg/logger"
)

// TextractExtractor runs scanned images through AWS Textract. Land record
// scans are usually single images, so each call produces one page.
type TextractExtractor struct {
	client *textract.Client
	logger logger.Logger
	config *TextractConfig
}

type TextractConfig struct {
	Region        string
	AccessKey     string
	SecretKey     string
	MinConfidence float32
	EnableForm    bool
	FeatureTypes  []types.FeatureType
}

func NewTextractExtractor(ctx context.Context, cfg *TextractConfig, log logger.Logger) (*TextractExtractor, error) {
	creds := credentials.NewStaticCredentialsProvider(
		cfg.AccessKey,
		cfg.SecretKey,
		"",
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractExtractor{
		client: textract.NewFromConfig(awsCfg),
		logger: log,
		config: cfg,
	}, nil
}

func (e *TextractExtractor) CanProcess(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg", "image/png", "image/tiff":
		return true
	default:
		return false
	}
}

func (e *TextractExtractor) ExtractPages(ctx context.Context, reader io.Reader) ([]models.RawPage, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var blocks []types.Block
	if e.config.EnableForm {
		result, err := e.client.AnalyzeDocument(ctx, &textract.AnalyzeDocumentInput{
			Document:     &types.Document{Bytes: data},
			FeatureTypes: e.config.FeatureTypes,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to analyze document: %w", err)
		}
		blocks = result.Blocks
	} else {
		result, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
			Document: &types.Document{Bytes: data},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to detect document text: %w", err)
		}
		blocks = result.Blocks
	}

	lines := e.collectLines(blocks)
	e.logger.Debug("textract extracted",
		logger.Int("blocks", len(blocks)),
		logger.Int("lines", len(lines)),
	)

	return []models.RawPage{{Index: 0, Text: strings.Join(lines, "\n")}}, nil
}

func (e *TextractExtractor) Close() error {
	return nil
}

// collectLines keeps line blocks above the confidence floor, preserving
// reading order as returned by the API.
func (e *TextractExtractor) collectLines(blocks []types.Block) []string {
	var lines []string
	for _, block := range blocks {
		if block.BlockType == types.BlockTypeLine &&
			block.Confidence != nil &&
			*block.Confidence >= e.config.MinConfidence &&
			block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}
	return lines
}
