package translation

import (
	"context"
	"fmt"
	"os"
	"time"

	cfg "github.com/digibhoomi/record-translator/config"
	"github.com/digibhoomi/record-translator/internal/agent/gemini"
	"github.com/digibhoomi/record-translator/internal/agent/ocr"
	ocrimage "github.com/digibhoomi/record-translator/internal/agent/ocr/image"
	ocrpdf "github.com/digibhoomi/record-translator/internal/agent/ocr/pdf"
	"github.com/digibhoomi/record-translator/internal/agent/summarize"
	"github.com/digibhoomi/record-translator/internal/agent/translate"
	"github.com/digibhoomi/record-translator/internal/pipeline"
	"github.com/digibhoomi/record-translator/internal/utils/validator"
	"github.com/digibhoomi/record-translator/pkg/logger"
	"github.com/digibhoomi/record-translator/pkg/metrics"
	"github.com/digibhoomi/record-translator/pkg/queue"
	"github.com/digibhoomi/record-translator/pkg/storage"
)

// GetService wires the full service from environment and file config. Used
// by both the API server and the worker binary.
func GetService(log logger.Logger, m *metrics.Metrics) (Service, error) {
	pipeCfg, err := cfg.LoadPipelineConfig(os.Getenv("PIPELINE_CONFIG"))
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline config: %w", err)
	}

	geminiCfg := cfg.GetGeminiConfig()
	client, err := gemini.NewClient(gemini.Config{
		APIKey:            geminiCfg.APIKey,
		Model:             geminiCfg.Model,
		Endpoint:          geminiCfg.Endpoint,
		Temperature:       geminiCfg.Temperature,
		MaxOutputTokens:   geminiCfg.MaxOutputTokens,
		RequestTimeout:    geminiCfg.RequestTimeout,
		MaxRetries:        geminiCfg.MaxRetries,
		RequestsPerSecond: geminiCfg.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	rules, err := pipeCfg.RuleTable()
	if err != nil {
		return nil, fmt.Errorf("failed to compile field rules: %w", err)
	}

	pipe := pipeline.New(
		pipeline.Config{
			MaxChunkChars:  pipeCfg.MaxChunkChars,
			Concurrency:    pipeCfg.Concurrency,
			ChunkTimeout:   pipeCfg.ChunkTimeout.Std(),
			SummaryTimeout: pipeCfg.SummaryTimeout.Std(),
		},
		translate.NewGeminiTranslator(client),
		summarize.NewGeminiSummarizer(client),
		log,
		pipeline.WithLexicon(pipeCfg.BuildLexicon()),
		pipeline.WithRuleTable(rules),
		pipeline.WithMetrics(m),
	)

	registry, err := buildRegistry(log)
	if err != nil {
		return nil, err
	}

	redisCfg := cfg.GetRedisConfig()
	q, err := queue.NewAsynqQueue(&queue.QueueConfig{
		RedisAddr:     redisCfg.Addr,
		RedisPassword: redisCfg.Password,
		RedisDB:       redisCfg.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize queue: %w", err)
	}
	if m != nil {
		go q.WatchDepth(context.Background(), m.QueueDepth, 30*time.Second)
	}

	backend := storage.StorageType(os.Getenv("STORAGE_BACKEND"))
	if backend == "" {
		backend = storage.StorageTypeMinio
	}
	store, err := storage.NewStorage(backend, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	uploadValidator := validator.NewUploadValidator(log, &validator.ValidatorConfig{
		MaxFileSize: pipeCfg.MaxDocumentBytes,
		AllowedTypes: map[string][]string{
			".pdf":  {"application/pdf"},
			".jpg":  {"image/jpeg"},
			".jpeg": {"image/jpeg"},
			".png":  {"image/png"},
			".tiff": {"image/tiff", "application/octet-stream"},
		},
	})

	return NewService(registry, pipe, uploadValidator, q, store, log, nil), nil
}

// buildRegistry registers the PDF extractor plus an image OCR engine:
// Textract when AWS credentials are present, local Tesseract otherwise.
func buildRegistry(log logger.Logger) (*ocr.Registry, error) {
	registry := ocr.NewRegistry(log)
	registry.Register(ocrpdf.NewExtractor(log))

	textractCfg := cfg.GetTextractConfig()
	if textractCfg.AccessKey != "" && textractCfg.SecretKey != "" {
		extractor, err := ocrimage.NewTextractExtractor(context.Background(), &ocrimage.TextractConfig{
			Region:        textractCfg.Region,
			AccessKey:     textractCfg.AccessKey,
			SecretKey:     textractCfg.SecretKey,
			MinConfidence: 80.0,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create textract extractor: %w", err)
		}
		registry.Register(extractor)
	} else {
		registry.Register(ocrimage.NewTesseractExtractor(log, nil))
	}

	return registry, nil
}
