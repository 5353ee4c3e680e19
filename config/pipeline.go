package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/digibhoomi/record-translator/internal/pipeline"
)

// PipelineConfig is the YAML-tunable half of the service: chunking and
// concurrency limits plus optional overrides for the domain lexicon and the
// field extraction table. Everything has a working default, so the file is
// optional.
type PipelineConfig struct {
	// MaxChunkChars caps a translation chunk in characters.
	MaxChunkChars int `yaml:"maxChunkChars"`

	// MaxDocumentBytes rejects uploads above this size.
	MaxDocumentBytes int64 `yaml:"maxDocumentBytes"`

	// Concurrency bounds simultaneous translation calls per document.
	Concurrency int `yaml:"concurrency"`

	// ChunkTimeout bounds one chunk translation including retries.
	ChunkTimeout Duration `yaml:"chunkTimeout"`

	// SummaryTimeout bounds the summary call.
	SummaryTimeout Duration `yaml:"summaryTimeout"`

	// Lexicon replaces the built-in terminology mappings when non-empty.
	Lexicon []pipeline.TermMapping `yaml:"lexicon"`

	// FieldRules replaces the built-in extraction patterns when non-empty.
	FieldRules []pipeline.FieldRulePattern `yaml:"fieldRules"`
}

// DefaultPipelineConfig returns the config used when no file is given.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		MaxChunkChars:    pipeline.DefaultMaxChunkChars,
		MaxDocumentBytes: 20 << 20,
		Concurrency:      4,
		ChunkTimeout:     Duration(30 * time.Second),
		SummaryTimeout:   Duration(30 * time.Second),
	}
}

// LoadPipelineConfig reads path and overlays it on the defaults. An empty
// path returns the defaults untouched.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}

	// Fail at startup on a bad pattern, not on the first request.
	if _, err := cfg.RuleTable(); err != nil {
		return nil, fmt.Errorf("compile field rules: %w", err)
	}
	return cfg, nil
}

// RuleTable compiles the configured field rules, or returns the defaults.
func (c *PipelineConfig) RuleTable() (*pipeline.RuleTable, error) {
	if len(c.FieldRules) == 0 {
		return pipeline.DefaultRuleTable(), nil
	}
	return pipeline.CompileRules(c.FieldRules)
}

// BuildLexicon returns the configured lexicon, or the defaults.
func (c *PipelineConfig) BuildLexicon() *pipeline.Lexicon {
	if len(c.Lexicon) == 0 {
		return pipeline.DefaultLexicon()
	}
	return pipeline.NewLexicon(c.Lexicon)
}
