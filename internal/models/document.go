package models

import (
	"time"
)

// ChunkStatus tracks the translation state of a single chunk.
type ChunkStatus string

const (
	ChunkPending    ChunkStatus = "pending"
	ChunkTranslated ChunkStatus = "translated"
	ChunkFailed     ChunkStatus = "failed"
)

// Chunk is a bounded-size unit of source text submitted to the translation
// capability. SequenceIndex defines reassembly order and never changes after
// planning; concatenating SourceText in SequenceIndex order reproduces the
// planner input exactly.
type Chunk struct {
	SequenceIndex  int         `json:"sequenceIndex"`
	SourceText     string      `json:"sourceText"`
	TranslatedText string      `json:"translatedText,omitempty"`
	Status         ChunkStatus `json:"status"`
	FailReason     string      `json:"failReason,omitempty"`
}

// RawPage is the per-page text handed over by an OCR collaborator. Text may
// be empty when extraction failed for that page.
type RawPage struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ExtractedFields maps a field name from the fixed vocabulary to the values
// found for it, in order of appearance. A field with no match is omitted
// entirely rather than carried as an empty value.
type ExtractedFields map[string][]string

// Canonical field vocabulary for structured extraction.
const (
	FieldSurveyNumber       = "survey_number"
	FieldOwnerName          = "owner_name"
	FieldFatherName         = "father_name"
	FieldVillage            = "village"
	FieldTehsil             = "tehsil"
	FieldDistrict           = "district"
	FieldState              = "state"
	FieldArea               = "area"
	FieldLandType           = "land_type"
	FieldRevenue            = "revenue"
	FieldDate               = "date"
	FieldRegistrationNumber = "registration_number"
)

// TranslationResult is the externally visible artifact of one pipeline run.
// It is created once by the assembler and never mutated afterwards.
type TranslationResult struct {
	OriginalText       string          `json:"original_text"`
	TranslatedText     string          `json:"translated_text"`
	PagesProcessed     int             `json:"pages_processed"`
	ChunksProcessed    int             `json:"chunks_processed"`
	ProcessingTimeMS   int64           `json:"processing_time_ms"`
	ExtractedFields    ExtractedFields `json:"extracted_fields,omitempty"`
	Summary            string          `json:"summary,omitempty"`
	DetectedLanguage   string          `json:"detected_language,omitempty"`
	DomainTermsApplied []string        `json:"domain_terms_applied,omitempty"`
}

type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusRunning   ProcessingStatus = "running"
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
	StatusCancelled ProcessingStatus = "cancelled"
)

// ProcessingTask describes a queued document translation.
type ProcessingTask struct {
	ID        string            `json:"id"`
	Status    ProcessingStatus  `json:"status"`
	Type      string            `json:"type"`
	Priority  int               `json:"priority"`
	Progress  float64           `json:"progress"`
	Phase     string            `json:"phase,omitempty"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt,omitempty"`
}
