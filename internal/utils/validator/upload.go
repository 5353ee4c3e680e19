// Package validator checks uploaded record scans before they enter the
// pipeline: size limits, extension allow-list and sniffed MIME agreement.
package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/digibhoomi/record-translator/pkg/logger"
)

type UploadValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

type ValidatorConfig struct {
	// MaxFileSize in bytes.
	MaxFileSize int64
	// AllowedTypes maps extension to the MIME types it may sniff as.
	AllowedTypes map[string][]string
}

// ValidationResult carries the outcome plus file facts for logging and
// storage keys.
type ValidationResult struct {
	IsValid  bool              `json:"isValid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	FileInfo FileInfo          `json:"fileInfo"`
}

type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type FileInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Extension string `json:"extension"`
	Hash      string `json:"hash"`
}

func NewUploadValidator(log logger.Logger, config *ValidatorConfig) *UploadValidator {
	if config == nil {
		config = &ValidatorConfig{
			MaxFileSize: 20 * 1024 * 1024,
			AllowedTypes: map[string][]string{
				".pdf":  {"application/pdf"},
				".jpg":  {"image/jpeg"},
				".jpeg": {"image/jpeg"},
				".png":  {"image/png"},
				".tiff": {"image/tiff", "application/octet-stream"},
			},
		}
	}

	return &UploadValidator{
		logger: log,
		config: config,
	}
}

// ValidateFile checks one uploaded file. Validation failures land in the
// result; only I/O problems return an error.
func (v *UploadValidator) ValidateFile(file *multipart.FileHeader) (*ValidationResult, error) {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]ValidationError, 0),
		FileInfo: FileInfo{
			Filename:  file.Filename,
			Size:      file.Size,
			Extension: strings.ToLower(filepath.Ext(file.Filename)),
		},
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	hash, err := v.calculateHash(f)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}
	result.FileInfo.Hash = hash

	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("failed to reset file pointer: %w", err)
	}

	if errs := v.performBasicValidation(result.FileInfo); len(errs) > 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, errs...)
	}

	mimeType, err := v.detectMimeType(f)
	if err != nil {
		return nil, fmt.Errorf("failed to detect mime type: %w", err)
	}
	result.FileInfo.MimeType = mimeType

	if errs := v.validateMimeType(result.FileInfo); len(errs) > 0 {
		result.IsValid = false
		result.Errors = append(result.Errors, errs...)
	}

	if !result.IsValid {
		v.logger.Warn("upload rejected",
			logger.String("filename", file.Filename),
			logger.Any("errors", result.Errors),
		)
	}

	return result, nil
}

func (v *UploadValidator) performBasicValidation(fileInfo FileInfo) []ValidationError {
	var errors []ValidationError

	if fileInfo.Size > v.config.MaxFileSize {
		errors = append(errors, ValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum limit of %d bytes", v.config.MaxFileSize),
			Field:   "size",
		})
	}

	if _, ok := v.config.AllowedTypes[fileInfo.Extension]; !ok {
		errors = append(errors, ValidationError{
			Code:    "INVALID_FILE_TYPE",
			Message: fmt.Sprintf("File type %s is not allowed", fileInfo.Extension),
			Field:   "extension",
		})
	}

	return errors
}

func (v *UploadValidator) validateMimeType(fileInfo FileInfo) []ValidationError {
	allowedMimes, ok := v.config.AllowedTypes[fileInfo.Extension]
	if !ok {
		return []ValidationError{{
			Code:    "INVALID_FILE_TYPE",
			Message: "File type not allowed",
			Field:   "mimeType",
		}}
	}

	for _, mime := range allowedMimes {
		if mime == fileInfo.MimeType {
			return nil
		}
	}

	return []ValidationError{{
		Code:    "INVALID_MIME_TYPE",
		Message: fmt.Sprintf("Invalid MIME type %s for extension %s", fileInfo.MimeType, fileInfo.Extension),
		Field:   "mimeType",
	}}
}

// detectMimeType sniffs the first 512 bytes, the window http.DetectContentType
// inspects.
func (v *UploadValidator) detectMimeType(file multipart.File) (string, error) {
	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	if _, err := file.Seek(0, 0); err != nil {
		return "", err
	}

	return http.DetectContentType(buffer[:n]), nil
}

func (v *UploadValidator) calculateHash(file multipart.File) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
