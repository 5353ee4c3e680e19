package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/digibhoomi/record-translator/internal/pipeline"
	"github.com/digibhoomi/record-translator/internal/service/translation"
	"github.com/digibhoomi/record-translator/pkg/export"
	"github.com/digibhoomi/record-translator/pkg/logger"
)

// TranslationHandler exposes the translation service over HTTP. Every JSON
// response uses the {success, data, error} envelope.
type TranslationHandler struct {
	service  translation.Service
	renderer *export.PDFRenderer
	logger   logger.Logger
}

func NewTranslationHandler(service translation.Service, log logger.Logger) *TranslationHandler {
	return &TranslationHandler{
		service:  service,
		renderer: export.NewPDFRenderer(),
		logger:   log,
	}
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

// TranslateDocument handles the synchronous upload path. output_format=pdf
// returns a rendered report instead of JSON.
func (h *TranslationHandler) TranslateDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "No file provided", err)
		return
	}
	defer file.Close()

	outputFormat := strings.ToLower(c.DefaultPostForm("output_format", "text"))
	if outputFormat != "text" && outputFormat != "pdf" {
		h.respondError(c, http.StatusBadRequest, fmt.Sprintf("Unsupported output format: %s", outputFormat), nil)
		return
	}

	result, err := h.service.TranslateUpload(c.Request.Context(), file, header, translation.RequestOptions{})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if outputFormat == "pdf" {
		pdfBytes, err := h.renderer.Render(result, header.Filename)
		if err != nil {
			h.respondError(c, http.StatusInternalServerError, "Failed to render PDF", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=translated_%s.pdf", strings.TrimSuffix(header.Filename, ".pdf")))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// TranslateText handles already-extracted text.
func (h *TranslationHandler) TranslateText(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, http.StatusBadRequest, "Missing or invalid text field", err)
		return
	}

	result, err := h.service.TranslateText(c.Request.Context(), req.Text, translation.RequestOptions{})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// TranslateAsync queues the document and returns a task handle.
func (h *TranslationHandler) TranslateAsync(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "No file provided", err)
		return
	}
	defer file.Close()

	task, err := h.service.EnqueueDocument(c.Request.Context(), file, header, translation.RequestOptions{})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"success": true, "data": task})
}

// GetStatus reports async task progress.
func (h *TranslationHandler) GetStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.respondError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	task, err := h.service.GetStatus(c.Request.Context(), taskID)
	if err != nil {
		h.respondError(c, http.StatusNotFound, "Task not found", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": task})
}

// DownloadResult returns the finished artifact, as JSON or a rendered PDF.
func (h *TranslationHandler) DownloadResult(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.respondError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	artifact, err := h.service.GetArtifact(c.Request.Context(), taskID)
	if err != nil {
		h.respondError(c, http.StatusNotFound, "Result not available", err)
		return
	}

	if strings.ToLower(c.DefaultQuery("format", "json")) == "pdf" {
		pdfBytes, err := h.renderer.Render(artifact.Result, artifact.Filename)
		if err != nil {
			h.respondError(c, http.StatusInternalServerError, "Failed to render PDF", err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=result_%s.pdf", taskID))
		c.Data(http.StatusOK, "application/pdf", pdfBytes)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": artifact})
}

// CancelTask cancels a queued task.
func (h *TranslationHandler) CancelTask(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.respondError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	if err := h.service.CancelTask(c.Request.Context(), taskID); err != nil {
		h.respondError(c, http.StatusInternalServerError, "Failed to cancel task", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"taskId": taskID}})
}

// GetTerms lists the active domain terminology mappings.
func (h *TranslationHandler) GetTerms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.service.Terms()})
}

// handleServiceError maps service failures onto status codes: bad uploads
// and empty documents are client errors, an all-chunks-failed run means the
// upstream capability is down.
func (h *TranslationHandler) handleServiceError(c *gin.Context, err error) {
	var uploadErr *translation.UploadError
	switch {
	case errors.As(err, &uploadErr):
		h.respondError(c, http.StatusBadRequest, "Invalid upload", err)
	case errors.Is(err, pipeline.ErrExtractionEmpty):
		h.respondError(c, http.StatusBadRequest, "No text could be extracted from the document", err)
	case errors.Is(err, pipeline.ErrAllChunksFailed):
		h.respondError(c, http.StatusBadGateway, "Translation service unavailable", err)
	default:
		h.respondError(c, http.StatusInternalServerError, "Failed to process document", err)
	}
}

func (h *TranslationHandler) respondError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", message, err.Error())
	}
	c.JSON(status, gin.H{"success": false, "error": msg})
}
