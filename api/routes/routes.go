package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/digibhoomi/record-translator/api/handlers"
	"github.com/digibhoomi/record-translator/api/middleware"
	"github.com/digibhoomi/record-translator/pkg/metrics"
)

// SetupRoutes configures all routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, m *metrics.Metrics) {
	r.Use(middleware.CORS())
	if m != nil {
		r.Use(middleware.Metrics(m))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")

	translate := v1.Group("/translate")
	{
		translate.POST("", h.Translation.TranslateDocument)
		translate.POST("/text", h.Translation.TranslateText)
		translate.POST("/async", h.Translation.TranslateAsync)
		translate.GET("/status/:taskId", h.Translation.GetStatus)
		translate.GET("/download/:taskId", h.Translation.DownloadResult)
		translate.DELETE("/task/:taskId", h.Translation.CancelTask)
		translate.GET("/terms", h.Translation.GetTerms)
	}
}
