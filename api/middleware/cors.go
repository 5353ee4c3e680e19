package middleware

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets browser clients on other origins call the translation API.
// CORS_ALLOWED_ORIGINS narrows access to a comma-separated origin list;
// unset, any origin may call. Content-Disposition is exposed so downloads
// keep their filename.
func CORS() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		cfg.AllowAllOrigins = true
	}
	cfg.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.ExposeHeaders = []string{"Content-Disposition"}
	cfg.MaxAge = 12 * time.Hour

	return cors.New(cfg)
}
