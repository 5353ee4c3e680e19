package config

import (
	"os"
	"sync"
	"time"
)

var (
	geminiOnce   sync.Once
	geminiConfig *GeminiConfig
)

type GeminiConfig struct {
	APIKey            string
	Model             string
	Endpoint          string
	Temperature       float64
	MaxOutputTokens   int
	RequestTimeout    time.Duration
	MaxRetries        int
	RequestsPerSecond float64
}

func GetGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		loadEnv()

		geminiConfig = &GeminiConfig{
			APIKey:            os.Getenv("GEMINI_API_KEY"),
			Model:             getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
			Endpoint:          os.Getenv("GEMINI_ENDPOINT"),
			Temperature:       getEnvFloat("GEMINI_TEMPERATURE", 0.2),
			MaxOutputTokens:   getEnvInt("GEMINI_MAX_OUTPUT_TOKENS", 2048),
			RequestTimeout:    getEnvDuration("GEMINI_REQUEST_TIMEOUT", 25*time.Second),
			MaxRetries:        getEnvInt("GEMINI_MAX_RETRIES", 3),
			RequestsPerSecond: getEnvFloat("GEMINI_REQUESTS_PER_SECOND", 2),
		}
	})
	return geminiConfig
}
