// Package config provides configuration management for the content engine.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/imagegen"
	"github.com/ghostpen/engine/internal/llm"
)

// Config holds all application configuration.
type Config struct {
	// Persona model settings
	ModelEndpoint string
	ModelName     string
	ModelAPIKey   string

	// Enrichment API settings
	TavilyAPIKey     string
	EnableEnrichment bool

	// Blog storage: MongoDB when MONGO_URI is set, local JSON otherwise
	MongoURI    string
	MongoDB     string
	BlogDataDir string

	// Microblog settings
	MicroblogAccessToken string
	MicroblogBaseURL     string

	// Photo platform settings
	PhotoUsername    string
	PhotoPassword    string
	PhotoSessionFile string
	PhotoBaseURL     string

	// Image generation settings
	GeminiAPIKey string
	ImageModel   string
	ImagesDir    string

	// Server settings
	HTTPAddr string
	Debug    bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Try to load .env file
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{
		// Persona model
		ModelEndpoint: getEnv("MODEL_ENDPOINT", llm.DefaultEndpoint),
		ModelName:     getEnv("MODEL_NAME", llm.DefaultModel),
		ModelAPIKey:   getEnv("MODEL_API_KEY", ""),

		// Enrichment
		TavilyAPIKey:     getEnv("TAVILY_API_KEY", ""),
		EnableEnrichment: getEnvBool("ENABLE_ENRICHMENT", true),

		// Blog storage
		MongoURI:    getEnv("MONGO_URI", ""),
		MongoDB:     getEnv("MONGO_DB", "ghostpen"),
		BlogDataDir: getEnv("BLOG_DATA_DIR", "data"),

		// Microblog
		MicroblogAccessToken: getEnv("MICROBLOG_ACCESS_TOKEN", ""),
		MicroblogBaseURL:     getEnv("MICROBLOG_BASE_URL", ""),

		// Photo platform
		PhotoUsername:    getEnv("PHOTO_USERNAME", ""),
		PhotoPassword:    getEnv("PHOTO_PASSWORD", ""),
		PhotoSessionFile: getEnv("PHOTO_SESSION_FILE", ""),
		PhotoBaseURL:     getEnv("PHOTO_BASE_URL", ""),

		// Image generation
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		ImageModel:   getEnv("IMAGE_MODEL", imagegen.DefaultModel),
		ImagesDir:    getEnv("IMAGES_DIR", "images"),

		// Server
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Debug:    getEnvBool("DEBUG", false),
	}

	return cfg, nil
}

// Validate warns about missing optional credentials. Nothing is strictly
// required: the engine degrades per feature.
func (c *Config) Validate() error {
	if c.TavilyAPIKey == "" {
		log.Warn().Msg("TAVILY_API_KEY not set, news enrichment will be disabled")
	}
	if c.MicroblogAccessToken == "" {
		log.Warn().Msg("MICROBLOG_ACCESS_TOKEN not set, microblog posting will be disabled")
	}
	if c.PhotoUsername == "" || c.PhotoPassword == "" {
		log.Warn().Msg("Photo credentials not set, photo posting will be disabled")
	}
	if c.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, image generation will be disabled")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
