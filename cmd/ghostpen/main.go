// Ghostpen - persona-consistent social content engine.
// Generates content in a fixed authorial voice and dispatches it to the
// configured platforms.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/api"
	"github.com/ghostpen/engine/internal/config"
	"github.com/ghostpen/engine/internal/content"
	"github.com/ghostpen/engine/internal/enrichment"
	"github.com/ghostpen/engine/internal/imagegen"
	"github.com/ghostpen/engine/internal/llm"
	"github.com/ghostpen/engine/internal/platform"
	"github.com/ghostpen/engine/internal/storage"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().Msg("Ghostpen - Starting content engine")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Initialize blog storage: MongoDB when configured, local JSON otherwise
	var store storage.BlogStore
	if cfg.MongoURI != "" {
		mongoStore, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer mongoStore.Close(ctx)
		store = mongoStore
		log.Info().Str("db", cfg.MongoDB).Msg("Mongo blog store initialized")
	} else {
		localStore, err := storage.NewLocalStore(cfg.BlogDataDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open local blog store")
		}
		store = localStore
		log.Info().Str("dir", cfg.BlogDataDir).Msg("Local blog store initialized")
	}

	// Initialize persona model client
	llmClient := llm.NewClient(llm.Config{
		Endpoint: cfg.ModelEndpoint,
		Model:    cfg.ModelName,
		APIKey:   cfg.ModelAPIKey,
	})
	log.Info().Str("model", cfg.ModelName).Str("endpoint", cfg.ModelEndpoint).Msg("Model client initialized")

	// Initialize enrichment
	var enricher content.ContextEnricher
	if cfg.EnableEnrichment && cfg.TavilyAPIKey != "" {
		enricher = enrichment.NewEnricher(cfg.TavilyAPIKey)
		log.Info().Msg("News enrichment initialized")
	}

	// Initialize content generator
	generator := content.NewGenerator(llmClient, enricher)
	log.Info().Msg("Content generator initialized")

	// Build the platform registry from configuration presence
	registry := platform.NewRegistry()
	registry.Register(platform.NewBlogAdapter(store))
	if cfg.MicroblogAccessToken != "" {
		registry.Register(platform.NewMicroblogAdapter(platform.MicroblogConfig{
			AccessToken: cfg.MicroblogAccessToken,
			BaseURL:     cfg.MicroblogBaseURL,
		}))
	}
	if cfg.PhotoUsername != "" && cfg.PhotoPassword != "" {
		registry.Register(platform.NewPhotoAdapter(platform.PhotoConfig{
			Username:    cfg.PhotoUsername,
			Password:    cfg.PhotoPassword,
			SessionFile: cfg.PhotoSessionFile,
			BaseURL:     cfg.PhotoBaseURL,
		}))
	}
	log.Info().Strs("platforms", registry.Names()).Msg("Platform adapters initialized")

	// Initialize image generation
	var renderer *imagegen.Renderer
	if cfg.GeminiAPIKey != "" {
		renderer, err = imagegen.NewRenderer(ctx, imagegen.Config{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.ImageModel,
			Dir:    cfg.ImagesDir,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize image generation")
		}
		defer renderer.Close()
		log.Info().Str("model", cfg.ImageModel).Msg("Image generation initialized")
	}

	// Initialize API server
	apiServer := api.NewServer(generator, registry, store, renderer, cfg.HTTPAddr)

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Error().Err(err).Msg("API server error")
		}
	}()

	log.Info().
		Str("api", cfg.HTTPAddr).
		Msg("Ghostpen engine running")

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	apiServer.Shutdown(shutdownCtx)

	log.Info().Msg("Ghostpen engine stopped")
}
