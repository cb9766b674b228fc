// Ghostpen CLI - generate and post persona content from the terminal.
//
// Usage:
//
//	ghostpen-cli generate -topic "fly fishing tips" -platform microblog
//	ghostpen-cli generate -topic "camping adventures" -platform blog -tone reflective -post
//	ghostpen-cli post -platform microblog -content "Just caught a beautiful trout!"
//	ghostpen-cli post -platform photo -content "Best day ever" -image photo.jpg
//	ghostpen-cli status
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/config"
	"github.com/ghostpen/engine/internal/content"
	"github.com/ghostpen/engine/internal/enrichment"
	"github.com/ghostpen/engine/internal/llm"
	"github.com/ghostpen/engine/internal/persona"
	"github.com/ghostpen/engine/internal/platform"
	"github.com/ghostpen/engine/internal/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "generate":
		cmdGenerate(ctx, cfg, os.Args[2:])
	case "post":
		cmdPost(ctx, cfg, os.Args[2:])
	case "status":
		cmdStatus(ctx, cfg)
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: ghostpen-cli <generate|post|status> [flags]")
	fmt.Fprintln(os.Stderr, "Run 'ghostpen-cli <command> -h' for command flags.")
}

func newGenerator(cfg *config.Config) *content.Generator {
	client := llm.NewClient(llm.Config{
		Endpoint: cfg.ModelEndpoint,
		Model:    cfg.ModelName,
		APIKey:   cfg.ModelAPIKey,
	})

	var enricher content.ContextEnricher
	if cfg.EnableEnrichment && cfg.TavilyAPIKey != "" {
		enricher = enrichment.NewEnricher(cfg.TavilyAPIKey)
	}
	return content.NewGenerator(client, enricher)
}

// buildRegistry wires every adapter whose credentials are present.
func buildRegistry(ctx context.Context, cfg *config.Config) *platform.Registry {
	registry := platform.NewRegistry()

	var store storage.BlogStore
	if cfg.MongoURI != "" {
		mongoStore, err := storage.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Warn().Err(err).Msg("Mongo unavailable, blog posting disabled")
		} else {
			store = mongoStore
		}
	} else {
		localStore, err := storage.NewLocalStore(cfg.BlogDataDir)
		if err != nil {
			log.Warn().Err(err).Msg("Local blog store unavailable, blog posting disabled")
		} else {
			store = localStore
		}
	}
	if store != nil {
		registry.Register(platform.NewBlogAdapter(store))
	}

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
	return registry
}

func cmdGenerate(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	topic := fs.String("topic", "", "what to write about (required)")
	platformKey := fs.String("platform", "all", "blog, microblog, photo or all")
	tone := fs.String("tone", "", "writing tone (casual, reflective, humorous, serious)")
	wordCount := fs.Int("word-count", 0, "target word count for blog posts")
	imageDesc := fs.String("image-desc", "", "image description for photo captions")
	imagePath := fs.String("image", "", "image file path (required for photo posting)")
	doPost := fs.Bool("post", false, "post the generated content")
	fs.Parse(args)

	if *topic == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -topic is required")
		os.Exit(1)
	}

	gen := newGenerator(cfg)
	if !gen.HealthCheck(ctx) {
		fmt.Fprintf(os.Stderr, "ERROR: model server not reachable at %s\n", cfg.ModelEndpoint)
		os.Exit(1)
	}

	platforms := persona.Platforms
	if *platformKey != "all" {
		platforms = []string{*platformKey}
	}

	opts := content.Options{
		Tone:             *tone,
		WordCount:        *wordCount,
		ImageDescription: *imageDesc,
	}

	fmt.Printf("Generating content about: %s\n", *topic)
	fmt.Printf("Platforms: %s\n\n", strings.Join(platforms, ", "))

	results := make(map[string]string, len(platforms))
	for _, p := range platforms {
		fmt.Printf("--- %s ---\n", strings.ToUpper(p))
		text, err := gen.Generate(ctx, *topic, p, opts)
		if err != nil {
			fmt.Printf("ERROR: %v\n\n", err)
			continue
		}
		results[p] = text
		fmt.Println(text)
		fmt.Println()
	}

	if !*doPost {
		return
	}

	registry := buildRegistry(ctx, cfg)
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println("POSTING...")
	for _, p := range platforms {
		text, ok := results[p]
		if !ok {
			fmt.Printf("  %s: SKIPPED (generation failed)\n", p)
			continue
		}
		adapter, ok := registry.Get(p)
		if !ok {
			fmt.Printf("  %s: SKIPPED (not configured)\n", p)
			continue
		}
		if p == persona.PlatformPhoto && *imagePath == "" {
			fmt.Printf("  %s: SKIPPED (no -image provided)\n", p)
			continue
		}

		result := adapter.Post(ctx, text, platform.PostOptions{
			Publish:   p == persona.PlatformBlog,
			ImagePath: *imagePath,
		})
		if result.Success {
			ref := result.URL
			if ref == "" {
				ref = result.PostID
			}
			fmt.Printf("  %s: POSTED! %s\n", p, ref)
		} else {
			fmt.Printf("  %s: FAILED - %s\n", p, result.Error)
		}
	}
}

func cmdPost(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	platformKey := fs.String("platform", "", "blog, microblog or photo (required)")
	text := fs.String("content", "", "content to post (required)")
	title := fs.String("title", "", "title for blog posts")
	imagePath := fs.String("image", "", "image path for photo posts")
	fs.Parse(args)

	if *platformKey == "" || *text == "" {
		fmt.Fprintln(os.Stderr, "ERROR: -platform and -content are required")
		os.Exit(1)
	}

	registry := buildRegistry(ctx, cfg)
	adapter, ok := registry.Get(*platformKey)
	if !ok {
		fmt.Fprintf(os.Stderr, "ERROR: %s not configured. Set the required env vars.\n", *platformKey)
		os.Exit(1)
	}
	if *platformKey == persona.PlatformPhoto && *imagePath == "" {
		fmt.Fprintln(os.Stderr, "ERROR: photo posting requires -image")
		os.Exit(1)
	}

	result := adapter.Post(ctx, *text, platform.PostOptions{
		Title:     *title,
		Publish:   *platformKey == persona.PlatformBlog,
		ImagePath: *imagePath,
	})

	if !result.Success {
		fmt.Printf("Failed: %s\n", result.Error)
		os.Exit(1)
	}

	fmt.Printf("Posted to %s!\n", *platformKey)
	if result.URL != "" {
		fmt.Printf("  URL: %s\n", result.URL)
	}
	if result.PostID != "" {
		fmt.Printf("  ID: %s\n", result.PostID)
	}
}

func cmdStatus(ctx context.Context, cfg *config.Config) {
	gen := newGenerator(cfg)

	state := "UNREACHABLE"
	if gen.HealthCheck(ctx) {
		state = "OK"
	}
	fmt.Printf("Model server (%s): %s\n", cfg.ModelEndpoint, state)

	registry := buildRegistry(ctx, cfg)
	for _, name := range persona.Platforms {
		adapter, ok := registry.Get(name)
		if !ok {
			fmt.Printf("%s: NOT CONFIGURED\n", name)
			continue
		}
		if adapter.ValidateCredentials(ctx) {
			fmt.Printf("%s: OK\n", name)
		} else {
			fmt.Printf("%s: INVALID CREDENTIALS\n", name)
		}
	}
}
