// Package imagegen renders images from text prompts with the Gemini image
// model and stores them on local disk for serving.
package imagegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// DefaultModel is the image-capable Gemini model.
const DefaultModel = "gemini-2.5-flash-image"

// Renderer generates images and writes them under a local directory.
type Renderer struct {
	client *genai.Client
	model  string
	dir    string
}

// Config holds the renderer configuration.
type Config struct {
	APIKey string
	Model  string
	Dir    string
}

// NewRenderer creates a renderer. The directory is created if missing.
func NewRenderer(ctx context.Context, cfg Config) (*Renderer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("image generation requires an API key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dir == "" {
		cfg.Dir = "images"
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create images dir: %w", err)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create image client: %w", err)
	}

	return &Renderer{client: client, model: cfg.Model, dir: cfg.Dir}, nil
}

// Close releases the underlying client.
func (r *Renderer) Close() error {
	return r.client.Close()
}

// Dir returns the directory images are written to.
func (r *Renderer) Dir() string { return r.dir }

// Render generates one image for the prompt and writes it to the images
// directory. It returns the bare filename of the written file.
func (r *Renderer) Render(ctx context.Context, prompt string) (string, error) {
	log.Info().Str("model", r.model).Msg("Generating image")

	model := r.client.GenerativeModel(r.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	data, mimeType, err := firstImage(resp)
	if err != nil {
		return "", err
	}

	filename := uuid.NewString() + extensionFor(mimeType)
	path := filepath.Join(r.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	log.Info().Str("file", filename).Int("bytes", len(data)).Msg("Image written")
	return filename, nil
}

// firstImage extracts the first inline image part from a model response.
func firstImage(resp *genai.GenerateContentResponse) ([]byte, string, error) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "image/") {
				return blob.Data, blob.MIMEType, nil
			}
		}
	}
	return nil, "", fmt.Errorf("model response contained no image data")
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
