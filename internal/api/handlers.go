package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/content"
	"github.com/ghostpen/engine/internal/imagegen"
	"github.com/ghostpen/engine/internal/persona"
	"github.com/ghostpen/engine/internal/platform"
	"github.com/ghostpen/engine/internal/storage"
)

// Handlers holds the API handlers.
type Handlers struct {
	generator *content.Generator
	registry  *platform.Registry
	store     storage.BlogStore  // nil when no blog store is configured
	renderer  *imagegen.Renderer // nil when image generation is disabled
}

// NewHandlers creates new API handlers.
func NewHandlers(gen *content.Generator, reg *platform.Registry, store storage.BlogStore, renderer *imagegen.Renderer) *Handlers {
	return &Handlers{generator: gen, registry: reg, store: store, renderer: renderer}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// ============================================================================
// GENERATION HANDLERS
// ============================================================================

type generateRequest struct {
	Topic            string `json:"topic"`
	Platform         string `json:"platform"`
	Tone             string `json:"tone"`
	WordCount        int    `json:"word_count"`
	ImageDescription string `json:"image_description"`
	AutoPost         bool   `json:"auto_post"`
	ImagePath        string `json:"image_path"`
}

type generateResponse struct {
	Content map[string]string              `json:"content"`
	Posted  map[string]platform.PostResult `json:"posted"`
}

// GenerateContent generates content for one or all platforms. Per-platform
// generation failures are reported inline as "[ERROR: ...]" markers so a
// multi-platform request always returns every platform it attempted.
func (h *Handlers) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		respondError(w, http.StatusBadRequest, "Topic is required")
		return
	}

	platforms := persona.Platforms
	if req.Platform != "" && req.Platform != "all" {
		platforms = []string{req.Platform}
	}

	opts := content.Options{
		Tone:             req.Tone,
		WordCount:        req.WordCount,
		ImageDescription: req.ImageDescription,
	}

	resp := generateResponse{
		Content: make(map[string]string, len(platforms)),
		Posted:  make(map[string]platform.PostResult),
	}

	failed := make(map[string]bool)
	for _, p := range platforms {
		text, err := h.generator.Generate(r.Context(), req.Topic, p, opts)
		if err != nil {
			log.Warn().Err(err).Str("platform", p).Msg("Generation failed")
			resp.Content[p] = fmt.Sprintf("[ERROR: %v]", err)
			failed[p] = true
			continue
		}
		resp.Content[p] = text
	}

	if req.AutoPost {
		for _, p := range platforms {
			if failed[p] {
				resp.Posted[p] = platform.PostResult{
					Success: false, Platform: p, Error: "generation failed",
				}
				continue
			}
			adapter, ok := h.registry.Get(p)
			if !ok {
				resp.Posted[p] = platform.PostResult{
					Success: false, Platform: p, Error: "not configured",
				}
				continue
			}
			resp.Posted[p] = adapter.Post(r.Context(), resp.Content[p], platform.PostOptions{
				Publish:   p == persona.PlatformBlog,
				ImagePath: req.ImagePath,
			})
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// ============================================================================
// POSTING HANDLERS
// ============================================================================

type postRequest struct {
	Content   string   `json:"content"`
	Title     string   `json:"title"`
	ImagePath string   `json:"image_path"`
	ImageURL  string   `json:"image_url"`
	Tags      []string `json:"tags"`
}

// PostContent posts pre-written content to a specific platform.
func (h *Handlers) PostContent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "platform")

	adapter, ok := h.registry.Get(name)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Platform %q not configured", name))
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "Content is required")
		return
	}
	if name == persona.PlatformPhoto && req.ImagePath == "" {
		respondError(w, http.StatusBadRequest, "Photo posting requires image_path")
		return
	}

	result := adapter.Post(r.Context(), req.Content, platform.PostOptions{
		Title:     req.Title,
		Tags:      req.Tags,
		Publish:   name == persona.PlatformBlog,
		ImageURL:  req.ImageURL,
		ImagePath: req.ImagePath,
	})

	respondJSON(w, http.StatusOK, result)
}

// ListPlatforms returns every known platform with its configuration and
// credential status.
func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	type platformStatus struct {
		Configured bool `json:"configured"`
		Valid      bool `json:"valid"`
	}

	status := make(map[string]platformStatus, len(persona.Platforms))
	for _, name := range persona.Platforms {
		adapter, ok := h.registry.Get(name)
		if !ok {
			status[name] = platformStatus{}
			continue
		}
		status[name] = platformStatus{
			Configured: true,
			Valid:      adapter.ValidateCredentials(r.Context()),
		}
	}

	respondJSON(w, http.StatusOK, status)
}

// HealthCheck reports engine, model and platform status.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	modelServer := "unreachable"
	if h.generator.HealthCheck(r.Context()) {
		modelServer = "ok"
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"model_server":     modelServer,
		"platforms":        h.registry.Names(),
		"image_generation": h.renderer != nil,
	})
}

// ============================================================================
// BLOG READ HANDLERS
// ============================================================================

// GetPosts returns published blog posts, newest first.
func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Blog storage not available")
		return
	}

	posts, err := h.store.ListPublished(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch posts")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"count": len(posts),
	})
}

// GetPostBySlug returns a single published post by slug.
func (h *Handlers) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "Blog storage not available")
		return
	}

	slug := chi.URLParam(r, "slug")
	post, err := h.store.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Post not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to fetch post")
		return
	}

	respondJSON(w, http.StatusOK, post)
}

// ============================================================================
// IMAGE HANDLERS
// ============================================================================

type imagePromptRequest struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
}

// GenerateImagePrompt derives an image generation prompt from content using
// the persona model.
func (h *Handlers) GenerateImagePrompt(w http.ResponseWriter, r *http.Request) {
	var req imagePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "Content is required")
		return
	}
	if req.Platform == "" {
		req.Platform = persona.PlatformBlog
	}

	prompt, err := h.generator.ImagePrompt(r.Context(), req.Content, req.Platform)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate image prompt: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"image_prompt": prompt})
}

type imageGenerateRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateImage renders an image for a prompt and stores it locally.
func (h *Handlers) GenerateImage(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		respondError(w, http.StatusBadRequest, "GEMINI_API_KEY not configured")
		return
	}

	var req imageGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Prompt == "" {
		respondError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	filename, err := h.renderer.Render(r.Context(), req.Prompt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Image generation failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"image_path": filepath.Join(h.renderer.Dir(), filename),
		"image_url":  "/images/" + filename,
		"filename":   filename,
	})
}

// ServeImage serves a generated image from the images directory.
func (h *Handlers) ServeImage(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		respondError(w, http.StatusNotFound, "Image not found")
		return
	}

	filename := filepath.Base(chi.URLParam(r, "filename"))
	path := filepath.Join(h.renderer.Dir(), filename)
	if _, err := os.Stat(path); err != nil {
		respondError(w, http.StatusNotFound, "Image not found")
		return
	}

	http.ServeFile(w, r, path)
}
