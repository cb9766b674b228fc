// Package content orchestrates persona-consistent content generation.
package content

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/llm"
	"github.com/ghostpen/engine/internal/persona"
	"github.com/ghostpen/engine/internal/sanitize"
)

// ContextEnricher supplies an optional block of current-event context for a
// topic. Implementations must degrade to an empty string, never fail.
type ContextEnricher interface {
	ContextBlock(ctx context.Context, topic string) string
}

// Options tunes a generation request. Zero values mean defaults.
type Options struct {
	Tone                string
	WordCount           int
	ImageDescription    string
	ForceProductContext bool
}

// Result is one platform's outcome from a batch generation.
type Result struct {
	Text string
	Err  error
}

// Generator builds prompts and turns model output into publishable text.
type Generator struct {
	llm      *llm.Client
	enricher ContextEnricher
}

// NewGenerator creates a content generator. The enricher may be nil, in
// which case no live context is injected.
func NewGenerator(client *llm.Client, enricher ContextEnricher) *Generator {
	return &Generator{llm: client, enricher: enricher}
}

// Generate produces sanitized content for one platform.
//
// Generation-path errors propagate: persona.ErrUnknownPlatform for a bad
// platform key, *llm.ModelUnreachableError / *llm.ModelError from the model
// call. Enrichment failures never do.
func (g *Generator) Generate(ctx context.Context, topic, platform string, opts Options) (string, error) {
	tpl, err := persona.Lookup(platform)
	if err != nil {
		return "", err
	}

	log.Info().
		Str("topic", topic).
		Str("platform", platform).
		Msg("Generating content")

	userMsg := tpl.UserPrompt(persona.Vars{
		Topic:            topic,
		Tone:             opts.Tone,
		WordCount:        opts.WordCount,
		ImageDescription: opts.ImageDescription,
	})

	// The microblog output budget can't absorb live context.
	if platform != persona.PlatformMicroblog && g.enricher != nil {
		if block := g.enricher.ContextBlock(ctx, topic); block != "" {
			userMsg += "\n\n" + block
		}
	}

	systemMsg := tpl.SystemPrompt()
	if opts.ForceProductContext || persona.IsProductTopic(topic) {
		systemMsg += "\n" + persona.ProductContext()
		userMsg += persona.LinkDirective(platform)
		log.Debug().Str("platform", platform).Msg("Product context injected")
	}

	text, err := g.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: systemMsg,
		UserPrompt:   userMsg,
		Temperature:  tpl.Temperature,
		MaxTokens:    tpl.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	return sanitize.Clean(text), nil
}

// GenerateAll generates content for every known platform sequentially. One
// platform's failure never prevents attempting the others; each platform
// gets its own Result holding either text or the error.
func (g *Generator) GenerateAll(ctx context.Context, topic string, opts Options) map[string]Result {
	results := make(map[string]Result, len(persona.Platforms))
	for _, platform := range persona.Platforms {
		text, err := g.Generate(ctx, topic, platform, opts)
		if err != nil {
			log.Warn().Err(err).Str("platform", platform).Msg("Generation failed")
		}
		results[platform] = Result{Text: text, Err: err}
	}
	return results
}

// HealthCheck probes the model endpoint. Never raises.
func (g *Generator) HealthCheck(ctx context.Context) bool {
	return g.llm.HealthCheck(ctx)
}

// Input content is capped so long blog posts don't blow the prompt budget.
const imagePromptMaxInput = 2000

const imagePromptSystem = `You are an expert at writing image generation prompts. Given a piece of written content, create a single descriptive prompt for generating a matching photograph or illustration. The prompt should be vivid, specific, and visual. Focus on mood, lighting, composition, and subject matter. Output ONLY the image prompt, nothing else. Keep it under 200 words.`

// ImagePrompt derives an image generation prompt from generated content.
func (g *Generator) ImagePrompt(ctx context.Context, generated, platform string) (string, error) {
	if runes := []rune(generated); len(runes) > imagePromptMaxInput {
		generated = string(runes[:imagePromptMaxInput])
	}

	prompt, err := g.llm.Chat(ctx, llm.ChatRequest{
		SystemPrompt: imagePromptSystem,
		UserPrompt:   "Create an image generation prompt for this " + platform + " content:\n\n" + generated,
		Temperature:  0.7,
		MaxTokens:    300,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(prompt), nil
}
