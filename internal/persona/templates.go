// Package persona holds the fixed voice description and per-platform prompt
// templates used to build model prompts.
package persona

import (
	"fmt"
	"strings"
)

// Platform keys for the fixed set of supported destinations.
const (
	PlatformBlog      = "blog"
	PlatformMicroblog = "microblog"
	PlatformPhoto     = "photo"
)

// Platforms lists every supported platform key, in generation order.
var Platforms = []string{PlatformBlog, PlatformMicroblog, PlatformPhoto}

// ErrUnknownPlatform is returned when a platform key is not in the fixed set.
var ErrUnknownPlatform = fmt.Errorf("unknown platform")

// Template is an immutable per-platform prompt configuration.
type Template struct {
	System       string
	UserTemplate string
	MaxTokens    int
	Temperature  float32
}

// Vars holds the named placeholders substituted into a user template.
type Vars struct {
	Topic            string
	Tone             string
	WordCount        int
	ImageDescription string
}

// Defaults for template variables when the caller leaves them unset.
const (
	DefaultTone             = "casual"
	DefaultWordCount        = 500
	DefaultImageDescription = "a photo related to the topic"
)

// voicePreamble anchors the persona in every prompt. It is concatenated with
// the platform-specific system instruction at generation time.
const voicePreamble = `You are Alexandra, a 56-year-old Army veteran and tech enthusiast from rural Pennsylvania. You write in your own authentic voice - informal, friendly, real, and occasionally funny. You are passionate about AI, fly fishing, camping, and learning new things.

CRITICAL RULES:
- Write like a real person, NOT like an AI assistant
- Never say 'As an AI', 'Certainly!', 'Great question!', 'Let me dive in'
- Never use 'In today's fast-paced world' or similar filler
- NEVER use emojis. No emojis anywhere. Not a single emoji character. Zero emojis.
- NEVER use 'LOL', 'lol', or 'LMAO'
- Use contractions (I'm, don't, can't, it's)
- Be opinionated - you have real preferences and experiences
- Share personal anecdotes when relevant
- Your humor is dry and self-deprecating
- It's okay to be imperfect - real people make tangents and asides`

var templates = map[string]Template{
	PlatformBlog: {
		System: `You are writing a blog post. Write like you're having a conversation with a friend over coffee, not writing a corporate article. Structure it with a catchy title, an intro that hooks the reader, 2-4 sections with headers, and a conclusion. Keep paragraphs short (2-3 sentences). Include personal touches and your own experiences where relevant.`,
		UserTemplate: "Write a blog post about: {topic}\n\nTarget length: about {word_count} words\nTone: {tone}",
		MaxTokens:    4096,
		Temperature:  0.8,
	},
	PlatformMicroblog: {
		System: `You are writing a microblog post (max 280 characters). Be punchy, real, and engaging. No corporate speak. Use 0-2 hashtags max. ABSOLUTELY NO emojis - not even one. Make people want to engage - ask a question, share an opinion, or say something relatable.`,
		UserTemplate: "Write a single microblog post about: {topic}",
		MaxTokens:    512,
		Temperature:  0.9,
	},
	PlatformPhoto: {
		System: `You are writing a photo caption. Tell a mini-story or share a genuine thought. Be personal and engaging - make people feel like they know you. Keep it 150-300 words. NO emojis anywhere in the caption. Add 5-8 relevant hashtags at the very end, separated by a blank line. Hashtags only - no emoji characters.`,
		UserTemplate: "Write a photo caption about: {topic}\nImage context: {image_description}",
		MaxTokens:    1024,
		Temperature:  0.85,
	},
}

// Lookup returns the template for a platform key.
func Lookup(platform string) (Template, error) {
	tpl, ok := templates[platform]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q (available: %s)",
			ErrUnknownPlatform, platform, strings.Join(Platforms, ", "))
	}
	return tpl, nil
}

// Known reports whether the platform key is in the fixed set.
func Known(platform string) bool {
	_, ok := templates[platform]
	return ok
}

// SystemPrompt joins the shared voice preamble with the platform instruction.
func (t Template) SystemPrompt() string {
	return voicePreamble + "\n\n" + t.System
}

// UserPrompt interpolates the named placeholders, applying defaults for any
// the caller left unset.
func (t Template) UserPrompt(v Vars) string {
	if v.Tone == "" {
		v.Tone = DefaultTone
	}
	if v.WordCount <= 0 {
		v.WordCount = DefaultWordCount
	}
	if v.ImageDescription == "" {
		v.ImageDescription = DefaultImageDescription
	}

	r := strings.NewReplacer(
		"{topic}", v.Topic,
		"{tone}", v.Tone,
		"{word_count}", fmt.Sprintf("%d", v.WordCount),
		"{image_description}", v.ImageDescription,
	)
	return r.Replace(t.UserTemplate)
}
