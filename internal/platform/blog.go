package platform

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/persona"
	"github.com/ghostpen/engine/internal/storage"
)

const (
	blogMaxContentLength = 50000
	excerptMaxLength     = 200
)

// BlogAdapter publishes long-form posts through a storage collaborator.
type BlogAdapter struct {
	store storage.BlogStore
}

// NewBlogAdapter creates a blog adapter over the given store.
func NewBlogAdapter(store storage.BlogStore) *BlogAdapter {
	return &BlogAdapter{store: store}
}

// Name returns the platform key.
func (a *BlogAdapter) Name() string { return persona.PlatformBlog }

// MaxContentLength returns the content ceiling in characters.
func (a *BlogAdapter) MaxContentLength() int { return blogMaxContentLength }

// Post stores the content as a blog post. With opts.Publish it is published
// immediately; otherwise it stays in draft.
func (a *BlogAdapter) Post(ctx context.Context, content string, opts PostOptions) PostResult {
	title := opts.Title
	if title == "" {
		title = extractTitle(content)
	}

	post := &storage.BlogPost{
		Title:    title,
		Slug:     slugify(title),
		Content:  content,
		Excerpt:  makeExcerpt(content, excerptMaxLength),
		Tags:     opts.Tags,
		ImageURL: opts.ImageURL,
		Status:   storage.StatusDraft,
	}
	if opts.Publish {
		now := time.Now().UTC()
		post.Status = storage.StatusPublished
		post.PublishedAt = &now
	}

	stored, err := a.store.Insert(ctx, post)
	if err != nil {
		return failure(a.Name(), "failed to store post: %v", err)
	}

	log.Info().
		Str("slug", stored.Slug).
		Str("status", stored.Status).
		Msg("Blog post stored")

	return PostResult{
		Success:  true,
		Platform: a.Name(),
		PostID:   stored.ID,
		URL:      "/blog/" + stored.Slug,
	}
}

// ValidateCredentials probes the store with a cheap read.
func (a *BlogAdapter) ValidateCredentials(ctx context.Context) bool {
	return a.store.Ping(ctx) == nil
}

// extractTitle takes the first markdown heading line, or a fixed fallback.
func extractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return "Untitled Post"
}

var (
	slugStripRe    = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugCollapseRe = regexp.MustCompile(`[\s-]+`)

	boldRe = regexp.MustCompile(`\*\*(.+?)\*\*`)
	emRe   = regexp.MustCompile(`\*(.+?)\*`)
	linkRe = regexp.MustCompile(`\[(.+?)\]\(.+?\)`)
)

// slugify builds a URL-safe slug from a title.
func slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugStripRe.ReplaceAllString(slug, "")
	slug = slugCollapseRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// makeExcerpt derives a plain-text excerpt: headings dropped, basic markdown
// emphasis and links unescaped, truncated at a word boundary.
func makeExcerpt(content string, maxLen int) string {
	var textLines []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		textLines = append(textLines, trimmed)
	}

	text := strings.Join(textLines, " ")
	text = boldRe.ReplaceAllString(text, "$1")
	text = emRe.ReplaceAllString(text, "$1")
	text = linkRe.ReplaceAllString(text, "$1")

	if runes := []rune(text); len(runes) > maxLen {
		cut := string(runes[:maxLen])
		if idx := strings.LastIndex(cut, " "); idx > 0 {
			cut = cut[:idx]
		}
		text = cut + "..."
	}
	return text
}
