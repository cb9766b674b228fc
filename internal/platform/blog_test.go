package platform

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ghostpen/engine/internal/storage"
)

func newBlogAdapter(t *testing.T) (*BlogAdapter, storage.BlogStore) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return NewBlogAdapter(store), store
}

func TestBlogPostDerivesTitleAndSlug(t *testing.T) {
	adapter, store := newBlogAdapter(t)
	ctx := context.Background()

	content := "# My Trip to the Alleghenies\n\nPacked the rod and went."
	result := adapter.Post(ctx, content, PostOptions{Publish: true})

	if !result.Success {
		t.Fatalf("post failed: %s", result.Error)
	}
	if result.URL != "/blog/my-trip-to-the-alleghenies" {
		t.Errorf("URL = %q", result.URL)
	}

	stored, err := store.GetBySlug(ctx, "my-trip-to-the-alleghenies")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if stored.Title != "My Trip to the Alleghenies" {
		t.Errorf("title = %q", stored.Title)
	}
	if stored.PublishedAt == nil {
		t.Error("publish timestamp not set")
	}
}

func TestBlogPostUntitledFallback(t *testing.T) {
	adapter, _ := newBlogAdapter(t)

	result := adapter.Post(context.Background(), "no headings here, just prose", PostOptions{Publish: true})
	if !result.Success {
		t.Fatalf("post failed: %s", result.Error)
	}
	if result.URL != "/blog/untitled-post" {
		t.Errorf("URL = %q, want untitled fallback slug", result.URL)
	}
}

func TestBlogPostDraftHasNoPublishTime(t *testing.T) {
	adapter, store := newBlogAdapter(t)
	ctx := context.Background()

	result := adapter.Post(ctx, "# Draft Thoughts\n\nNot ready yet.", PostOptions{})
	if !result.Success {
		t.Fatalf("post failed: %s", result.Error)
	}

	// Drafts are not readable through the published-only slug lookup.
	if _, err := store.GetBySlug(ctx, "draft-thoughts"); err == nil {
		t.Error("draft should not be published")
	}
}

func TestBlogDuplicateTitlesGetDistinctSlugs(t *testing.T) {
	adapter, _ := newBlogAdapter(t)
	ctx := context.Background()

	first := adapter.Post(ctx, "# My Trip\n\nOne.", PostOptions{Publish: true})
	second := adapter.Post(ctx, "# My Trip\n\nTwo.", PostOptions{Publish: true})

	if first.URL != "/blog/my-trip" {
		t.Errorf("first URL = %q", first.URL)
	}
	if second.URL != "/blog/my-trip-1" {
		t.Errorf("second URL = %q", second.URL)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"My Trip", "my-trip"},
		{"What's Next? AI, Obviously!", "whats-next-ai-obviously"},
		{"  spaces   everywhere  ", "spaces-everywhere"},
		{"hyphen - heavy -- title", "hyphen-heavy-title"},
	}

	for _, tt := range tests {
		if got := slugify(tt.title); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestMakeExcerpt(t *testing.T) {
	content := "# Heading\n\nThis has **bold** and *italic* text plus [a link](https://example.com)."
	got := makeExcerpt(content, 200)
	want := "This has bold and italic text plus a link."
	if got != want {
		t.Errorf("makeExcerpt = %q, want %q", got, want)
	}
}

func TestMakeExcerptTruncatesOnWordBoundary(t *testing.T) {
	long := strings.Repeat("seventeen letters ", 30)
	got := makeExcerpt(long, 200)

	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix: %q", got)
	}
	body := strings.TrimSuffix(got, "...")
	if len(body) > 200 {
		t.Errorf("excerpt body %d chars, want <= 200", len(body))
	}
	if strings.HasSuffix(body, " ") {
		t.Errorf("trailing space before ellipsis: %q", got)
	}
	// The truncation point must be a word boundary, never mid-word.
	words := strings.Fields(body)
	if last := words[len(words)-1]; last != "seventeen" && last != "letters" {
		t.Errorf("truncated mid-word: %q", last)
	}
}

func TestMakeExcerptTruncatesOnRuneBoundary(t *testing.T) {
	// No spaces in the first 200 runes, all multi-byte, so a byte-oriented
	// cut would split a rune.
	long := strings.Repeat("é", 250)
	got := makeExcerpt(long, 200)

	if !utf8.ValidString(got) {
		t.Fatalf("excerpt is not valid UTF-8: %q", got)
	}
	body := strings.TrimSuffix(got, "...")
	if n := utf8.RuneCountInString(body); n > 200 {
		t.Errorf("excerpt body %d runes, want <= 200", n)
	}
}

func TestBlogPostResultInvariant(t *testing.T) {
	adapter, _ := newBlogAdapter(t)

	ok := adapter.Post(context.Background(), "# Fine\n\nBody.", PostOptions{})
	if ok.Success && ok.Error != "" {
		t.Error("success result must not carry an error")
	}
	if !ok.Success && ok.Error == "" {
		t.Error("failure result must carry an error")
	}
}
