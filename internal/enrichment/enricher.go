package enrichment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const maxSnippets = 5

// searcher is the slice of the Tavily client the enricher needs.
type searcher interface {
	SearchNews(ctx context.Context, query string, maxResults int) (*TavilySearchResponse, error)
}

// Enricher turns a topic into a short block of current-event snippets for
// prompt injection. Enrichment is best-effort: every failure degrades to an
// empty block, never to an error.
type Enricher struct {
	search searcher
}

// NewEnricher creates an enricher backed by Tavily search.
func NewEnricher(apiKey string) *Enricher {
	return &Enricher{search: NewTavilyClient(apiKey)}
}

// ContextBlock returns a bulleted "current context" block for the topic, or
// the empty string when nothing useful was found.
func (e *Enricher) ContextBlock(ctx context.Context, topic string) string {
	if e == nil || e.search == nil {
		return ""
	}

	resp, err := e.search.SearchNews(ctx, topic, maxSnippets)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Context enrichment failed")
		return ""
	}

	var snippets []string
	for _, r := range resp.Results {
		text := strings.TrimSpace(r.Content)
		if text == "" {
			continue
		}
		if len(text) > 300 {
			text = text[:300] + "..."
		}
		snippets = append(snippets, fmt.Sprintf("- %s: %s", r.Title, text))
		if len(snippets) >= maxSnippets {
			break
		}
	}

	if len(snippets) == 0 {
		log.Debug().Str("topic", topic).Msg("No enrichment snippets found")
		return ""
	}

	log.Debug().
		Str("topic", topic).
		Int("snippets", len(snippets)).
		Msg("Enrichment complete")

	return "Current context (recent news, use only what's relevant):\n" + strings.Join(snippets, "\n")
}
