package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/ghostpen/engine/internal/persona"
)

const (
	defaultMicroblogAPIURL = "https://api.x.com"
	microblogMaxLength     = 280
	microblogStatusURL     = "https://x.com/i/status/%s"
)

// MicroblogAdapter posts short updates through the platform's v2 REST API.
type MicroblogAdapter struct {
	client *resty.Client
}

// MicroblogConfig configures the microblog adapter.
type MicroblogConfig struct {
	AccessToken string
	BaseURL     string // defaults to the public API
}

// NewMicroblogAdapter creates a microblog adapter.
func NewMicroblogAdapter(cfg MicroblogConfig) *MicroblogAdapter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultMicroblogAPIURL
	}
	return &MicroblogAdapter{
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetAuthToken(cfg.AccessToken).
			SetTimeout(30 * time.Second),
	}
}

// Name returns the platform key.
func (a *MicroblogAdapter) Name() string { return persona.PlatformMicroblog }

// MaxContentLength returns the hard character ceiling.
func (a *MicroblogAdapter) MaxContentLength() int { return microblogMaxLength }

// Post publishes a single update, truncating over-length content to 277
// characters plus an ellipsis before transmission.
func (a *MicroblogAdapter) Post(ctx context.Context, content string, opts PostOptions) PostResult {
	if runes := []rune(content); len(runes) > microblogMaxLength {
		content = string(runes[:microblogMaxLength-3]) + "..."
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": content}).
		Post("/2/tweets")

	if err != nil {
		return failure(a.Name(), "create post failed: %v", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return failure(a.Name(), "create post returned %d: %s", resp.StatusCode(), resp.String())
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &result); err != nil || result.Data.ID == "" {
		return failure(a.Name(), "unexpected create post response: %s", resp.String())
	}

	log.Info().Str("post_id", result.Data.ID).Msg("Microblog post published")

	return PostResult{
		Success:  true,
		Platform: a.Name(),
		PostID:   result.Data.ID,
		URL:      fmt.Sprintf(microblogStatusURL, result.Data.ID),
	}
}

// ValidateCredentials performs a lightweight "current account" call.
func (a *MicroblogAdapter) ValidateCredentials(ctx context.Context) bool {
	resp, err := a.client.R().SetContext(ctx).Get("/2/users/me")
	if err != nil {
		log.Debug().Err(err).Msg("Microblog credential check failed")
		return false
	}
	return resp.StatusCode() == 200
}
