// Package platform provides the posting adapters for each destination
// platform behind a single capability set.
package platform

import (
	"context"
	"fmt"
)

// PostResult reports the outcome of a post. Exactly one of success or error
// holds: Error is non-empty iff Success is false.
type PostResult struct {
	Success  bool   `json:"success"`
	Platform string `json:"platform"`
	PostID   string `json:"post_id,omitempty"`
	URL      string `json:"url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// PostOptions carries the platform-specific knobs for a post. Adapters read
// only the fields that apply to them.
type PostOptions struct {
	Title     string   // blog: explicit title, otherwise derived from content
	Tags      []string // blog
	Publish   bool     // blog: publish immediately instead of drafting
	ImageURL  string   // blog: cover image
	ImagePath string   // photo: required local image file
}

// Adapter is the uniform posting interface over heterogeneous platform
// backends. Post never returns a Go error: every failure mode is reported
// through PostResult so batch posting can complete per-platform.
type Adapter interface {
	Post(ctx context.Context, content string, opts PostOptions) PostResult
	ValidateCredentials(ctx context.Context) bool
	Name() string
	MaxContentLength() int
}

func failure(platform, format string, args ...interface{}) PostResult {
	return PostResult{
		Success:  false,
		Platform: platform,
		Error:    fmt.Sprintf(format, args...),
	}
}
