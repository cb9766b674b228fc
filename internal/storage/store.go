// Package storage provides the long-form content stores.
//
// Two interchangeable implementations exist: a MongoDB store for hosted
// deployments and a local JSON file store that works with no external
// services. Both enforce slug uniqueness and publish-time ordering.
package storage

import (
	"context"
	"errors"
	"time"
)

// Post statuses.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// ErrNotFound is returned when a post does not exist.
var ErrNotFound = errors.New("post not found")

// BlogPost is a stored long-form content item.
type BlogPost struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Slug        string     `bson:"slug" json:"slug"`
	Content     string     `bson:"content" json:"content"`
	Excerpt     string     `bson:"excerpt" json:"excerpt"`
	Tags        []string   `bson:"tags" json:"tags"`
	ImageURL    string     `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Status      string     `bson:"status" json:"status"`
	PublishedAt *time.Time `bson:"published_at,omitempty" json:"published_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}

// BlogStore is the storage collaborator the blog adapter publishes through.
type BlogStore interface {
	// Insert stores a new post. The store owns slug uniqueness: a colliding
	// slug gets a numeric suffix (my-trip, my-trip-1, ...).
	Insert(ctx context.Context, post *BlogPost) (*BlogPost, error)

	// ListPublished returns published posts, newest publish time first.
	ListPublished(ctx context.Context) ([]BlogPost, error)

	// GetBySlug returns a published post, or ErrNotFound.
	GetBySlug(ctx context.Context, slug string) (*BlogPost, error)

	// Delete removes a post by id, reporting whether anything was removed.
	Delete(ctx context.Context, id string) (bool, error)

	// Ping performs a cheap read probe against the store.
	Ping(ctx context.Context) error
}
