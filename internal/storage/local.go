package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalStore is a JSON-file blog store. It needs no external services, so
// the blog works out of the box for local use.
type LocalStore struct {
	path string
	mu   sync.Mutex
}

// NewLocalStore creates the data directory and backing file if needed.
func NewLocalStore(dataDir string) (*LocalStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := &LocalStore{path: filepath.Join(dataDir, "blog_posts.json")}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.save(nil); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *LocalStore) load() ([]BlogPost, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var posts []BlogPost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("corrupt blog store %s: %w", s.path, err)
	}
	return posts, nil
}

func (s *LocalStore) save(posts []BlogPost) error {
	if posts == nil {
		posts = []BlogPost{}
	}
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Insert stores a new post, suffixing the slug until it is unique.
func (s *LocalStore) Insert(ctx context.Context, post *BlogPost) (*BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(posts))
	for _, p := range posts {
		existing[p.Slug] = true
	}

	base := post.Slug
	for counter := 1; existing[post.Slug]; counter++ {
		post.Slug = fmt.Sprintf("%s-%d", base, counter)
	}

	now := time.Now().UTC()
	post.ID = uuid.NewString()
	post.CreatedAt = now
	post.UpdatedAt = now

	posts = append(posts, *post)
	if err := s.save(posts); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPublished returns published posts, newest publish time first.
func (s *LocalStore) ListPublished(ctx context.Context) ([]BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}

	var published []BlogPost
	for _, p := range posts {
		if p.Status == StatusPublished {
			published = append(published, p)
		}
	}

	sort.Slice(published, func(i, j int) bool {
		ti, tj := published[i].PublishedAt, published[j].PublishedAt
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})

	return published, nil
}

// GetBySlug returns a published post by slug.
func (s *LocalStore) GetBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range posts {
		if posts[i].Slug == slug && posts[i].Status == StatusPublished {
			return &posts[i], nil
		}
	}
	return nil, ErrNotFound
}

// Delete removes a post by id.
func (s *LocalStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.load()
	if err != nil {
		return false, err
	}

	kept := posts[:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}

	if len(kept) == len(posts) {
		return false, nil
	}
	return true, s.save(kept)
}

// Ping verifies the backing file is readable.
func (s *LocalStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}
