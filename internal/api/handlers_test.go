package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ghostpen/engine/internal/content"
	"github.com/ghostpen/engine/internal/llm"
	"github.com/ghostpen/engine/internal/persona"
	"github.com/ghostpen/engine/internal/platform"
	"github.com/ghostpen/engine/internal/storage"
)

// fakeAdapter records posts and returns a canned result.
type fakeAdapter struct {
	name    string
	posts   []string
	opts    []platform.PostOptions
	failing bool
	valid   bool
}

func (f *fakeAdapter) Post(ctx context.Context, text string, opts platform.PostOptions) platform.PostResult {
	f.posts = append(f.posts, text)
	f.opts = append(f.opts, opts)
	if f.failing {
		return platform.PostResult{Success: false, Platform: f.name, Error: "backend down"}
	}
	return platform.PostResult{Success: true, Platform: f.name, PostID: "42", URL: "https://example.com/42"}
}

func (f *fakeAdapter) ValidateCredentials(ctx context.Context) bool { return f.valid }
func (f *fakeAdapter) Name() string                                 { return f.name }
func (f *fakeAdapter) MaxContentLength() int                        { return 280 }

// newModelServer returns an httptest server that answers every chat
// completion with the given text.
func newModelServer(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/v1/chat/completions":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, reply)
		default:
			http.NotFound(w, r)
		}
	}))
}

// newTestServer wires a full API server against a fake model server.
func newTestServer(t *testing.T, modelURL string, reg *platform.Registry, store storage.BlogStore) *Server {
	t.Helper()
	gen := content.NewGenerator(llm.NewClient(llm.Config{Endpoint: modelURL}), nil)
	if reg == nil {
		reg = platform.NewRegistry()
	}
	return NewServer(gen, reg, store, nil, ":0")
}

func doJSON(t *testing.T, srv *Server, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGenerateSinglePlatform(t *testing.T) {
	model := newModelServer(t, "a fine microblog post")
	defer model.Close()

	srv := newTestServer(t, model.URL, nil, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/generate",
		`{"topic":"fishing","platform":"microblog"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Content) != 1 || resp.Content["microblog"] != "a fine microblog post" {
		t.Errorf("content = %v", resp.Content)
	}
	if len(resp.Posted) != 0 {
		t.Errorf("nothing should be posted without auto_post: %v", resp.Posted)
	}
}

func TestGenerateAllPlatformsWithErrorMarker(t *testing.T) {
	model := newModelServer(t, "text")
	defer model.Close()

	srv := newTestServer(t, model.URL, nil, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/generate", `{"topic":"fishing"}`)

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Content) != len(persona.Platforms) {
		t.Fatalf("expected content for every platform, got %v", resp.Content)
	}

	// An unknown platform key fails inline, not with an HTTP error.
	rec = doJSON(t, srv, http.MethodPost, "/api/generate",
		`{"topic":"fishing","platform":"linkedin"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(resp.Content["linkedin"], "[ERROR:") {
		t.Errorf("expected inline error marker, got %q", resp.Content["linkedin"])
	}
}

func TestGenerateMissingTopic(t *testing.T) {
	model := newModelServer(t, "text")
	defer model.Close()

	srv := newTestServer(t, model.URL, nil, nil)
	if rec := doJSON(t, srv, http.MethodPost, "/api/generate", `{"platform":"blog"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateAutoPost(t *testing.T) {
	model := newModelServer(t, "generated text")
	defer model.Close()

	micro := &fakeAdapter{name: persona.PlatformMicroblog, valid: true}
	reg := platform.NewRegistry()
	reg.Register(micro)

	srv := newTestServer(t, model.URL, reg, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/generate",
		`{"topic":"fishing","auto_post":true}`)

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if got := resp.Posted[persona.PlatformMicroblog]; !got.Success || got.PostID != "42" {
		t.Errorf("microblog post result = %+v", got)
	}
	if len(micro.posts) != 1 || micro.posts[0] != "generated text" {
		t.Errorf("adapter received %v", micro.posts)
	}

	// Unconfigured platforms report their status instead of being skipped.
	if got := resp.Posted[persona.PlatformBlog]; got.Success || got.Error != "not configured" {
		t.Errorf("blog post result = %+v", got)
	}
}

func TestPostContent(t *testing.T) {
	model := newModelServer(t, "")
	defer model.Close()

	blog := &fakeAdapter{name: persona.PlatformBlog, valid: true}
	reg := platform.NewRegistry()
	reg.Register(blog)
	srv := newTestServer(t, model.URL, reg, nil)

	rec := doJSON(t, srv, http.MethodPost, "/api/post/blog",
		`{"content":"# Hello\n\nWorld.","title":"Hello","tags":["travel"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var result platform.PostResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.PostID != "42" {
		t.Errorf("result = %+v", result)
	}
	if opts := blog.opts[0]; !opts.Publish || opts.Title != "Hello" || len(opts.Tags) != 1 {
		t.Errorf("opts = %+v", opts)
	}
}

func TestPostContentValidation(t *testing.T) {
	model := newModelServer(t, "")
	defer model.Close()

	photo := &fakeAdapter{name: persona.PlatformPhoto}
	reg := platform.NewRegistry()
	reg.Register(photo)
	srv := newTestServer(t, model.URL, reg, nil)

	// Unconfigured platform.
	if rec := doJSON(t, srv, http.MethodPost, "/api/post/blog", `{"content":"x"}`); rec.Code != http.StatusNotFound {
		t.Errorf("unconfigured platform: status = %d, want 404", rec.Code)
	}

	// Missing content.
	if rec := doJSON(t, srv, http.MethodPost, "/api/post/photo", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing content: status = %d, want 400", rec.Code)
	}

	// Photo without an image path is rejected before touching the adapter.
	rec := doJSON(t, srv, http.MethodPost, "/api/post/photo", `{"content":"caption"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing image: status = %d, want 400", rec.Code)
	}
	if len(photo.posts) != 0 {
		t.Error("adapter must not be called for an invalid photo post")
	}
}

func TestListPlatforms(t *testing.T) {
	model := newModelServer(t, "")
	defer model.Close()

	reg := platform.NewRegistry()
	reg.Register(&fakeAdapter{name: persona.PlatformMicroblog, valid: true})
	srv := newTestServer(t, model.URL, reg, nil)

	rec := doJSON(t, srv, http.MethodGet, "/api/platforms", "")
	var status map[string]struct {
		Configured bool `json:"configured"`
		Valid      bool `json:"valid"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}

	if len(status) != len(persona.Platforms) {
		t.Fatalf("expected every known platform listed, got %v", status)
	}
	if s := status["microblog"]; !s.Configured || !s.Valid {
		t.Errorf("microblog = %+v", s)
	}
	if s := status["blog"]; s.Configured || s.Valid {
		t.Errorf("blog = %+v", s)
	}
}

func TestHealthCheck(t *testing.T) {
	model := newModelServer(t, "")
	defer model.Close()

	srv := newTestServer(t, model.URL, nil, nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/health", "")

	var health struct {
		Status          string   `json:"status"`
		ModelServer     string   `json:"model_server"`
		Platforms       []string `json:"platforms"`
		ImageGeneration bool     `json:"image_generation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ok" || health.ModelServer != "ok" {
		t.Errorf("health = %+v", health)
	}
	if health.ImageGeneration {
		t.Error("image generation should be off without a renderer")
	}
}

func TestHealthCheckModelDown(t *testing.T) {
	model := newModelServer(t, "")
	modelURL := model.URL
	model.Close()

	srv := newTestServer(t, modelURL, nil, nil)
	rec := doJSON(t, srv, http.MethodGet, "/api/health", "")

	var health struct {
		ModelServer string `json:"model_server"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatal(err)
	}
	if health.ModelServer != "unreachable" {
		t.Errorf("model_server = %q", health.ModelServer)
	}
}

func TestBlogReadEndpoints(t *testing.T) {
	model := newModelServer(t, "")
	defer model.Close()

	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	if _, err := store.Insert(context.Background(), &storage.BlogPost{
		Title: "Hello", Slug: "hello", Content: "# Hello",
		Status: storage.StatusPublished, PublishedAt: &now,
	}); err != nil {
		t.Fatal(err)
	}

	srv := newTestServer(t, model.URL, nil, store)

	rec := doJSON(t, srv, http.MethodGet, "/api/posts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatal(err)
	}
	if listing.Count != 1 {
		t.Errorf("count = %d", listing.Count)
	}

	if rec := doJSON(t, srv, http.MethodGet, "/api/posts/hello", ""); rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/api/posts/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing slug status = %d", rec.Code)
	}
}

func TestBlogReadWithoutStore(t *testing.T) {
	model := newModelServer(t, "")
	defer model.Close()

	srv := newTestServer(t, model.URL, nil, nil)
	if rec := doJSON(t, srv, http.MethodGet, "/api/posts", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestImageEndpointsDisabled(t *testing.T) {
	model := newModelServer(t, "")
	defer model.Close()

	srv := newTestServer(t, model.URL, nil, nil)
	if rec := doJSON(t, srv, http.MethodPost, "/api/generate-image", `{"prompt":"a creek"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("generate-image status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, srv, http.MethodGet, "/images/foo.png", ""); rec.Code != http.StatusNotFound {
		t.Errorf("serve image status = %d, want 404", rec.Code)
	}
}

func TestGenerateImagePrompt(t *testing.T) {
	model := newModelServer(t, "A misty creek at dawn.")
	defer model.Close()

	srv := newTestServer(t, model.URL, nil, nil)
	rec := doJSON(t, srv, http.MethodPost, "/api/generate-image-prompt",
		`{"content":"# Morning\n\nFog everywhere.","platform":"blog"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["image_prompt"] != "A misty creek at dawn." {
		t.Errorf("image_prompt = %q", resp["image_prompt"])
	}
}
