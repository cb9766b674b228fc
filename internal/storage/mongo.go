package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the hosted blog store.
type MongoStore struct {
	client *mongo.Client
	posts  *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the blog collection.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(dbName)
	log.Info().Str("db", dbName).Msg("Connected to MongoDB")

	store := &MongoStore{
		client: client,
		posts:  db.Collection("blog_posts"),
	}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "published_at", Value: -1}}},
	}
	if _, err := store.posts.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create blog post indexes")
	}

	return store, nil
}

// Close closes the database connection.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Insert stores a new post, suffixing the slug until the unique index
// accepts it.
func (s *MongoStore) Insert(ctx context.Context, post *BlogPost) (*BlogPost, error) {
	now := time.Now().UTC()
	post.ID = uuid.NewString()
	post.CreatedAt = now
	post.UpdatedAt = now

	base := post.Slug
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			post.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		_, err := s.posts.InsertOne(ctx, post)
		if err == nil {
			return post, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("failed to insert post: %w", err)
		}
		if attempt >= 50 {
			return nil, fmt.Errorf("could not find a free slug for %q", base)
		}
	}
}

// ListPublished returns published posts, newest first.
func (s *MongoStore) ListPublished(ctx context.Context) ([]BlogPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "published_at", Value: -1}})
	cursor, err := s.posts.Find(ctx, bson.M{"status": StatusPublished}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []BlogPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetBySlug returns a published post by slug.
func (s *MongoStore) GetBySlug(ctx context.Context, slug string) (*BlogPost, error) {
	var post BlogPost
	err := s.posts.FindOne(ctx, bson.M{"slug": slug, "status": StatusPublished}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post by id.
func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.posts.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Ping issues a cheap read against the collection.
func (s *MongoStore) Ping(ctx context.Context) error {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := s.posts.FindOne(ctx, bson.M{}, opts).Err()
	if err != nil && err != mongo.ErrNoDocuments {
		return err
	}
	return nil
}
