// Package mongostore persists books to a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/JonMunkholm/bookimport/internal/core"
)

// codeNamespaceExists is returned by create on an existing collection.
const codeNamespaceExists = 48

// Options configures the connection.
type Options struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Store writes books into one collection. It is safe for concurrent use.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Open connects, pings the primary and makes sure the collection exists
// with its schema validator.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(opts.Database)
	if err := ensureCollection(ctx, db, opts.Collection); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &Store{client: client, coll: db.Collection(opts.Collection)}, nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	err := db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(bookSchema()))
	if err == nil || isNamespaceExists(err) {
		return nil
	}
	return fmt.Errorf("create collection %s: %w", name, err)
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists
}

// bookSchema mirrors core.Book's validation rules so documents written by
// other tools are held to the same shape.
func bookSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "authors"},
			"properties": bson.M{
				"title":       bson.M{"bsonType": "string"},
				"authors":     bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}},
				"description": bson.M{"bsonType": "string"},
				"category":    bson.M{"bsonType": "string"},
				"publisher":   bson.M{"bsonType": "string"},
				"price":       bson.M{"bsonType": bson.A{"double", "int", "long"}, "minimum": 0},
			},
		},
	}
}

// InsertBooks writes all books with a single ordered InsertMany. On error
// the documents before the failing one may already be stored.
func (s *Store) InsertBooks(ctx context.Context, books []core.Book) (int, error) {
	if len(books) == 0 {
		return 0, nil
	}

	docs := make([]any, len(books))
	for i := range books {
		docs[i] = books[i]
	}

	res, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return insertedCount(res), fmt.Errorf("insert books: %w", err)
	}
	return len(res.InsertedIDs), nil
}

func insertedCount(res *mongo.InsertManyResult) int {
	if res == nil {
		return 0
	}
	return len(res.InsertedIDs)
}

// Count returns the number of stored books.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.D{})
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
