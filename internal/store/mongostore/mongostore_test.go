package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JonMunkholm/bookimport/internal/core"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://127.0.0.1:27017/?directConnection=true&serverSelectionTimeoutMS=500"
	}

	db := "bookimport_test_" + uuid.NewString()[:8]
	s, err := Open(context.Background(), Options{URI: uri, Database: db, Collection: "books", ConnectTimeout: 2 * time.Second})
	if err != nil {
		t.Skipf("Skipping test: cannot connect to test mongo: %v", err)
	}
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.client.Database(db).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestInsertBooks(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	n, err := s.InsertBooks(ctx, []core.Book{
		{Title: "Dune", Authors: []string{"Herbert"}, Description: " ", Category: " ", Publisher: " ", Price: 15.99},
		{Title: "Emma", Authors: []string{}, Description: " ", Category: " ", Publisher: " "},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	var got core.Book
	require.NoError(t, s.coll.FindOne(ctx, bson.M{"title": "Dune"}).Decode(&got))
	assert.Equal(t, []string{"Herbert"}, got.Authors)
	assert.Equal(t, 15.99, got.Price)
}

func TestInsertBooks_Empty(t *testing.T) {
	s := setupTestStore(t)
	n, err := s.InsertBooks(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSchemaRejectsNegativePrice(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.InsertBooks(context.Background(), []core.Book{{Title: "Bad", Authors: []string{}, Price: -1}})
	assert.Error(t, err)
}

func TestOpen_ExistingCollection(t *testing.T) {
	s := setupTestStore(t)
	assert.NoError(t, ensureCollection(context.Background(), s.coll.Database(), "books"))
}

func TestIsNamespaceExists(t *testing.T) {
	assert.True(t, isNamespaceExists(mongo.CommandError{Code: codeNamespaceExists, Name: "NamespaceExists"}))
	assert.True(t, isNamespaceExists(fmt.Errorf("wrapped: %w", mongo.CommandError{Code: codeNamespaceExists})))
	assert.False(t, isNamespaceExists(mongo.CommandError{Code: 13}))
	assert.False(t, isNamespaceExists(errors.New("boom")))
}

func TestBookSchema(t *testing.T) {
	schema := bookSchema()["$jsonSchema"].(bson.M)
	assert.Equal(t, bson.A{"title", "authors"}, schema["required"])
	props := schema["properties"].(bson.M)
	assert.Contains(t, props, "price")
	assert.Equal(t, 0, props["price"].(bson.M)["minimum"])
}
