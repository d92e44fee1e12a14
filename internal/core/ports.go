package core

import (
	"context"
	"io"
	"time"

	"github.com/JonMunkholm/bookimport/internal/sheet"
)

// BookWriter persists a batch of books in one bulk call. Implementations
// return the number of records written.
type BookWriter interface {
	InsertBooks(ctx context.Context, books []Book) (int, error)
}

// TempStore holds raw uploads while they are imported. Keys are opaque and
// only meaningful to the store that issued them.
type TempStore interface {
	Save(ctx context.Context, name string, r io.Reader) (key string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Remove(ctx context.Context, key string) error
	// Sweep removes uploads last written before olderThan.
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
}

// DecodeFunc decodes the first sheet of an uploaded file.
type DecodeFunc func(fileName string, r io.Reader) (*sheet.Sheet, error)
