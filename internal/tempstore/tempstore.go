// Package tempstore keeps raw uploads while they are imported.
//
// Two backends satisfy core.TempStore: Local writes into a directory on
// disk and S3 writes into a bucket prefix on any S3-compatible service.
// Keys are random so two uploads with the same name never collide.
package tempstore

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys this store did not issue.
var ErrInvalidKey = errors.New("invalid temp upload key")

// newKey returns a random name that keeps the upload's extension, so the
// decoder can still pick the format from it.
func newKey(fileName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(fileName)))
	if len(ext) > 8 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// issuedKey reports whether key has the shape newKey produces. Sweeps skip
// anything else so a shared directory or prefix keeps foreign files.
func issuedKey(key string) bool {
	if !validKey(key) {
		return false
	}
	_, err := uuid.Parse(strings.TrimSuffix(key, filepath.Ext(key)))
	return err == nil
}

// validKey rejects keys that could escape the store's directory or prefix.
func validKey(key string) bool {
	return key != "" && key != "." && key != ".." && !strings.ContainsAny(key, `/\`)
}
