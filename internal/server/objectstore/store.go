// Package objectstore wraps the remote object store behind opaque keys.
// Callers never see backend addressing; all reads are proxied through Open
// rather than handing out direct URLs.
package objectstore

import (
	"context"
	"errors"
	"io"
	"path"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the key does not address a stored object.
	ErrNotFound = errors.New("object not found")

	// Backend failures, distinguished from application-level errors such as
	// quota exhaustion.
	ErrWrite  = errors.New("object store write failed")
	ErrRead   = errors.New("object store read failed")
	ErrDelete = errors.New("object store delete failed")
)

// PutResult reports the key actually used and the number of bytes written.
type PutResult struct {
	Key  string
	Size int64
}

// Object is an open read stream plus the metadata needed to frame a response.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Store is the object store gateway.
//
// Put generates a collision-resistant key (random id plus the original
// extension, prefixed by namespace when given), writes the stream and returns
// the key used. Delete is idempotent: deleting an absent key is not an error.
// Open fails with ErrNotFound for absent keys. No caching anywhere; every
// read hits the backend.
type Store interface {
	Put(ctx context.Context, body io.Reader, contentType, originalName, namespace string) (*PutResult, error)
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (*Object, error)
}

// NewKey builds a fresh storage key for an object. The original name only
// contributes its extension; the rest of the key is random.
func NewKey(originalName, namespace string) string {
	name := uuid.New().String() + path.Ext(originalName)
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}

// countingReader counts bytes as the backend consumes them, so Put can report
// the confirmed size of a stream of unknown length.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
