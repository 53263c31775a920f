// Package source opens scan images by location. Plain paths are read from
// the local filesystem; s3://bucket/key locations are fetched from an
// S3-compatible object store.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Opener returns a reader for the bytes stored at location.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// File opens local paths.
type File struct{}

func (File) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(location, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Scheme returns the URL scheme of location, or "" for a bare path.
func Scheme(location string) string {
	i := strings.Index(location, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(location[:i])
}

// Router dispatches on the location scheme. Bare paths and file:// go to
// the File opener unless overridden.
type Router struct {
	openers map[string]Opener
}

// NewRouter returns a router that handles local paths.
func NewRouter() *Router {
	return &Router{openers: map[string]Opener{
		"":     File{},
		"file": File{},
	}}
}

// Handle registers an opener for scheme, replacing any existing one.
func (r *Router) Handle(scheme string, o Opener) *Router {
	r.openers[strings.ToLower(scheme)] = o
	return r
}

func (r *Router) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	scheme := Scheme(location)
	o, ok := r.openers[scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported location scheme %q", scheme)
	}
	return o.Open(ctx, location)
}
