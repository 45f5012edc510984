// Package resolver fetches the documents that references point at.
//
// HTTPResolver asks a document service for JSON first and, when that fails,
// can fall back to scraping the service's HTML page with readability. Both
// requests are retried with exponential backoff on network errors, 429 and
// 5xx responses.
package resolver

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound means no document exists under the name.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidName rejects names that cannot be a document reference.
	ErrInvalidName = errors.New("invalid document name")

	// ErrTooLarge means the response exceeded the configured size cap.
	ErrTooLarge = errors.New("document exceeds size limit")

	// ErrUnavailable means the document service could not be reached or
	// kept failing after retries.
	ErrUnavailable = errors.New("document service unavailable")
)

// Document is a resolved reference.
type Document struct {
	Filename string `json:"filename"`
	// Context is a short description of the document. It doubles as the
	// auxiliary text for compression.
	Context string `json:"context"`
	Content string `json:"content"`
}

// Resolver looks documents up by name.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*Document, error)
}

// Static resolves from a fixed map. Keys are document names.
type Static map[string]Document

// Resolve implements Resolver.
func (s Static) Resolve(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, ok := s[name]
	if !ok {
		return nil, ErrNotFound
	}
	if doc.Filename == "" {
		doc.Filename = name
	}
	return &doc, nil
}

func validateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return ErrInvalidName
	case len(name) > 256:
		return ErrInvalidName
	case strings.Contains(name, ".."), strings.ContainsAny(name, "\x00\r\n"):
		return ErrInvalidName
	}
	return nil
}
