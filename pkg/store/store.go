// Package store persists generated mind maps as named documents.
//
// A Document couples a topic tree with an identity and timestamps so maps
// can be reopened, re-rendered, and exported later without another call to
// the content service. Three backends implement [Store]:
//   - memory: development and tests
//   - file: one JSON file per document, for the CLI
//   - mongo: server deployments
//
// Stores persist the original topic tree only. Layouts are recomputed on
// demand (and cached); coordinates are never stored with the document.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mindweave/mindweave/pkg/errors"
	"github.com/mindweave/mindweave/pkg/mindmap"
)

// Document is a saved mind map.
type Document struct {
	ID        string         `json:"id" bson:"_id"`
	Name      string         `json:"name" bson:"name"`
	Root      *mindmap.Topic `json:"root" bson:"root"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" bson:"updated_at"`
}

// NewDocument creates a document with a fresh id and timestamps. The tree
// must already be validated.
func NewDocument(name string, root *mindmap.Topic) *Document {
	now := time.Now().UTC()
	return &Document{
		ID:        uuid.NewString(),
		Name:      name,
		Root:      root,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store is the interface for document persistence backends.
type Store interface {
	// Get retrieves a document by id. Returns a DOCUMENT_NOT_FOUND coded
	// error if it does not exist.
	Get(ctx context.Context, id string) (*Document, error)

	// Put stores or replaces a document, refreshing UpdatedAt.
	Put(ctx context.Context, doc *Document) error

	// Delete removes a document. Deleting a missing document is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all documents ordered by UpdatedAt descending.
	List(ctx context.Context) ([]*Document, error)

	// Close releases backend resources.
	Close() error
}

// notFound builds the standard missing-document error.
func notFound(id string) error {
	return errors.New(errors.ErrCodeDocumentNotFound, "document %s not found", id)
}
