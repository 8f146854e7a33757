package ports

import (
	"context"

	"github.com/aretw0/bitrig/pkg/domain"
)

// SceneStore defines the interface for persisting scene documents.
type SceneStore interface {
	// Save persists the document under name.
	Save(ctx context.Context, name string, doc *domain.SceneDocument) error

	// Load retrieves the document stored under name.
	// Returns domain.ErrSceneNotFound if it does not exist.
	Load(ctx context.Context, name string) (*domain.SceneDocument, error)

	// Delete removes the document stored under name.
	Delete(ctx context.Context, name string) error

	// List returns the names of every stored document.
	List(ctx context.Context) ([]string, error)
}
