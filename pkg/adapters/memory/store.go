package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/bitrig/pkg/domain"
)

// Store implements ports.SceneStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.SceneDocument
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.SceneDocument),
	}
}

// Save persists a copy of the document.
func (s *Store) Save(ctx context.Context, name string, doc *domain.SceneDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copyDocument(doc)
	return nil
}

// Load retrieves a copy of the document so callers can't mutate the store by pointer.
func (s *Store) Load(ctx context.Context, name string) (*domain.SceneDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.data[name]
	if !ok {
		return nil, domain.ErrSceneNotFound
	}
	return copyDocument(doc), nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns stored names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.data))
	for k := range s.data {
		names = append(names, k)
	}
	sort.Strings(names)
	return names, nil
}

func copyDocument(doc *domain.SceneDocument) *domain.SceneDocument {
	out := *doc
	out.Nodes = make([]domain.NodeRecord, len(doc.Nodes))
	for i, n := range doc.Nodes {
		attrs := make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			attrs[k] = v
		}
		n.Attrs = attrs
		out.Nodes[i] = n
	}
	out.Edges = append([]domain.EdgeRecord(nil), doc.Edges...)
	return &out
}
