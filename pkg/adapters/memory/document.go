package memory

import (
	"fmt"

	"github.com/aretw0/bitrig/pkg/domain"
)

// FromDocument rebuilds a scene from a snapshot.
// Nodes must be listed parents first; the original handles are preserved.
func FromDocument(doc *domain.SceneDocument) (*Scene, error) {
	s := NewScene()
	for _, rec := range doc.Nodes {
		if rec.ID == domain.NoBit {
			return nil, fmt.Errorf("node %q has no id", rec.Name)
		}
		if _, dup := s.nodes[rec.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %q", rec.ID)
		}
		kind := rec.Kind
		if kind == "" {
			kind = domain.KindTransform
		}
		if err := s.insert(rec.ID, rec.Name, kind, rec.Parent, rec.Attrs); err != nil {
			return nil, fmt.Errorf("failed to load node %q: %w", rec.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if err := s.Connect(e.Src, e.Dst); err != nil {
			return nil, fmt.Errorf("failed to load edge %s -> %s: %w", e.Src, e.Dst, err)
		}
	}
	return s, nil
}

// Snapshot exports the scene: hierarchy nodes in preorder, then network nodes.
func (s *Scene) Snapshot(name string) (*domain.SceneDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := &domain.SceneDocument{Name: name}
	record := func(id domain.BitID) {
		n := s.nodes[id]
		attrs := make(map[string]any, len(n.attrs))
		for k, v := range n.attrs {
			attrs[k] = v
		}
		doc.Nodes = append(doc.Nodes, domain.NodeRecord{
			ID:     n.id,
			Name:   n.name,
			Kind:   n.kind,
			Parent: n.parent,
			Attrs:  attrs,
		})
	}
	s.walk(s.roots, func(id domain.BitID) bool {
		record(id)
		return true
	})
	for _, id := range s.order {
		if s.nodes[id].kind == domain.KindNetwork {
			record(id)
		}
	}
	for _, e := range s.edges {
		doc.Edges = append(doc.Edges, domain.EdgeRecord{Src: e.src, Dst: e.dst})
	}
	return doc, nil
}

// normaliseAttr restores typed values that lose their type through YAML or JSON.
func normaliseAttr(key string, v any) any {
	if key != domain.AttrTranslate && key != domain.AttrRotate {
		return v
	}
	list, ok := v.([]any)
	if !ok || len(list) != 3 {
		return v
	}
	var out domain.Vec3
	for i, item := range list {
		switch n := item.(type) {
		case float64:
			out[i] = n
		case int:
			out[i] = float64(n)
		default:
			return v
		}
	}
	return out
}
