package memory

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aretw0/bitrig/pkg/domain"
)

// Scene implements ports.SceneGraph in memory.
// Safe for concurrent use, although the engine drives it from a single goroutine.
type Scene struct {
	mu    sync.RWMutex
	nodes map[domain.BitID]*node
	order []domain.BitID // creation order
	roots []domain.BitID
	edges []edge
	seq   int
	stats Stats
}

type node struct {
	id       domain.BitID
	name     string
	kind     domain.NodeKind
	parent   domain.BitID
	children []domain.BitID
	attrs    map[string]any
}

type edge struct {
	src domain.Plug
	dst domain.Plug
}

// Stats counts mutating operations. Tests use it to prove rebuilds are a fixed point.
type Stats struct {
	Creates   int
	Reparents int
	Deletes   int
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{
		nodes: make(map[domain.BitID]*node),
	}
}

// Stats returns the operation counters.
func (s *Scene) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *Scene) get(bit domain.BitID) (*node, error) {
	n, ok := s.nodes[bit]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrBitNotFound, bit)
	}
	return n, nil
}

func (s *Scene) nextID() domain.BitID {
	for {
		s.seq++
		id := domain.BitID(fmt.Sprintf("n%d", s.seq))
		if _, taken := s.nodes[id]; !taken {
			return id
		}
	}
}

// Children returns the direct children of bit.
func (s *Scene) Children(bit domain.BitID) ([]domain.BitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return nil, err
	}
	return append([]domain.BitID(nil), n.children...), nil
}

// Descendants returns every node below bit in preorder.
func (s *Scene) Descendants(bit domain.BitID) ([]domain.BitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return nil, err
	}
	var out []domain.BitID
	s.walk(n.children, func(id domain.BitID) bool {
		out = append(out, id)
		return true
	})
	return out, nil
}

// walk visits ids and their subtrees in preorder until visit returns false.
func (s *Scene) walk(ids []domain.BitID, visit func(domain.BitID) bool) bool {
	for _, id := range ids {
		if !visit(id) {
			return false
		}
		if !s.walk(s.nodes[id].children, visit) {
			return false
		}
	}
	return true
}

// Ancestors returns the parents of bit, nearest first.
func (s *Scene) Ancestors(bit domain.BitID) ([]domain.BitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return nil, err
	}
	var out []domain.BitID
	for p := n.parent; p != domain.NoBit; p = s.nodes[p].parent {
		out = append(out, p)
	}
	return out, nil
}

// Parent returns the direct parent of bit.
func (s *Scene) Parent(bit domain.BitID) (domain.BitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return domain.NoBit, err
	}
	return n.parent, nil
}

// Roots returns the world-level hierarchy nodes.
func (s *Scene) Roots() ([]domain.BitID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.BitID(nil), s.roots...), nil
}

// Name returns the short name of bit.
func (s *Scene) Name(bit domain.BitID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return "", err
	}
	return n.name, nil
}

// Path returns the "|root|child" identity of bit.
func (s *Scene) Path(bit domain.BitID) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return "", err
	}
	parts := []string{n.name}
	for p := n.parent; p != domain.NoBit; p = s.nodes[p].parent {
		parts = append(parts, s.nodes[p].name)
	}
	var sb strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		sb.WriteString("|")
		sb.WriteString(parts[i])
	}
	return sb.String(), nil
}

// Kind returns the node kind of bit.
func (s *Scene) Kind(bit domain.BitID) (domain.NodeKind, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return "", err
	}
	return n.kind, nil
}

// GetAttr reads a named attribute.
func (s *Scene) GetAttr(bit domain.BitID, name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return nil, err
	}
	v, ok := n.attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", domain.ErrAttrNotFound, bit, name)
	}
	return v, nil
}

// SetAttr writes a previously declared attribute.
func (s *Scene) SetAttr(bit domain.BitID, name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.get(bit)
	if err != nil {
		return err
	}
	if _, ok := n.attrs[name]; !ok {
		return fmt.Errorf("%w: %s.%s", domain.ErrAttrNotFound, bit, name)
	}
	n.attrs[name] = value
	return nil
}

// AddAttr declares an attribute with an initial value.
func (s *Scene) AddAttr(bit domain.BitID, name string, initial any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.get(bit)
	if err != nil {
		return err
	}
	if _, ok := n.attrs[name]; !ok {
		n.attrs[name] = initial
	}
	return nil
}

// Attrs returns a copy of every attribute on bit.
func (s *Scene) Attrs(bit domain.BitID) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(bit)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(n.attrs))
	for k, v := range n.attrs {
		out[k] = v
	}
	return out, nil
}

// Connect adds a graph edge. Connecting an existing edge is a no-op.
func (s *Scene) Connect(src, dst domain.Plug) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(src.Bit); err != nil {
		return err
	}
	if _, err := s.get(dst.Bit); err != nil {
		return err
	}
	for _, e := range s.edges {
		if e.src == src && e.dst == dst {
			return nil
		}
	}
	s.edges = append(s.edges, edge{src: src, dst: dst})
	return nil
}

// Disconnect removes a graph edge if present.
func (s *Scene) Disconnect(src, dst domain.Plug) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.edges {
		if e.src == src && e.dst == dst {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return nil
		}
	}
	return nil
}

// IsConnected reports whether the edge src -> dst exists.
func (s *Scene) IsConnected(src, dst domain.Plug) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.edges {
		if e.src == src && e.dst == dst {
			return true, nil
		}
	}
	return false, nil
}

// Sources returns the plugs feeding dst.
func (s *Scene) Sources(dst domain.Plug) ([]domain.Plug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.get(dst.Bit); err != nil {
		return nil, err
	}
	var out []domain.Plug
	for _, e := range s.edges {
		if e.dst == dst {
			out = append(out, e.src)
		}
	}
	return out, nil
}

// Destinations returns the plugs fed by src.
func (s *Scene) Destinations(src domain.Plug) ([]domain.Plug, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.get(src.Bit); err != nil {
		return nil, err
	}
	var out []domain.Plug
	for _, e := range s.edges {
		if e.src == src {
			out = append(out, e.dst)
		}
	}
	return out, nil
}

// Create adds a node. Hierarchy nodes get zeroed translate/rotate attributes.
func (s *Scene) Create(kind domain.NodeKind, name string, parent domain.BitID) (domain.BitID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID()
	if err := s.insert(id, name, kind, parent, nil); err != nil {
		return domain.NoBit, err
	}
	s.stats.Creates++
	return id, nil
}

func (s *Scene) insert(id domain.BitID, name string, kind domain.NodeKind, parent domain.BitID, attrs map[string]any) error {
	if kind == domain.KindNetwork {
		parent = domain.NoBit
	}
	if parent != domain.NoBit {
		p, err := s.get(parent)
		if err != nil {
			return fmt.Errorf("parent of %q: %w", name, err)
		}
		if p.kind == domain.KindNetwork {
			return fmt.Errorf("cannot parent %q under network node %q", name, parent)
		}
	}
	n := &node{id: id, name: name, kind: kind, parent: parent, attrs: make(map[string]any)}
	if kind != domain.KindNetwork {
		n.attrs[domain.AttrTranslate] = domain.Vec3{}
		n.attrs[domain.AttrRotate] = domain.Vec3{}
	}
	for k, v := range attrs {
		n.attrs[k] = normaliseAttr(k, v)
	}
	s.nodes[id] = n
	s.order = append(s.order, id)
	switch {
	case kind == domain.KindNetwork:
	case parent == domain.NoBit:
		s.roots = append(s.roots, id)
	default:
		s.nodes[parent].children = append(s.nodes[parent].children, id)
	}
	return nil
}

// Reparent moves bit under newParent (domain.NoBit for world).
func (s *Scene) Reparent(bit, newParent domain.BitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.get(bit)
	if err != nil {
		return err
	}
	if n.kind == domain.KindNetwork {
		return fmt.Errorf("cannot reparent network node %q", bit)
	}
	if newParent != domain.NoBit {
		p, err := s.get(newParent)
		if err != nil {
			return err
		}
		if p.kind == domain.KindNetwork {
			return fmt.Errorf("cannot parent %q under network node %q", bit, newParent)
		}
		for a := newParent; a != domain.NoBit; a = s.nodes[a].parent {
			if a == bit {
				return fmt.Errorf("%w: %q under %q", domain.ErrCycle, bit, newParent)
			}
		}
	}
	s.detach(n)
	n.parent = newParent
	if newParent == domain.NoBit {
		s.roots = append(s.roots, bit)
	} else {
		s.nodes[newParent].children = append(s.nodes[newParent].children, bit)
	}
	s.stats.Reparents++
	return nil
}

func (s *Scene) detach(n *node) {
	if n.kind == domain.KindNetwork {
		return
	}
	if n.parent == domain.NoBit {
		s.roots = remove(s.roots, n.id)
		return
	}
	p := s.nodes[n.parent]
	p.children = remove(p.children, n.id)
}

// Delete removes bit, its subtree and their edges.
func (s *Scene) Delete(bit domain.BitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.get(bit)
	if err != nil {
		return err
	}
	doomed := map[domain.BitID]bool{bit: true}
	s.walk(n.children, func(id domain.BitID) bool {
		doomed[id] = true
		return true
	})
	s.detach(n)
	for id := range doomed {
		delete(s.nodes, id)
	}
	order := s.order[:0]
	for _, id := range s.order {
		if !doomed[id] {
			order = append(order, id)
		}
	}
	s.order = order
	edges := s.edges[:0]
	for _, e := range s.edges {
		if !doomed[e.src.Bit] && !doomed[e.dst.Bit] {
			edges = append(edges, e)
		}
	}
	s.edges = edges
	s.stats.Deletes++
	return nil
}

// Exists finds the first node named name, in creation order.
func (s *Scene) Exists(name string) (domain.BitID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if s.nodes[id].name == name {
			return id, true
		}
	}
	return domain.NoBit, false
}

// FindDescendantByName searches below root, depth first.
func (s *Scene) FindDescendantByName(root domain.BitID, name string) (domain.BitID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.get(root)
	if err != nil {
		return domain.NoBit, false, err
	}
	found := domain.NoBit
	s.walk(n.children, func(id domain.BitID) bool {
		if s.nodes[id].name == name {
			found = id
			return false
		}
		return true
	})
	return found, found != domain.NoBit, nil
}

// MatchTransform copies src's translate and rotate onto dst.
func (s *Scene) MatchTransform(dst, src domain.BitID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.get(dst)
	if err != nil {
		return err
	}
	from, err := s.get(src)
	if err != nil {
		return err
	}
	for _, k := range []string{domain.AttrTranslate, domain.AttrRotate} {
		if v, ok := from.attrs[k]; ok {
			d.attrs[k] = v
		}
	}
	return nil
}

func remove(ids []domain.BitID, id domain.BitID) []domain.BitID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
