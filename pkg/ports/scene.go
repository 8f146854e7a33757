package ports

import "github.com/aretw0/bitrig/pkg/domain"

// Hierarchy exposes the parent/child transform edges of the scene.
type Hierarchy interface {
	// Children returns the direct children of bit, in insertion order.
	Children(bit domain.BitID) ([]domain.BitID, error)

	// Descendants returns every node below bit in preorder. The order is stable within one call.
	Descendants(bit domain.BitID) ([]domain.BitID, error)

	// Ancestors returns the parents of bit, nearest first. The world is not included.
	Ancestors(bit domain.BitID) ([]domain.BitID, error)

	// Parent returns the direct parent, or domain.NoBit for world-level nodes.
	Parent(bit domain.BitID) (domain.BitID, error)

	// Roots returns the world-level hierarchy nodes.
	Roots() ([]domain.BitID, error)

	Name(bit domain.BitID) (string, error)
	Path(bit domain.BitID) (string, error)
	Kind(bit domain.BitID) (domain.NodeKind, error)
}

// Attributes exposes raw named attribute storage.
type Attributes interface {
	// GetAttr returns domain.ErrAttrNotFound when name is absent.
	GetAttr(bit domain.BitID, name string) (any, error)

	// SetAttr returns domain.ErrAttrNotFound when name was never added.
	SetAttr(bit domain.BitID, name string, value any) error

	// AddAttr declares name with an initial value. Declaring an existing attribute is a no-op.
	AddAttr(bit domain.BitID, name string, initial any) error

	// Attrs returns a copy of every attribute on bit.
	Attrs(bit domain.BitID) (map[string]any, error)
}

// Connections exposes graph edges between plugs, independent of the hierarchy.
type Connections interface {
	Connect(src, dst domain.Plug) error
	Disconnect(src, dst domain.Plug) error
	IsConnected(src, dst domain.Plug) (bool, error)

	// Sources returns the plugs feeding dst, in edge creation order.
	Sources(dst domain.Plug) ([]domain.Plug, error)

	// Destinations returns the plugs fed by src, in edge creation order.
	Destinations(src domain.Plug) ([]domain.Plug, error)
}

// Editor creates, moves and deletes nodes.
type Editor interface {
	// Create adds a node under parent (domain.NoBit for world). Network nodes ignore parent.
	Create(kind domain.NodeKind, name string, parent domain.BitID) (domain.BitID, error)

	// Reparent moves bit under newParent, keeping world-space transforms.
	// Moving a node below itself fails with domain.ErrCycle.
	Reparent(bit, newParent domain.BitID) error

	// Delete removes bit, its subtree and every edge touching them.
	Delete(bit domain.BitID) error

	// Exists finds the first node named name anywhere in the scene.
	Exists(name string) (domain.BitID, bool)

	// FindDescendantByName searches the subtree below root, depth first.
	FindDescendantByName(root domain.BitID, name string) (domain.BitID, bool, error)

	// MatchTransform copies src's world-space translation and rotation onto dst.
	MatchTransform(dst, src domain.BitID) error
}

// SceneGraph is the full contract of the host scene service.
// The engine is its sole mutator during a build.
type SceneGraph interface {
	Hierarchy
	Attributes
	Connections
	Editor
}

// Snapshotter is implemented by scenes that can be exported to a document.
type Snapshotter interface {
	Snapshot(name string) (*domain.SceneDocument, error)
}
