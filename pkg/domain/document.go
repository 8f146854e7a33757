package domain

// SceneDocument is a serialisable snapshot of a scene graph.
type SceneDocument struct {
	Name  string         `json:"name" yaml:"name"`
	Nodes []NodeRecord   `json:"nodes" yaml:"nodes"`
	Edges []EdgeRecord   `json:"edges,omitempty" yaml:"edges,omitempty"`
	Meta  map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// NodeRecord is one node of a SceneDocument. Nodes are listed parents first.
type NodeRecord struct {
	ID     BitID          `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Kind   NodeKind       `json:"kind" yaml:"kind"`
	Parent BitID          `json:"parent,omitempty" yaml:"parent,omitempty"`
	Attrs  map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// EdgeRecord is one graph edge of a SceneDocument, in creation order.
type EdgeRecord struct {
	Src Plug `json:"src" yaml:"src"`
	Dst Plug `json:"dst" yaml:"dst"`
}
