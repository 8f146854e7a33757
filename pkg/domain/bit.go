package domain

// BitID is the stable handle of a node in the scene graph.
// Handles survive reparenting; the path identity does not.
type BitID string

// NoBit is the zero handle. As a parent it means "world" (no parent).
const NoBit BitID = ""

// ComponentID is the handle of the network node holding a component record.
type ComponentID = BitID

// NodeKind classifies nodes created in the scene graph.
type NodeKind string

const (
	// KindTransform is an authoring bit.
	KindTransform NodeKind = "transform"
	// KindJoint is a derived skeleton joint.
	KindJoint NodeKind = "joint"
	// KindControl is a derived visual control.
	KindControl NodeKind = "control"
	// KindGroup is a container (build group, spacer, permanent output group).
	KindGroup NodeKind = "group"
	// KindNetwork holds a component record. Network nodes live outside the hierarchy.
	KindNetwork NodeKind = "network"
)

// Plug addresses a named attribute on a node; it is the endpoint of a graph edge.
type Plug struct {
	Bit  BitID  `json:"bit" yaml:"bit"`
	Attr string `json:"attr" yaml:"attr"`
}

// PlugOf is a shorthand constructor.
func PlugOf(bit BitID, attr string) Plug {
	return Plug{Bit: bit, Attr: attr}
}

// String renders the plug as "bit.attr".
func (p Plug) String() string {
	return string(p.Bit) + "." + p.Attr
}

// Well-known attribute names.
const (
	AttrMessage        = "message"
	AttrOwner          = "owner"
	AttrComponents     = "components"
	AttrModuleLinks    = "moduleLinks"
	AttrCharacterRoot  = "characterRoot"
	AttrComponentClass = "componentClass"
	AttrTranslate      = "translate"
	AttrRotate         = "rotate"
)

// Vec3 is a world-space triple (translation or euler rotation).
type Vec3 [3]float64
