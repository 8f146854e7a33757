package dsl

import "github.com/aretw0/bitrig/pkg/domain"

// BitBuilder provides a fluent API for configuring a bit.
type BitBuilder struct {
	builder *Builder
	name    string
	id      domain.BitID
}

// ID returns the bit's handle.
func (n *BitBuilder) ID() domain.BitID {
	return n.id
}

// At sets the bit's world-space translation.
func (n *BitBuilder) At(x, y, z float64) *BitBuilder {
	if n.builder.err == nil {
		n.builder.err = n.builder.scene.SetAttr(n.id, domain.AttrTranslate, domain.Vec3{x, y, z})
	}
	return n
}

// Character marks the bit as the top of a character.
func (n *BitBuilder) Character(name string) *BitBuilder {
	n.builder.attach(n.id, domain.CharacterRoot{CharacterName: name})
	return n
}

// CharacterGroups marks the bit as the top of a character with explicit output group names.
func (n *BitBuilder) CharacterGroups(name, skeleton, rig string) *BitBuilder {
	n.builder.attach(n.id, domain.CharacterRoot{CharacterName: name, SkeletonGroupName: skeleton, RigGroupName: rig})
	return n
}

// Module marks the bit as a module root and links the module to the
// character on this bit or its nearest ancestor, if any.
func (n *BitBuilder) Module(name string, priority int) *BitBuilder {
	b := n.builder
	id := b.attach(n.id, domain.ModuleRoot{ModuleName: name, BuildPriority: priority})
	if b.err != nil {
		return n
	}
	if char, ok := b.enclosingCharacter(n.id); ok && b.err == nil {
		b.err = b.layer.LinkModule(char, id)
	}
	return n
}

// Joint attaches a joint component.
func (n *BitBuilder) Joint(name string) *BitBuilder {
	n.builder.attach(n.id, domain.BasicJoint{JointName: name})
	return n
}

// Curve attaches a curve control component.
func (n *BitBuilder) Curve(name, curveType string) *BitBuilder {
	n.builder.attach(n.id, domain.CurveControl{ControlName: name, CurveType: curveType, Size: 1})
	return n
}

// Locator attaches a locator control component.
func (n *BitBuilder) Locator(name string) *BitBuilder {
	n.builder.attach(n.id, domain.LocatorControl{ControlName: name, Size: 1})
	return n
}
