package dsl

import (
	"fmt"

	"github.com/aretw0/bitrig/internal/attach"
	"github.com/aretw0/bitrig/pkg/adapters/memory"
	"github.com/aretw0/bitrig/pkg/domain"
)

// Builder manages the scene construction. The first error is kept and
// returned by Build; later calls become no-ops.
type Builder struct {
	scene *memory.Scene
	layer *attach.Layer
	bits  map[string]domain.BitID
	err   error
}

// New creates a new scene builder.
func New() *Builder {
	scene := memory.NewScene()
	return &Builder{
		scene: scene,
		layer: attach.New(scene),
		bits:  make(map[string]domain.BitID),
	}
}

// Bit creates an authoring bit under the bit called parent ("" for world).
// If the bit already exists, it returns the existing builder.
func (b *Builder) Bit(name, parent string) *BitBuilder {
	nb := &BitBuilder{builder: b, name: name}
	if b.err != nil {
		return nb
	}
	if id, ok := b.bits[name]; ok {
		nb.id = id
		return nb
	}
	parentID := domain.NoBit
	if parent != "" {
		id, ok := b.bits[parent]
		if !ok {
			b.err = fmt.Errorf("bit %q: unknown parent %q", name, parent)
			return nb
		}
		parentID = id
	}
	id, err := b.scene.Create(domain.KindTransform, name, parentID)
	if err != nil {
		b.err = err
		return nb
	}
	b.bits[name] = id
	nb.id = id
	return nb
}

// ID returns the handle of the bit called name, or domain.NoBit.
func (b *Builder) ID(name string) domain.BitID {
	return b.bits[name]
}

// Build returns the authored scene.
func (b *Builder) Build() (*memory.Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.scene, nil
}

// MustBuild is like Build but panics on error. Intended for tests and examples.
func (b *Builder) MustBuild() *memory.Scene {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (b *Builder) attach(id domain.BitID, c domain.Component) domain.ComponentID {
	if b.err != nil {
		return domain.NoBit
	}
	cid, err := b.layer.Attach(id, c)
	if err != nil {
		b.err = err
	}
	return cid
}

// enclosingCharacter finds the character record on bit or its nearest ancestor.
func (b *Builder) enclosingCharacter(bit domain.BitID) (domain.ComponentID, bool) {
	chain, err := b.scene.Ancestors(bit)
	if err != nil {
		b.err = err
		return domain.NoBit, false
	}
	for _, a := range append([]domain.BitID{bit}, chain...) {
		id, ok, err := b.layer.HasComponent(a, domain.ClassCharacterRoot)
		if err != nil {
			b.err = err
			return domain.NoBit, false
		}
		if ok {
			return id, true
		}
	}
	return domain.NoBit, false
}
