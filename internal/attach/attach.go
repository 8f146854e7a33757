// Package attach links typed component records to bits through graph edges.
//
// A component is stored as a network node carrying its encoded fields and a
// componentClass attribute. Two edges tie it to its bit:
//
//	bit.message       -> component.owner       (back-link, exactly one)
//	component.message -> bit.components        (forward list, attach order)
package attach

import (
	"fmt"

	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Layer is the entity/component attachment layer over a scene.
type Layer struct {
	scene ports.SceneGraph
}

// New creates a layer bound to scene.
func New(scene ports.SceneGraph) *Layer {
	return &Layer{scene: scene}
}

// Scene returns the underlying scene graph.
func (l *Layer) Scene() ports.SceneGraph {
	return l.scene
}

// Attach creates a record for c and links it to bit.
// A bit carries at most one component per class; a second attach fails with
// domain.ErrAlreadyAttached. A failed attach leaves the scene untouched.
func (l *Layer) Attach(bit domain.BitID, c domain.Component) (domain.ComponentID, error) {
	name, err := l.scene.Name(bit)
	if err != nil {
		return domain.NoBit, err
	}
	class := c.Class()
	if _, ok, err := l.HasComponent(bit, class); err != nil {
		return domain.NoBit, err
	} else if ok {
		return domain.NoBit, fmt.Errorf("%w: %s on %q", domain.ErrAlreadyAttached, class, name)
	}

	fields, err := encode(c)
	if err != nil {
		return domain.NoBit, fmt.Errorf("failed to encode %s: %w", class, err)
	}

	id, err := l.scene.Create(domain.KindNetwork, name+"_"+string(class), domain.NoBit)
	if err != nil {
		return domain.NoBit, err
	}
	// A half-wired record is removed so a failed attach leaves no trace.
	abort := func(err error) (domain.ComponentID, error) {
		_ = l.scene.Delete(id)
		return domain.NoBit, err
	}
	if err := l.scene.AddAttr(id, domain.AttrComponentClass, string(class)); err != nil {
		return abort(err)
	}
	for k, v := range fields {
		if err := l.scene.AddAttr(id, k, v); err != nil {
			return abort(err)
		}
	}
	if err := l.scene.Connect(domain.PlugOf(bit, domain.AttrMessage), domain.PlugOf(id, domain.AttrOwner)); err != nil {
		return abort(err)
	}
	if err := l.scene.Connect(domain.PlugOf(id, domain.AttrMessage), domain.PlugOf(bit, domain.AttrComponents)); err != nil {
		return abort(err)
	}
	return id, nil
}

// Detach removes the record id from bit.
func (l *Layer) Detach(bit domain.BitID, id domain.ComponentID) error {
	owner, err := l.Owner(id)
	if err != nil {
		return err
	}
	if owner != bit {
		return fmt.Errorf("%w: component %q is owned by %q, not %q", domain.ErrBrokenLink, id, owner, bit)
	}
	return l.scene.Delete(id)
}

// ComponentsOf returns every record attached to bit, in attach order.
func (l *Layer) ComponentsOf(bit domain.BitID) ([]domain.ComponentID, error) {
	srcs, err := l.scene.Sources(domain.PlugOf(bit, domain.AttrComponents))
	if err != nil {
		return nil, err
	}
	ids := make([]domain.ComponentID, 0, len(srcs))
	for _, p := range srcs {
		ids = append(ids, p.Bit)
	}
	return ids, nil
}

// HasComponent checks bit itself (not its ancestors) for class.
func (l *Layer) HasComponent(bit domain.BitID, class domain.Class) (domain.ComponentID, bool, error) {
	return l.Find(bit, domain.IsClass(class))
}

// Find returns the first record on bit whose class satisfies match.
func (l *Layer) Find(bit domain.BitID, match domain.Matcher) (domain.ComponentID, bool, error) {
	ids, err := l.ComponentsOf(bit)
	if err != nil {
		return domain.NoBit, false, err
	}
	for _, id := range ids {
		class, err := l.Class(id)
		if err != nil {
			return domain.NoBit, false, err
		}
		if match(class) {
			return id, true, nil
		}
	}
	return domain.NoBit, false, nil
}

// Class reads the class of record id.
func (l *Layer) Class(id domain.ComponentID) (domain.Class, error) {
	v, err := l.scene.GetAttr(id, domain.AttrComponentClass)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q has a %T class attribute", domain.ErrUnknownClass, id, v)
	}
	return domain.Class(s), nil
}

// Owner resolves the back-link of record id to its bit.
func (l *Layer) Owner(id domain.ComponentID) (domain.BitID, error) {
	srcs, err := l.scene.Sources(domain.PlugOf(id, domain.AttrOwner))
	if err != nil {
		return domain.NoBit, err
	}
	if len(srcs) != 1 {
		return domain.NoBit, fmt.Errorf("%w: component %q has %d owners", domain.ErrBrokenLink, id, len(srcs))
	}
	return srcs[0].Bit, nil
}

// Load decodes record id into its component variant.
func (l *Layer) Load(id domain.ComponentID) (domain.Component, error) {
	class, err := l.Class(id)
	if err != nil {
		return nil, err
	}
	attrs, err := l.scene.Attrs(id)
	if err != nil {
		return nil, err
	}
	c, err := domain.DecodeComponent(class, func(out any) error {
		return decode(attrs, out)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decode component %q: %w", id, err)
	}
	return c, nil
}

// LoadAs decodes record id and asserts its variant.
func LoadAs[T domain.Component](l *Layer, id domain.ComponentID) (T, error) {
	var zero T
	c, err := l.Load(id)
	if err != nil {
		return zero, err
	}
	t, ok := c.(T)
	if !ok {
		return zero, fmt.Errorf("component %q is %s, not %T", id, c.Class(), zero)
	}
	return t, nil
}

func encode(c domain.Component) (map[string]any, error) {
	fields := map[string]any{}
	if err := mapstructure.Decode(c, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decode(attrs map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(attrs)
}
