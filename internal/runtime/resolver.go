package runtime

import (
	"fmt"

	"github.com/aretw0/bitrig/internal/attach"
	"github.com/aretw0/bitrig/pkg/domain"
)

// Module is a resolved module root.
type Module struct {
	Name      string
	Root      domain.BitID
	Component domain.ComponentID
	Priority  int
	// Implicit is set for the module rooted at the character's top bit.
	Implicit bool
}

// Resolver computes module bit-sets.
type Resolver struct {
	layer *attach.Layer
}

// NewResolver creates a resolver over layer.
func NewResolver(layer *attach.Layer) *Resolver {
	return &Resolver{layer: layer}
}

// ModuleBits returns the bits owned by the module rooted at root, root first,
// in preorder. Nested module roots and everything below them are excluded,
// at any depth. Reaching a bit twice is reported as domain.ErrCycle.
func (r *Resolver) ModuleBits(root domain.BitID) ([]domain.BitID, error) {
	scene := r.layer.Scene()
	children, err := scene.Children(root)
	if err != nil {
		return nil, err
	}

	out := []domain.BitID{root}
	visited := map[domain.BitID]bool{root: true}

	var visit func(ids []domain.BitID) error
	visit = func(ids []domain.BitID) error {
		for _, id := range ids {
			if visited[id] {
				return fmt.Errorf("%w: %q reached twice below %q", domain.ErrCycle, id, root)
			}
			visited[id] = true

			_, nested, err := r.layer.HasComponent(id, domain.ClassModuleRoot)
			if err != nil {
				return err
			}
			if nested {
				continue
			}
			out = append(out, id)

			kids, err := scene.Children(id)
			if err != nil {
				return err
			}
			if err := visit(kids); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(children); err != nil {
		return nil, err
	}
	return out, nil
}

// Module loads the module rooted at bit.
func (r *Resolver) Module(bit domain.BitID) (Module, error) {
	id, ok, err := r.layer.HasComponent(bit, domain.ClassModuleRoot)
	if err != nil {
		return Module{}, err
	}
	if !ok {
		name, _ := r.layer.Scene().Name(bit)
		return Module{}, fmt.Errorf("bit %q carries no %s", name, domain.ClassModuleRoot)
	}
	return r.load(bit, id)
}

func (r *Resolver) load(bit domain.BitID, id domain.ComponentID) (Module, error) {
	c, err := attach.LoadAs[domain.ModuleRoot](r.layer, id)
	if err != nil {
		return Module{}, err
	}
	name := c.ModuleName
	if name == "" {
		if name, err = r.layer.Scene().Name(bit); err != nil {
			return Module{}, err
		}
	}
	return Module{Name: name, Root: bit, Component: id, Priority: c.BuildPriority}, nil
}
