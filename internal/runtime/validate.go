package runtime

import (
	"fmt"

	"github.com/aretw0/bitrig/pkg/domain"
)

// ModuleSet is a module together with the bits it owns.
type ModuleSet struct {
	Module
	Bits []domain.BitID
}

// Partition resolves the bit-set of every module of the character rooted at
// bit, in build order.
func (b *Builder) Partition(bit domain.BitID) ([]ModuleSet, error) {
	_, modules, err := b.Modules(bit)
	if err != nil {
		return nil, err
	}
	out := make([]ModuleSet, 0, len(modules))
	for _, m := range modules {
		bits, err := b.resolver.ModuleBits(m.Root)
		if err != nil {
			return nil, &domain.BuildError{Module: m.Name, Err: err}
		}
		out = append(out, ModuleSet{Module: m, Bits: bits})
	}
	return out, nil
}

// Validate checks the authoring data of the character rooted at bit without
// touching the scene: the root module exists, every module link resolves, the
// module bit-sets partition the character subtree, and artifact names are
// unique per kind. All problems are reported together.
func (b *Builder) Validate(bit domain.BitID) error {
	_, modules, err := b.Modules(bit)
	if err != nil {
		return err
	}

	var errs []error
	owner := make(map[domain.BitID]string)
	joints := make(map[string]domain.BitID)
	controls := make(map[string]domain.BitID)

	for _, m := range modules {
		bits, err := b.resolver.ModuleBits(m.Root)
		if err != nil {
			errs = append(errs, &domain.BuildError{Module: m.Name, Err: err})
			continue
		}
		for _, bit := range bits {
			name, _ := b.scene.Name(bit)
			if prev, taken := owner[bit]; taken {
				errs = append(errs, fmt.Errorf("bit %q belongs to modules %q and %q", name, prev, m.Name))
				continue
			}
			owner[bit] = m.Name

			if err := b.checkName(bit, domain.BuildsJoint, joints); err != nil {
				errs = append(errs, &domain.BuildError{Module: m.Name, Bit: name, Class: domain.ClassBasicJoint, Err: err})
			}
			if err := b.checkName(bit, domain.BuildsControl, controls); err != nil {
				errs = append(errs, &domain.BuildError{Module: m.Name, Bit: name, Err: err})
			}
		}
	}

	all, err := b.scene.Descendants(bit)
	if err != nil {
		return err
	}
	for _, d := range append([]domain.BitID{bit}, all...) {
		if _, ok := owner[d]; ok {
			continue
		}
		name, _ := b.scene.Name(d)
		errs = append(errs, fmt.Errorf("bit %q is not covered by any linked module", name))
	}

	return domain.Join(errs)
}

func (b *Builder) checkName(bit domain.BitID, match domain.Matcher, seen map[string]domain.BitID) error {
	id, ok, err := b.layer.Find(bit, match)
	if err != nil || !ok {
		return err
	}
	var name string
	if match(domain.ClassBasicJoint) {
		spec, err := b.jointSpec(bit, id)
		if err != nil {
			return err
		}
		name = spec.Name
	} else {
		spec, err := b.controlSpec(bit, id)
		if err != nil {
			return err
		}
		name = spec.Name
	}
	if _, dup := seen[name]; dup {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateName, name)
	}
	seen[name] = bit
	return nil
}
