package attach

import (
	"fmt"

	"github.com/aretw0/bitrig/pkg/domain"
)

// LinkModule registers module as owned by character. Link order is the
// order of LinkModule calls.
func (l *Layer) LinkModule(character, module domain.ComponentID) error {
	if err := l.expect(character, domain.ClassCharacterRoot); err != nil {
		return err
	}
	if err := l.expect(module, domain.ClassModuleRoot); err != nil {
		return err
	}
	if err := l.scene.Connect(domain.PlugOf(module, domain.AttrMessage), domain.PlugOf(character, domain.AttrModuleLinks)); err != nil {
		return err
	}
	return l.scene.Connect(domain.PlugOf(character, domain.AttrMessage), domain.PlugOf(module, domain.AttrCharacterRoot))
}

// ModuleLinks returns the module records linked to character, in link order.
// Every link must resolve to an owning bit.
func (l *Layer) ModuleLinks(character domain.ComponentID) ([]domain.ComponentID, error) {
	if err := l.expect(character, domain.ClassCharacterRoot); err != nil {
		return nil, err
	}
	srcs, err := l.scene.Sources(domain.PlugOf(character, domain.AttrModuleLinks))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ComponentID, 0, len(srcs))
	for _, p := range srcs {
		if err := l.expect(p.Bit, domain.ClassModuleRoot); err != nil {
			return nil, fmt.Errorf("%w: module link %s: %v", domain.ErrBrokenLink, p, err)
		}
		if _, err := l.Owner(p.Bit); err != nil {
			return nil, err
		}
		out = append(out, p.Bit)
	}
	return out, nil
}

// CharacterOf returns the character record module is linked to, if any.
func (l *Layer) CharacterOf(module domain.ComponentID) (domain.ComponentID, bool, error) {
	srcs, err := l.scene.Sources(domain.PlugOf(module, domain.AttrCharacterRoot))
	if err != nil {
		return domain.NoBit, false, err
	}
	switch len(srcs) {
	case 0:
		return domain.NoBit, false, nil
	case 1:
		return srcs[0].Bit, true, nil
	}
	return domain.NoBit, false, fmt.Errorf("%w: module %q linked to %d characters", domain.ErrBrokenLink, module, len(srcs))
}

func (l *Layer) expect(id domain.ComponentID, class domain.Class) error {
	got, err := l.Class(id)
	if err != nil {
		return err
	}
	if got != class {
		return fmt.Errorf("component %q is %s, expected %s", id, got, class)
	}
	return nil
}
