package runtime

import (
	"github.com/aretw0/bitrig/internal/attach"
	"github.com/aretw0/bitrig/pkg/domain"
)

// Hit is a qualifying ancestor found by the Locator.
type Hit struct {
	Bit       domain.BitID
	Component domain.ComponentID
}

// Locator finds the nearest ancestor carrying a matching component.
// Both searches scan nearest first and stop at the first match.
type Locator struct {
	layer *attach.Layer
}

// NewLocator creates a locator over layer.
func NewLocator(layer *attach.Layer) *Locator {
	return &Locator{layer: layer}
}

// AncestorChain lists the ancestors of bit, nearest first, world excluded.
func (l *Locator) AncestorChain(bit domain.BitID) ([]domain.BitID, error) {
	return l.layer.Scene().Ancestors(bit)
}

// NearestInModule only considers ancestors that belong to moduleBits.
// moduleBits need not contain bit itself.
func (l *Locator) NearestInModule(bit domain.BitID, moduleBits []domain.BitID, match domain.Matcher) (Hit, bool, error) {
	if len(moduleBits) == 0 {
		return Hit{}, false, nil
	}
	members := make(map[domain.BitID]bool, len(moduleBits))
	for _, b := range moduleBits {
		members[b] = true
	}
	return l.scan(bit, func(b domain.BitID) bool { return members[b] }, match)
}

// NearestAnywhere considers every ancestor regardless of module boundaries.
func (l *Locator) NearestAnywhere(bit domain.BitID, match domain.Matcher) (Hit, bool, error) {
	return l.scan(bit, nil, match)
}

func (l *Locator) scan(bit domain.BitID, within func(domain.BitID) bool, match domain.Matcher) (Hit, bool, error) {
	chain, err := l.AncestorChain(bit)
	if err != nil {
		return Hit{}, false, err
	}
	for _, a := range chain {
		if within != nil && !within(a) {
			continue
		}
		id, ok, err := l.layer.Find(a, match)
		if err != nil {
			return Hit{}, false, err
		}
		if ok {
			return Hit{Bit: a, Component: id}, true, nil
		}
	}
	return Hit{}, false, nil
}
