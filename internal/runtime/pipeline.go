package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/bitrig/pkg/domain"
)

// moduleBuild is the state of one module across the joint and control passes.
type moduleBuild struct {
	ctx     context.Context
	module  Module
	bits    []domain.BitID
	members map[domain.BitID]bool
	group   domain.BitID

	// Permanent groups searched for artifacts of an earlier build. NoBit when
	// the module is built outside a character.
	skeleton domain.BitID
	rig      domain.BitID

	// Artifacts parented to the build group, waiting for cross-module placement.
	topJoints   []domain.Artifact
	topControls []domain.Artifact

	// Names claimed by earlier modules of the same character build. Nil when
	// the module is built outside a character.
	claims *nameClaims

	report *domain.ModuleReport
}

// nameClaims records which bit produced each joint and control name during one
// character build, so two bits never share an artifact.
type nameClaims struct {
	joints   map[string]domain.BitID
	controls map[string]domain.BitID
}

func newNameClaims() *nameClaims {
	return &nameClaims{joints: make(map[string]domain.BitID), controls: make(map[string]domain.BitID)}
}

// claim reserves name for bit. A name already held by another bit of the
// character is domain.ErrDuplicateName.
func (b *Builder) claim(mb *moduleBuild, kind domain.ArtifactKind, name string, bit domain.BitID) error {
	if mb.claims == nil {
		return nil
	}
	set := mb.claims.joints
	if kind == domain.ArtifactControl {
		set = mb.claims.controls
	}
	if prev, ok := set[name]; ok && prev != bit {
		owner, err := b.scene.Name(prev)
		if err != nil {
			owner = string(prev)
		}
		return fmt.Errorf("%w: %s %q is already built for bit %q", domain.ErrDuplicateName, kind, name, owner)
	}
	set[name] = bit
	return nil
}

func (b *Builder) newModuleBuild(ctx context.Context, m Module) (*moduleBuild, error) {
	bits, err := b.resolver.ModuleBits(m.Root)
	if err != nil {
		return nil, err
	}
	members := make(map[domain.BitID]bool, len(bits))
	for _, bit := range bits {
		members[bit] = true
	}
	return &moduleBuild{
		ctx:     ctx,
		module:  m,
		bits:    bits,
		members: members,
		report:  &domain.ModuleReport{Module: m.Name, Root: m.Root, Priority: m.Priority},
	}, nil
}

func buildGroupName(module string) string {
	return module + "_build"
}

// ensureBuildGroup creates the module's temporary group at world level, aligned
// with the module root. A group left over from the joint pass or an earlier
// build is reused.
func (b *Builder) ensureBuildGroup(mb *moduleBuild) (domain.BitID, error) {
	if mb.group != domain.NoBit {
		return mb.group, nil
	}
	name := buildGroupName(mb.module.Name)
	if id, ok := b.scene.Exists(name); ok {
		if parent, err := b.scene.Parent(id); err == nil && parent == domain.NoBit {
			mb.group = id
			return id, nil
		}
	}
	id, err := b.scene.Create(domain.KindGroup, name, domain.NoBit)
	if err != nil {
		return domain.NoBit, err
	}
	if err := b.scene.MatchTransform(id, mb.bits[0]); err != nil {
		return domain.NoBit, err
	}
	b.emitCreate(mb.ctx, mb.module.Name, domain.ArtifactGroup, name, id, domain.NoBit)
	mb.group = id
	return id, nil
}

// findExisting looks for an artifact of an earlier build by name, first in the
// permanent group, then in the build group.
func (b *Builder) findExisting(home, group domain.BitID, kind domain.NodeKind, name string) (domain.BitID, bool, error) {
	for _, root := range []domain.BitID{home, group} {
		if root == domain.NoBit {
			continue
		}
		id, ok, err := b.scene.FindDescendantByName(root, name)
		if err != nil {
			return domain.NoBit, false, err
		}
		if !ok {
			continue
		}
		k, err := b.scene.Kind(id)
		if err != nil {
			return domain.NoBit, false, err
		}
		if k == kind {
			return id, true, nil
		}
	}
	return domain.NoBit, false, nil
}

// setParent reparents handle only when its parent differs. It reports whether
// the scene changed.
func (b *Builder) setParent(mb *moduleBuild, kind domain.ArtifactKind, name string, handle, parent domain.BitID) (bool, error) {
	current, err := b.scene.Parent(handle)
	if err != nil {
		return false, err
	}
	if current == parent {
		return false, nil
	}
	if err := b.scene.Reparent(handle, parent); err != nil {
		return false, err
	}
	mb.report.Reparented++
	b.emitReparent(mb.ctx, mb.module.Name, kind, name, handle, parent)
	return true, nil
}

// placeTop parents a module-top artifact to the build group, unless it is a
// reused artifact already sitting in its permanent group; the orchestrator
// verifies that placement afterwards.
func (b *Builder) placeTop(mb *moduleBuild, kind domain.ArtifactKind, a domain.Artifact, home domain.BitID, reused bool) error {
	if reused && home != domain.NoBit {
		parent, err := b.scene.Parent(a.Handle)
		if err != nil {
			return err
		}
		if parent != mb.group && parent != domain.NoBit {
			return nil
		}
	}
	_, err := b.setParent(mb, kind, a.Name, a.Handle, mb.group)
	return err
}

func (b *Builder) fail(mb *moduleBuild, bit domain.BitID, class domain.Class, err error) error {
	name, nameErr := b.scene.Name(bit)
	if nameErr != nil {
		name = string(bit)
	}
	return &domain.BuildError{Module: mb.module.Name, Bit: name, Class: class, Err: err}
}

func missingAncestor(name string) error {
	return fmt.Errorf("%w: %q was not built before its descendants", domain.ErrMissingAncestor, name)
}
