package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/bitrig/pkg/domain"
)

// BuildJoints runs the joint pipeline for a module on its own: every bit
// carrying a joint component gets one joint, chained to the joint of its nearest
// joint ancestor or, failing that, to the module's build group.
// A module without joints returns an empty list and no error.
func (b *Builder) BuildJoints(ctx context.Context, m Module) ([]domain.Artifact, error) {
	mb, err := b.newModuleBuild(ctx, m)
	if err != nil {
		return nil, err
	}
	return b.buildJoints(mb)
}

func (b *Builder) buildJoints(mb *moduleBuild) ([]domain.Artifact, error) {
	built := make(map[string]domain.Artifact)
	var out []domain.Artifact

	for i, bit := range mb.bits {
		id, ok, err := b.layer.Find(bit, domain.BuildsJoint)
		if err != nil {
			return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
		}
		if !ok {
			continue
		}
		spec, err := b.jointSpec(bit, id)
		if err != nil {
			return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
		}
		if _, dup := built[spec.Name]; dup {
			return nil, b.fail(mb, bit, domain.ClassBasicJoint, fmt.Errorf("%w: joint %q", domain.ErrDuplicateName, spec.Name))
		}
		if err := b.claim(mb, domain.ArtifactJoint, spec.Name, bit); err != nil {
			return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
		}

		group, err := b.ensureBuildGroup(mb)
		if err != nil {
			return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
		}

		// Root-of-module joints always start in the build group.
		parent := group
		if i > 0 && len(mb.bits) > 1 {
			hit, found, err := b.locator.NearestAnywhere(bit, domain.BuildsJoint)
			if err != nil {
				return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
			}
			// Ancestors outside the module are wired by the orchestrator.
			if found && mb.members[hit.Bit] {
				anc, err := b.jointSpec(hit.Bit, hit.Component)
				if err != nil {
					return nil, b.fail(mb, hit.Bit, domain.ClassBasicJoint, err)
				}
				a, ok := built[anc.Name]
				if !ok {
					return nil, b.fail(mb, bit, domain.ClassBasicJoint, missingAncestor(anc.Name))
				}
				parent = a.Node
			}
		}

		art, reused, err := b.ensureJoint(mb, bit, spec.Name, parent)
		if err != nil {
			return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
		}
		if parent == group {
			if err := b.placeTop(mb, domain.ArtifactJoint, art, mb.skeleton, reused); err != nil {
				return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
			}
			mb.topJoints = append(mb.topJoints, art)
		} else if _, err := b.setParent(mb, domain.ArtifactJoint, art.Name, art.Handle, parent); err != nil {
			return nil, b.fail(mb, bit, domain.ClassBasicJoint, err)
		}

		built[spec.Name] = art
		out = append(out, art)
	}

	mb.report.Joints = out
	return out, nil
}

// ensureJoint reuses a joint of an earlier build or creates one under parent.
func (b *Builder) ensureJoint(mb *moduleBuild, bit domain.BitID, name string, parent domain.BitID) (domain.Artifact, bool, error) {
	art := domain.Artifact{Bit: bit, Name: name}
	node, reused, err := b.findExisting(mb.skeleton, mb.group, domain.KindJoint, name)
	if err != nil {
		return art, false, err
	}
	if reused {
		mb.report.Reused++
	} else {
		if node, err = b.scene.Create(domain.KindJoint, name, parent); err != nil {
			return art, false, err
		}
		mb.report.Created++
		b.emitCreate(mb.ctx, mb.module.Name, domain.ArtifactJoint, name, node, parent)
	}
	if err := b.scene.MatchTransform(node, bit); err != nil {
		return art, false, err
	}
	art.Node, art.Handle = node, node
	return art, reused, nil
}

func (b *Builder) jointSpec(bit domain.BitID, id domain.ComponentID) (domain.JointSpec, error) {
	c, err := b.layer.Load(id)
	if err != nil {
		return domain.JointSpec{}, err
	}
	src, ok := c.(domain.JointSource)
	if !ok {
		return domain.JointSpec{}, fmt.Errorf("component %s does not build a joint", c.Class())
	}
	spec := src.Joint()
	if spec.Name == "" {
		name, err := b.scene.Name(bit)
		if err != nil {
			return spec, err
		}
		spec.Name = name + "_jnt"
	}
	return spec, nil
}
