package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/bitrig/pkg/domain"
)

// BuildControls runs the control pipeline for a module on its own. Controls only
// chain to control ancestors inside the module; each control sits under a
// spacer, and the spacer is what gets parented.
func (b *Builder) BuildControls(ctx context.Context, m Module) ([]domain.Artifact, error) {
	mb, err := b.newModuleBuild(ctx, m)
	if err != nil {
		return nil, err
	}
	return b.buildControls(mb)
}

func (b *Builder) buildControls(mb *moduleBuild) ([]domain.Artifact, error) {
	built := make(map[string]domain.Artifact)
	var out []domain.Artifact

	for i, bit := range mb.bits {
		id, ok, err := b.layer.Find(bit, domain.BuildsControl)
		if err != nil {
			return nil, b.fail(mb, bit, "", err)
		}
		if !ok {
			continue
		}
		class, err := b.layer.Class(id)
		if err != nil {
			return nil, b.fail(mb, bit, "", err)
		}
		spec, err := b.controlSpec(bit, id)
		if err != nil {
			return nil, b.fail(mb, bit, class, err)
		}
		if _, dup := built[spec.Name]; dup {
			return nil, b.fail(mb, bit, class, fmt.Errorf("%w: control %q", domain.ErrDuplicateName, spec.Name))
		}
		if err := b.claim(mb, domain.ArtifactControl, spec.Name, bit); err != nil {
			return nil, b.fail(mb, bit, class, err)
		}

		group, err := b.ensureBuildGroup(mb)
		if err != nil {
			return nil, b.fail(mb, bit, class, err)
		}

		parent := group
		if i > 0 && len(mb.bits) > 1 {
			hit, found, err := b.locator.NearestInModule(bit, mb.bits, domain.BuildsControl)
			if err != nil {
				return nil, b.fail(mb, bit, class, err)
			}
			if found {
				anc, err := b.controlSpec(hit.Bit, hit.Component)
				if err != nil {
					return nil, b.fail(mb, hit.Bit, class, err)
				}
				a, ok := built[anc.Name]
				if !ok {
					return nil, b.fail(mb, bit, class, missingAncestor(anc.Name))
				}
				parent = a.Node
			}
		}

		art, reused, err := b.ensureControl(mb, bit, spec, parent)
		if err != nil {
			return nil, b.fail(mb, bit, class, err)
		}
		if parent == group {
			if err := b.placeTop(mb, domain.ArtifactSpacer, art, mb.rig, reused); err != nil {
				return nil, b.fail(mb, bit, class, err)
			}
			mb.topControls = append(mb.topControls, art)
		} else if _, err := b.setParent(mb, domain.ArtifactSpacer, art.Name, art.Handle, parent); err != nil {
			return nil, b.fail(mb, bit, class, err)
		}

		built[spec.Name] = art
		out = append(out, art)
	}

	mb.report.Controls = out
	return out, nil
}

func spacerName(control string) string {
	return control + "_spacer"
}

// ensureControl reuses a control (and its spacer) of an earlier build or creates
// the spacer under parent with the control inside it.
func (b *Builder) ensureControl(mb *moduleBuild, bit domain.BitID, spec domain.ControlSpec, parent domain.BitID) (domain.Artifact, bool, error) {
	art := domain.Artifact{Bit: bit, Name: spec.Name}

	ctl, reused, err := b.findExisting(mb.rig, mb.group, domain.KindControl, spec.Name)
	if err != nil {
		return art, false, err
	}
	var spacer domain.BitID
	if reused {
		if spacer, err = b.scene.Parent(ctl); err != nil {
			return art, false, err
		}
		if name, _ := b.scene.Name(spacer); spacer == domain.NoBit || name != spacerName(spec.Name) {
			return art, false, fmt.Errorf("control %q lost its spacer", spec.Name)
		}
		mb.report.Reused++
	} else {
		if spacer, err = b.scene.Create(domain.KindGroup, spacerName(spec.Name), parent); err != nil {
			return art, false, err
		}
		b.emitCreate(mb.ctx, mb.module.Name, domain.ArtifactSpacer, spacerName(spec.Name), spacer, parent)
		if ctl, err = b.scene.Create(domain.KindControl, spec.Name, spacer); err != nil {
			return art, false, err
		}
		b.emitCreate(mb.ctx, mb.module.Name, domain.ArtifactControl, spec.Name, ctl, spacer)
		mb.report.Created += 2
		attrs := []struct {
			name  string
			value any
		}{
			{"shape", spec.Shape},
			{"size", spec.Size},
			{"color", spec.Color},
		}
		for _, a := range attrs {
			if err := b.scene.AddAttr(ctl, a.name, a.value); err != nil {
				return art, false, err
			}
		}
	}
	for _, n := range []domain.BitID{spacer, ctl} {
		if err := b.scene.MatchTransform(n, bit); err != nil {
			return art, false, err
		}
	}
	art.Node, art.Handle = ctl, spacer
	return art, reused, nil
}

func (b *Builder) controlSpec(bit domain.BitID, id domain.ComponentID) (domain.ControlSpec, error) {
	c, err := b.layer.Load(id)
	if err != nil {
		return domain.ControlSpec{}, err
	}
	src, ok := c.(domain.ControlSource)
	if !ok {
		return domain.ControlSpec{}, fmt.Errorf("component %s does not build a control", c.Class())
	}
	spec := src.Control()
	if spec.Name == "" {
		name, err := b.scene.Name(bit)
		if err != nil {
			return spec, err
		}
		spec.Name = name + "_ctl"
	}
	return spec, nil
}
