package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/bitrig/internal/attach"
	"github.com/aretw0/bitrig/pkg/domain"
)

// Character is a resolved character root.
type Character struct {
	Name          string
	Bit           domain.BitID
	Component     domain.ComponentID
	SkeletonGroup string
	RigGroup      string
}

// Character loads the character rooted at bit.
func (b *Builder) Character(bit domain.BitID) (Character, error) {
	id, ok, err := b.layer.HasComponent(bit, domain.ClassCharacterRoot)
	if err != nil {
		return Character{}, err
	}
	if !ok {
		name, _ := b.scene.Name(bit)
		return Character{}, fmt.Errorf("%w: %q", domain.ErrNotCharacter, name)
	}
	c, err := attach.LoadAs[domain.CharacterRoot](b.layer, id)
	if err != nil {
		return Character{}, err
	}
	ch := Character{
		Name:          c.CharacterName,
		Bit:           bit,
		Component:     id,
		SkeletonGroup: c.SkeletonGroupName,
		RigGroup:      c.RigGroupName,
	}
	if ch.Name == "" {
		if ch.Name, err = b.scene.Name(bit); err != nil {
			return Character{}, err
		}
	}
	if ch.SkeletonGroup == "" {
		ch.SkeletonGroup = ch.Name + "_skeleton"
	}
	if ch.RigGroup == "" {
		ch.RigGroup = ch.Name + "_rig"
	}
	return ch, nil
}

// Modules returns the character's build order: the implicit root module (the
// module rooted at the character's own top bit) first, whatever its declared
// priority, then the linked modules sorted by priority. Ties keep link order.
func (b *Builder) Modules(bit domain.BitID) (Character, []Module, error) {
	ch, err := b.Character(bit)
	if err != nil {
		return Character{}, nil, err
	}
	rootID, ok, err := b.layer.HasComponent(bit, domain.ClassModuleRoot)
	if err != nil {
		return ch, nil, err
	}
	if !ok {
		return ch, nil, fmt.Errorf("%w: %q", domain.ErrNoRootModule, ch.Name)
	}
	root, err := b.resolver.load(bit, rootID)
	if err != nil {
		return ch, nil, err
	}
	root.Implicit = true

	links, err := b.layer.ModuleLinks(ch.Component)
	if err != nil {
		return ch, nil, err
	}
	linked := make([]Module, 0, len(links))
	for _, id := range links {
		if id == rootID {
			continue
		}
		owner, err := b.layer.Owner(id)
		if err != nil {
			return ch, nil, err
		}
		m, err := b.resolver.load(owner, id)
		if err != nil {
			return ch, nil, err
		}
		linked = append(linked, m)
	}
	sortModules(linked, b.order)

	return ch, append([]Module{root}, linked...), nil
}

func sortModules(modules []Module, order domain.Order) {
	sort.SliceStable(modules, func(i, j int) bool {
		if order == domain.Descending {
			return modules[i].Priority > modules[j].Priority
		}
		return modules[i].Priority < modules[j].Priority
	})
}

// BuildCharacter builds every module of the character rooted at bit, in order,
// then wires each module's top artifacts into the permanent skeleton and rig
// groups. Rebuilding a correctly wired character changes no parentage.
//
// A failing module stops the build unless the builder runs in best-effort mode,
// in which case the remaining modules are built and the failures are returned
// together. Modules built before a failure are not rolled back.
func (b *Builder) BuildCharacter(ctx context.Context, bit domain.BitID) (*domain.BuildReport, error) {
	ch, modules, err := b.Modules(bit)
	if err != nil {
		return nil, err
	}
	logger := b.logger.With("character", ch.Name)

	skeleton, err := b.ensurePermanentGroup(ctx, ch.SkeletonGroup)
	if err != nil {
		return nil, err
	}
	rig, err := b.ensurePermanentGroup(ctx, ch.RigGroup)
	if err != nil {
		return nil, err
	}

	report := &domain.BuildReport{Character: ch.Name, SkeletonGroup: skeleton, RigGroup: rig}
	claims := newNameClaims()
	var errs []error
	for i, m := range modules {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		mr, err := b.buildModule(ctx, logger, ch, i, m, skeleton, rig, claims)
		report.Modules = append(report.Modules, mr)
		if err == nil {
			continue
		}
		if !b.bestEffort {
			logger.Error("character build aborted", "module", m.Name, "err", err)
			return report, err
		}
		logger.Warn("module failed, continuing", "module", m.Name, "err", err)
		errs = append(errs, err)
	}
	logger.Info("character built",
		"modules", len(report.Modules),
		"created", report.Created(),
		"reparented", report.Reparented(),
		"failed", len(errs),
	)
	return report, domain.Join(errs)
}

func (b *Builder) buildModule(ctx context.Context, logger *slog.Logger, ch Character, index int, m Module, skeleton, rig domain.BitID, claims *nameClaims) (domain.ModuleReport, error) {
	start := b.now()
	if b.hooks.OnModuleStart != nil {
		b.hooks.OnModuleStart(ctx, &domain.ModuleEvent{Timestamp: start, Character: ch.Name, Module: m.Name, Index: index})
	}

	report, err := b.runModule(ctx, m, skeleton, rig, claims)
	report.Err = err

	if b.hooks.OnModuleDone != nil {
		b.hooks.OnModuleDone(ctx, &domain.ModuleEvent{
			Timestamp: b.now(), Character: ch.Name, Module: m.Name, Index: index,
			Duration: b.now().Sub(start), Err: err,
		})
	}
	if err == nil {
		logger.Debug("module built",
			"module", m.Name,
			"priority", m.Priority,
			"joints", len(report.Joints),
			"controls", len(report.Controls),
			"reparented", report.Reparented,
		)
	}
	return report, err
}

func (b *Builder) runModule(ctx context.Context, m Module, skeleton, rig domain.BitID, claims *nameClaims) (domain.ModuleReport, error) {
	mb, err := b.newModuleBuild(ctx, m)
	if err != nil {
		return domain.ModuleReport{Module: m.Name, Root: m.Root, Priority: m.Priority},
			&domain.BuildError{Module: m.Name, Err: err}
	}
	mb.skeleton, mb.rig = skeleton, rig
	mb.claims = claims

	if _, err := b.buildJoints(mb); err != nil {
		return *mb.report, err
	}
	if _, err := b.buildControls(mb); err != nil {
		return *mb.report, err
	}
	for _, a := range mb.topJoints {
		if err := b.settle(mb, a, skeleton, domain.BuildsJoint, domain.ArtifactJoint); err != nil {
			return *mb.report, err
		}
	}
	for _, a := range mb.topControls {
		if err := b.settle(mb, a, rig, domain.BuildsControl, domain.ArtifactSpacer); err != nil {
			return *mb.report, err
		}
	}
	if err := b.dropBuildGroup(mb); err != nil {
		return *mb.report, &domain.BuildError{Module: m.Name, Err: err}
	}
	return *mb.report, nil
}

// settle moves a module-top artifact to its final place: under the artifact of
// its nearest qualifying ancestor anywhere in the hierarchy, found by name in
// the permanent group, or directly under the permanent group.
func (b *Builder) settle(mb *moduleBuild, a domain.Artifact, home domain.BitID, match domain.Matcher, kind domain.ArtifactKind) error {
	target := home
	hit, found, err := b.locator.NearestAnywhere(a.Bit, match)
	if err != nil {
		return b.fail(mb, a.Bit, "", err)
	}
	if found {
		name, err := b.artifactName(hit, kind)
		if err != nil {
			return b.fail(mb, hit.Bit, "", err)
		}
		node, ok, err := b.scene.FindDescendantByName(home, name)
		if err != nil {
			return b.fail(mb, a.Bit, "", err)
		}
		if !ok {
			return b.fail(mb, a.Bit, "", missingAncestor(name))
		}
		target = node
	}
	_, err = b.setParent(mb, kind, a.Name, a.Handle, target)
	if err != nil {
		return b.fail(mb, a.Bit, "", err)
	}
	return nil
}

func (b *Builder) artifactName(hit Hit, kind domain.ArtifactKind) (string, error) {
	if kind == domain.ArtifactJoint {
		spec, err := b.jointSpec(hit.Bit, hit.Component)
		return spec.Name, err
	}
	spec, err := b.controlSpec(hit.Bit, hit.Component)
	return spec.Name, err
}

// dropBuildGroup deletes the module's build group once it is empty.
func (b *Builder) dropBuildGroup(mb *moduleBuild) error {
	if mb.group == domain.NoBit {
		return nil
	}
	left, err := b.scene.Children(mb.group)
	if err != nil {
		return err
	}
	if len(left) > 0 {
		b.logger.Warn("build group not empty after placement", "module", mb.module.Name, "left", len(left))
		return nil
	}
	if err := b.scene.Delete(mb.group); err != nil {
		return err
	}
	mb.group = domain.NoBit
	return nil
}

// ensurePermanentGroup returns the world-level group called name, creating it once.
func (b *Builder) ensurePermanentGroup(ctx context.Context, name string) (domain.BitID, error) {
	if id, ok := b.scene.Exists(name); ok {
		kind, err := b.scene.Kind(id)
		if err != nil {
			return domain.NoBit, err
		}
		if kind == domain.KindGroup {
			return id, nil
		}
		return domain.NoBit, fmt.Errorf("node %q exists but is a %s, not a group", name, kind)
	}
	id, err := b.scene.Create(domain.KindGroup, name, domain.NoBit)
	if err != nil {
		return domain.NoBit, err
	}
	b.emitCreate(ctx, "", domain.ArtifactGroup, name, id, domain.NoBit)
	return id, nil
}
