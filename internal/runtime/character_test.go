package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/bitrig/internal/runtime"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moduleNames(modules []runtime.Module) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.Name)
	}
	return out
}

func TestModules_PriorityOrder(t *testing.T) {
	newScene := func() *dsl.Builder {
		b := dsl.New()
		b.Bit("body", "").Character("body").Module("R", 99)
		b.Bit("a", "body").Module("five", 5)
		b.Bit("b", "body").Module("one", 1)
		b.Bit("c", "body").Module("three", 3)
		b.Bit("d", "body").Module("three_again", 3)
		return b
	}

	tests := []struct {
		name  string
		order domain.Order
		want  []string
	}{
		{"Ascending", domain.Ascending, []string{"R", "one", "three", "three_again", "five"}},
		{"Descending", domain.Descending, []string{"R", "five", "three", "three_again", "one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newScene()
			builder := runtime.NewBuilder(b.MustBuild(), runtime.WithOrder(tt.order))

			ch, modules, err := builder.Modules(b.ID("body"))
			require.NoError(t, err)
			assert.Equal(t, "body", ch.Name)
			assert.Equal(t, tt.want, moduleNames(modules), "root module first, ties keep link order")
			assert.True(t, modules[0].Implicit)
			assert.False(t, modules[1].Implicit)
		})
	}
}

func TestModules_Errors(t *testing.T) {
	b := dsl.New()
	b.Bit("prop", "").Module("prop", 0)
	b.Bit("ghost", "").Character("ghost")
	scene := b.MustBuild()
	builder := runtime.NewBuilder(scene)

	_, _, err := builder.Modules(b.ID("prop"))
	assert.ErrorIs(t, err, domain.ErrNotCharacter)

	_, _, err = builder.Modules(b.ID("ghost"))
	assert.ErrorIs(t, err, domain.ErrNoRootModule)

	_, err = builder.BuildCharacter(context.Background(), b.ID("ghost"))
	assert.ErrorIs(t, err, domain.ErrNoRootModule)
	_, ok := scene.Exists("ghost_skeleton")
	assert.False(t, ok, "nothing is created for an unbuildable character")
}

func TestBuildCharacter_Hierarchy(t *testing.T) {
	scene, b := biped(t)
	builder := runtime.NewBuilder(scene)

	report, err := builder.BuildCharacter(context.Background(), b.ID("hero"))
	require.NoError(t, err)
	require.Len(t, report.Modules, 4)
	assert.Equal(t, "hero", report.Character)
	assert.Empty(t, report.Failed())

	skeleton := map[string]string{
		"cog_jnt":        "hero_skeleton",
		"spine_jnt":      "cog_jnt",
		"chest_jnt":      "spine_jnt",
		"shoulder_l_jnt": "chest_jnt",
		"elbow_l_jnt":    "shoulder_l_jnt",
		"wrist_l_jnt":    "elbow_l_jnt",
		"hip_l_jnt":      "cog_jnt",
		"knee_l_jnt":     "hip_l_jnt",
		"foot_l_jnt":     "knee_l_jnt",
	}
	for joint, parent := range skeleton {
		assert.Equal(t, parent, parentOf(t, scene, joint), joint)
	}

	rig := map[string]string{
		"cog_ctl_spacer":        "hero_rig",
		"spine_ctl_spacer":      "cog_ctl",
		"chest_ctl_spacer":      "spine_ctl",
		"shoulder_l_ctl_spacer": "chest_ctl",
		"wrist_l_ctl_spacer":    "shoulder_l_ctl",
		"hip_l_ctl_spacer":      "cog_ctl",
		"foot_l_loc_spacer":     "hip_l_ctl",
	}
	for spacer, parent := range rig {
		assert.Equal(t, parent, parentOf(t, scene, spacer), spacer)
	}

	for _, m := range []string{"hero_root", "spine", "arm_l", "leg_l"} {
		_, ok := scene.Exists(m + "_build")
		assert.False(t, ok, "build group of %s is removed", m)
	}
	assert.Equal(t, "", parentOf(t, scene, "hero_skeleton"))
	assert.Equal(t, "", parentOf(t, scene, "hero_rig"))
}

func TestBuildCharacter_Idempotent(t *testing.T) {
	scene, b := biped(t)
	builder := runtime.NewBuilder(scene)
	ctx := context.Background()

	first, err := builder.BuildCharacter(ctx, b.ID("hero"))
	require.NoError(t, err)
	assert.Positive(t, first.Reparented())
	afterFirst := scene.Stats()

	second, err := builder.BuildCharacter(ctx, b.ID("hero"))
	require.NoError(t, err)
	assert.Zero(t, second.Reparented())
	assert.Zero(t, second.Created())
	assert.Equal(t, afterFirst.Reparents, scene.Stats().Reparents, "a rebuild moves nothing")

	for _, name := range []string{"cog_jnt", "wrist_l_jnt", "hero_skeleton", "foot_l_loc", "foot_l_loc_spacer"} {
		assert.Equal(t, 1, countNamed(t, scene, name), name)
	}
	for _, m := range second.Modules {
		assert.Equal(t, len(m.Joints)+len(m.Controls), m.Reused, m.Module)
	}
}

func TestBuildCharacter_RepairsMovedArtifact(t *testing.T) {
	scene, b := biped(t)
	builder := runtime.NewBuilder(scene)
	ctx := context.Background()

	_, err := builder.BuildCharacter(ctx, b.ID("hero"))
	require.NoError(t, err)

	hip, _ := scene.Exists("hip_l_jnt")
	skel, _ := scene.Exists("hero_skeleton")
	require.NoError(t, scene.Reparent(hip, skel))

	report, err := builder.BuildCharacter(ctx, b.ID("hero"))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reparented())
	assert.Equal(t, "cog_jnt", parentOf(t, scene, "hip_l_jnt"))
}

func TestBuildCharacter_MissingAncestor(t *testing.T) {
	t.Run("Abort", func(t *testing.T) {
		scene, b := biped(t)
		builder := runtime.NewBuilder(scene, runtime.WithOrder(domain.Descending))

		report, err := builder.BuildCharacter(context.Background(), b.ID("hero"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingAncestor)

		var be *domain.BuildError
		require.True(t, errors.As(err, &be))
		assert.Equal(t, "arm_l", be.Module)

		require.Len(t, report.Modules, 3, "hero_root, leg_l, then the failing arm_l")
		_, ok := scene.Exists("spine_jnt")
		assert.False(t, ok, "later modules are not built")
		assert.Equal(t, "cog_jnt", parentOf(t, scene, "hip_l_jnt"), "earlier modules are kept")
	})

	t.Run("Best Effort", func(t *testing.T) {
		scene, b := biped(t)
		builder := runtime.NewBuilder(scene,
			runtime.WithOrder(domain.Descending),
			runtime.WithBestEffort(true),
		)

		report, err := builder.BuildCharacter(context.Background(), b.ID("hero"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrMissingAncestor)
		require.Len(t, report.Modules, 4)

		failed := report.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, "arm_l", failed[0].Module)
		assert.Equal(t, "cog_jnt", parentOf(t, scene, "spine_jnt"))
	})
}

func TestBuildCharacter_DuplicateNamesAcrossModules(t *testing.T) {
	t.Run("Joint", func(t *testing.T) {
		b := dsl.New()
		b.Bit("hero", "").Character("hero").Module("body", 0)
		b.Bit("torso", "hero").Joint("torso_jnt")
		b.Bit("arm_l", "torso").Module("arm_l", 1).Joint("shoulder_jnt")
		b.Bit("arm_r", "torso").Module("arm_r", 2).Joint("shoulder_jnt")
		scene := b.MustBuild()

		report, err := runtime.NewBuilder(scene).BuildCharacter(context.Background(), b.ID("hero"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDuplicateName)

		var be *domain.BuildError
		require.True(t, errors.As(err, &be))
		assert.Equal(t, "arm_r", be.Module)
		assert.Equal(t, "arm_r", be.Bit)
		assert.Contains(t, err.Error(), `"arm_l"`, "names the bit that built it first")

		require.Len(t, report.Modules, 3)
		assert.Zero(t, report.Modules[2].Reused, "the other module's joint is never taken over")
		assert.Equal(t, 1, countNamed(t, scene, "shoulder_jnt"))
		assert.Equal(t, "torso_jnt", parentOf(t, scene, "shoulder_jnt"), "arm_l keeps its joint")
		assert.Zero(t, countNamed(t, scene, "arm_r_build"))
	})

	t.Run("Control", func(t *testing.T) {
		b := dsl.New()
		b.Bit("hero", "").Character("hero").Module("body", 0)
		b.Bit("torso", "hero").Joint("torso_jnt").Curve("torso_ctl", "circle")
		b.Bit("arm_l", "torso").Module("arm_l", 1).Joint("shoulder_l_jnt").Curve("shoulder_ctl", "circle")
		b.Bit("arm_r", "torso").Module("arm_r", 2).Joint("shoulder_r_jnt").Curve("shoulder_ctl", "circle")
		scene := b.MustBuild()

		builder := runtime.NewBuilder(scene, runtime.WithBestEffort(true))
		report, err := builder.BuildCharacter(context.Background(), b.ID("hero"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDuplicateName)

		failed := report.Failed()
		require.Len(t, failed, 1)
		assert.Equal(t, "arm_r", failed[0].Module)
		assert.Equal(t, 1, countNamed(t, scene, "shoulder_ctl"))
		assert.Equal(t, "torso_ctl", parentOf(t, scene, "shoulder_ctl_spacer"))
	})

	t.Run("Rebuild Keeps Own Names", func(t *testing.T) {
		scene, b := biped(t)
		builder := runtime.NewBuilder(scene)
		_, err := builder.BuildCharacter(context.Background(), b.ID("hero"))
		require.NoError(t, err)

		report, err := builder.BuildCharacter(context.Background(), b.ID("hero"))
		require.NoError(t, err, "a bit reclaiming its own artifact is not a duplicate")
		assert.Zero(t, report.Created())
	})
}

func TestBuildCharacter_Hooks(t *testing.T) {
	scene, b := biped(t)
	var started, done []string
	created := map[domain.ArtifactKind]int{}
	reparented := 0

	builder := runtime.NewBuilder(scene, runtime.WithHooks(domain.BuildHooks{
		OnModuleStart: func(_ context.Context, e *domain.ModuleEvent) { started = append(started, e.Module) },
		OnModuleDone:  func(_ context.Context, e *domain.ModuleEvent) { done = append(done, e.Module) },
		OnCreate:      func(_ context.Context, e *domain.ArtifactEvent) { created[e.Kind]++ },
		OnReparent:    func(_ context.Context, _ *domain.ArtifactEvent) { reparented++ },
	}))

	report, err := builder.BuildCharacter(context.Background(), b.ID("hero"))
	require.NoError(t, err)

	assert.Equal(t, []string{"hero_root", "spine", "arm_l", "leg_l"}, started)
	assert.Equal(t, started, done)
	assert.Equal(t, 9, created[domain.ArtifactJoint])
	assert.Equal(t, 7, created[domain.ArtifactControl])
	assert.Equal(t, 7, created[domain.ArtifactSpacer])
	assert.Equal(t, report.Reparented(), reparented)
}

func TestBuildCharacter_CustomGroups(t *testing.T) {
	b := dsl.New()
	b.Bit("mech", "").CharacterGroups("mech", "mech_bones", "mech_controls").Module("mech", 0).Joint("base_jnt").Curve("base_ctl", "square")
	scene := b.MustBuild()

	_, err := runtime.NewBuilder(scene).BuildCharacter(context.Background(), b.ID("mech"))
	require.NoError(t, err)
	assert.Equal(t, "mech_bones", parentOf(t, scene, "base_jnt"))
	assert.Equal(t, "mech_controls", parentOf(t, scene, "base_ctl_spacer"))
}

func TestBuildCharacter_Cancelled(t *testing.T) {
	scene, b := biped(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runtime.NewBuilder(scene).BuildCharacter(ctx, b.ID("hero"))
	assert.ErrorIs(t, err, context.Canceled)
}
