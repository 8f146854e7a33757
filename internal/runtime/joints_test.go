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

func TestBuildJoints_ThreeBitChain(t *testing.T) {
	b := dsl.New()
	b.Bit("root", "").At(1, 2, 3).Module("tail", 0)
	b.Bit("tail_a", "root").At(1, 3, 3).Joint("tail_a_jnt")
	b.Bit("tail_b", "tail_a").At(1, 4, 3).Joint("tail_b_jnt")
	scene := b.MustBuild()
	builder := runtime.NewBuilder(scene)

	m, err := builder.Resolver().Module(b.ID("root"))
	require.NoError(t, err)

	joints, err := builder.BuildJoints(context.Background(), m)
	require.NoError(t, err)
	require.Len(t, joints, 2)

	assert.Equal(t, "tail_a_jnt", joints[0].Name)
	assert.Equal(t, "tail_b_jnt", joints[1].Name)
	assert.Equal(t, b.ID("tail_a"), joints[0].Bit)

	assert.Equal(t, "tail_build", parentOf(t, scene, "tail_a_jnt"), "no joint ancestor: parked in the build group")
	assert.Equal(t, "tail_a_jnt", parentOf(t, scene, "tail_b_jnt"))
	assert.Equal(t, "", parentOf(t, scene, "tail_build"), "the build group lives at world level")

	group, _ := scene.Exists("tail_build")
	v, err := scene.GetAttr(group, domain.AttrTranslate)
	require.NoError(t, err)
	assert.Equal(t, domain.Vec3{1, 2, 3}, v, "the build group matches the module root")

	v, err = scene.GetAttr(joints[1].Node, domain.AttrTranslate)
	require.NoError(t, err)
	assert.Equal(t, domain.Vec3{1, 4, 3}, v, "joints match their bits")
}

func TestBuildJoints_RootFirst(t *testing.T) {
	scene, b := biped(t)
	builder := runtime.NewBuilder(scene)

	for _, root := range []string{"hero", "spine", "arm_l", "leg_l"} {
		t.Run(root, func(t *testing.T) {
			m, err := builder.Resolver().Module(b.ID(root))
			require.NoError(t, err)
			joints, err := builder.BuildJoints(context.Background(), m)
			require.NoError(t, err)

			index := make(map[domain.BitID]int, len(joints))
			for i, j := range joints {
				index[j.Node] = i
			}
			for i, j := range joints {
				parent, err := scene.Parent(j.Node)
				require.NoError(t, err)
				if pi, ok := index[parent]; ok {
					assert.Less(t, pi, i, "%s is created after its parent", j.Name)
				}
			}
		})
	}
}

func TestBuildJoints_DefaultNameAndNoJoints(t *testing.T) {
	b := dsl.New()
	b.Bit("root", "").Module("bare", 0)
	b.Bit("child", "root")
	b.Bit("other", "").Module("named", 0)
	b.Bit("knuckle", "other").Joint("")
	scene := b.MustBuild()
	builder := runtime.NewBuilder(scene)

	bare, err := builder.Resolver().Module(b.ID("root"))
	require.NoError(t, err)
	joints, err := builder.BuildJoints(context.Background(), bare)
	require.NoError(t, err)
	assert.Empty(t, joints)
	_, ok := scene.Exists("bare_build")
	assert.False(t, ok, "no group without artifacts")

	named, err := builder.Resolver().Module(b.ID("other"))
	require.NoError(t, err)
	joints, err = builder.BuildJoints(context.Background(), named)
	require.NoError(t, err)
	require.Len(t, joints, 1)
	assert.Equal(t, "knuckle_jnt", joints[0].Name)
}

func TestBuildJoints_DuplicateName(t *testing.T) {
	b := dsl.New()
	b.Bit("root", "").Module("hand", 0)
	b.Bit("index", "root").Joint("finger_jnt")
	b.Bit("middle", "root").Joint("finger_jnt")
	scene := b.MustBuild()
	builder := runtime.NewBuilder(scene)

	m, err := builder.Resolver().Module(b.ID("root"))
	require.NoError(t, err)
	_, err = builder.BuildJoints(context.Background(), m)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicateName)

	var be *domain.BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "hand", be.Module)
	assert.Equal(t, "middle", be.Bit)
}
