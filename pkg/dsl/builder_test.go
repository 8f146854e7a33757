package dsl_test

import (
	"testing"

	"github.com/aretw0/bitrig/internal/attach"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleCharacter(t *testing.T) {
	b := dsl.New()
	b.Bit("hero", "").Character("hero").Module("hero_root", 0)
	b.Bit("pelvis", "hero").At(0, 10, 0).Joint("pelvis_jnt").Curve("cog_ctl", "circle")
	b.Bit("arm", "pelvis").Module("arm", 2).Joint("shoulder_jnt")

	scene, err := b.Build()
	require.NoError(t, err)
	layer := attach.New(scene)

	path, err := scene.Path(b.ID("arm"))
	require.NoError(t, err)
	assert.Equal(t, "|hero|pelvis|arm", path)

	v, err := scene.GetAttr(b.ID("pelvis"), domain.AttrTranslate)
	require.NoError(t, err)
	assert.Equal(t, domain.Vec3{0, 10, 0}, v)

	charID, ok, err := layer.HasComponent(b.ID("hero"), domain.ClassCharacterRoot)
	require.NoError(t, err)
	require.True(t, ok)

	links, err := layer.ModuleLinks(charID)
	require.NoError(t, err)
	assert.Len(t, links, 2, "root and arm modules are linked in call order")

	ids, err := layer.ComponentsOf(b.ID("pelvis"))
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("Unknown Parent", func(t *testing.T) {
		b := dsl.New()
		b.Bit("orphan", "nowhere").Joint("x")
		_, err := b.Build()
		assert.Error(t, err)
	})

	t.Run("Duplicate Class", func(t *testing.T) {
		b := dsl.New()
		b.Bit("a", "").Joint("a1").Joint("a2")
		_, err := b.Build()
		assert.ErrorIs(t, err, domain.ErrAlreadyAttached)
	})

	t.Run("Existing Bit Is Reused", func(t *testing.T) {
		b := dsl.New()
		first := b.Bit("a", "").ID()
		again := b.Bit("a", "").ID()
		assert.Equal(t, first, again)
		assert.NotPanics(t, func() { b.MustBuild() })
	})
}
