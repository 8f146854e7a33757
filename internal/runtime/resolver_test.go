package runtime_test

import (
	"testing"

	"github.com/aretw0/bitrig/internal/runtime"
	"github.com/aretw0/bitrig/pkg/adapters/memory"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(t *testing.T, scene *memory.Scene, ids []domain.BitID) []string {
	t.Helper()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := scene.Name(id)
		require.NoError(t, err)
		out = append(out, n)
	}
	return out
}

func TestResolver_ModuleBits(t *testing.T) {
	scene, b := biped(t)
	r := runtime.NewBuilder(scene).Resolver()

	tests := []struct {
		root string
		want []string
	}{
		{"hero", []string{"hero", "cog"}},
		{"spine", []string{"spine", "chest"}},
		{"arm_l", []string{"arm_l", "elbow_l", "wrist_l"}},
		{"leg_l", []string{"leg_l", "knee_l", "foot_l"}},
	}
	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			bits, err := r.ModuleBits(b.ID(tt.root))
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(t, scene, bits), "root first, nested modules excluded")
		})
	}
}

func TestResolver_NestedModules(t *testing.T) {
	// outer ─ a ─ x(module) ─ y ─ z(module) ─ w
	//           └ b            └ y2
	b := dsl.New()
	b.Bit("outer", "").Module("outer", 0)
	b.Bit("a", "outer")
	b.Bit("b", "a")
	b.Bit("x", "a").Module("inner", 1)
	b.Bit("y", "x")
	b.Bit("y2", "y")
	b.Bit("z", "y").Module("deepest", 2)
	b.Bit("w", "z")
	scene := b.MustBuild()
	r := runtime.NewBuilder(scene).Resolver()

	outer, err := r.ModuleBits(b.ID("outer"))
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "a", "b"}, names(t, scene, outer))

	inner, err := r.ModuleBits(b.ID("x"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "y2"}, names(t, scene, inner))

	deepest, err := r.ModuleBits(b.ID("z"))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "w"}, names(t, scene, deepest))

	leaf, err := r.ModuleBits(b.ID("w"))
	require.NoError(t, err)
	assert.Equal(t, []string{"w"}, names(t, scene, leaf), "a childless root resolves to itself")
}

func TestResolver_Partition(t *testing.T) {
	scene, b := biped(t)
	builder := runtime.NewBuilder(scene)

	sets, err := builder.Partition(b.ID("hero"))
	require.NoError(t, err)
	require.Len(t, sets, 4)

	seen := map[domain.BitID]string{}
	for _, m := range sets {
		for _, bit := range m.Bits {
			prev, dup := seen[bit]
			assert.False(t, dup, "bit %s in %s and %s", bit, prev, m.Name)
			seen[bit] = m.Name
		}
	}

	all, err := scene.Descendants(b.ID("hero"))
	require.NoError(t, err)
	assert.Len(t, seen, len(all)+1, "module bit-sets cover the whole character")
}

func TestResolver_Module(t *testing.T) {
	scene, b := biped(t)
	r := runtime.NewBuilder(scene).Resolver()

	m, err := r.Module(b.ID("arm_l"))
	require.NoError(t, err)
	assert.Equal(t, "arm_l", m.Name)
	assert.Equal(t, 3, m.Priority)

	_, err = r.Module(b.ID("elbow_l"))
	assert.Error(t, err)

	_, err = r.ModuleBits("missing")
	assert.ErrorIs(t, err, domain.ErrBitNotFound)
}

// cyclicScene reports loop as a child of both its real parent and tail.
type cyclicScene struct {
	*memory.Scene
	tail, loop domain.BitID
}

func (c *cyclicScene) Children(bit domain.BitID) ([]domain.BitID, error) {
	kids, err := c.Scene.Children(bit)
	if bit == c.tail {
		kids = append(kids, c.loop)
	}
	return kids, err
}

func TestResolver_CycleIsFatal(t *testing.T) {
	b := dsl.New()
	b.Bit("root", "").Module("root", 0)
	b.Bit("a", "root")
	b.Bit("b", "a")
	scene := b.MustBuild()

	r := runtime.NewBuilder(&cyclicScene{Scene: scene, tail: b.ID("b"), loop: b.ID("a")}).Resolver()
	_, err := r.ModuleBits(b.ID("root"))
	assert.ErrorIs(t, err, domain.ErrCycle)
}
