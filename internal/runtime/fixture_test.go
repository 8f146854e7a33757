package runtime_test

import (
	"testing"

	"github.com/aretw0/bitrig/pkg/adapters/memory"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/dsl"
	"github.com/stretchr/testify/require"
)

// biped authors a small character:
//
//	hero            character, module hero_root (0)
//	└─ cog          cog_jnt, cog_ctl
//	   ├─ spine     module spine (1): spine_jnt, spine_ctl
//	   │  └─ chest  chest_jnt, chest_ctl
//	   │     └─ arm_l      module arm_l (3): shoulder_l_jnt, shoulder_l_ctl
//	   │        └─ elbow_l elbow_l_jnt
//	   │           └─ wrist_l wrist_l_jnt, wrist_l_ctl
//	   └─ leg_l     module leg_l (5): hip_l_jnt, hip_l_ctl
//	      └─ knee_l knee_l_jnt
//	         └─ foot_l foot_l_jnt, foot_l_loc
func biped(t *testing.T) (*memory.Scene, *dsl.Builder) {
	t.Helper()
	b := dsl.New()
	b.Bit("hero", "").Character("hero").Module("hero_root", 0)
	b.Bit("cog", "hero").At(0, 10, 0).Joint("cog_jnt").Curve("cog_ctl", "circle")
	b.Bit("spine", "cog").Module("spine", 1).Joint("spine_jnt").Curve("spine_ctl", "circle")
	b.Bit("chest", "spine").Joint("chest_jnt").Curve("chest_ctl", "square")
	b.Bit("arm_l", "chest").Module("arm_l", 3).Joint("shoulder_l_jnt").Curve("shoulder_l_ctl", "circle")
	b.Bit("elbow_l", "arm_l").Joint("elbow_l_jnt")
	b.Bit("wrist_l", "elbow_l").Joint("wrist_l_jnt").Curve("wrist_l_ctl", "circle")
	b.Bit("leg_l", "cog").Module("leg_l", 5).Joint("hip_l_jnt").Curve("hip_l_ctl", "circle")
	b.Bit("knee_l", "leg_l").Joint("knee_l_jnt")
	b.Bit("foot_l", "knee_l").Joint("foot_l_jnt").Locator("foot_l_loc")
	scene, err := b.Build()
	require.NoError(t, err)
	return scene, b
}

// parentOf returns the name of the parent of the node called name.
func parentOf(t *testing.T, scene *memory.Scene, name string) string {
	t.Helper()
	id, ok := scene.Exists(name)
	require.True(t, ok, "node %q should exist", name)
	p, err := scene.Parent(id)
	require.NoError(t, err)
	if p == domain.NoBit {
		return ""
	}
	pn, err := scene.Name(p)
	require.NoError(t, err)
	return pn
}

// countNamed counts nodes called name.
func countNamed(t *testing.T, scene *memory.Scene, name string) int {
	t.Helper()
	doc, err := scene.Snapshot("count")
	require.NoError(t, err)
	n := 0
	for _, rec := range doc.Nodes {
		if rec.Name == name {
			n++
		}
	}
	return n
}
