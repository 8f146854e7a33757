package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/bitrig"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/dsl"
)

// SampleScene authors a small biped: a body module holding the hips, a spine,
// and left arm and leg modules hanging off it.
func SampleScene() *dsl.Builder {
	b := dsl.New()
	b.Bit("biped", "").Character("biped").Module("body", 0)
	b.Bit("hips", "biped").At(0, 10, 0).Joint("hips_jnt").Curve("hips_ctl", "circle")

	b.Bit("spine", "hips").At(0, 12, 0).Module("spine", 1).Joint("spine_jnt").Curve("spine_ctl", "circle")
	b.Bit("chest", "spine").At(0, 14, 0).Joint("chest_jnt").Curve("chest_ctl", "circle")
	b.Bit("head", "chest").At(0, 17, 0).Joint("head_jnt").Curve("head_ctl", "circle")

	b.Bit("arm_l", "chest").At(2, 14, 0).Module("arm_l", 3).Joint("shoulder_l_jnt").Curve("shoulder_l_ctl", "circle")
	b.Bit("elbow_l", "arm_l").At(4, 12, 0).Joint("elbow_l_jnt")
	b.Bit("wrist_l", "elbow_l").At(6, 10, 0).Joint("wrist_l_jnt").Curve("wrist_l_ctl", "square")

	b.Bit("leg_l", "hips").At(1, 9, 0).Module("leg_l", 5).Joint("hip_l_jnt").Curve("hip_l_ctl", "circle")
	b.Bit("knee_l", "leg_l").At(1, 5, 0).Joint("knee_l_jnt")
	b.Bit("foot_l", "knee_l").At(1, 1, 0).Joint("foot_l_jnt").Locator("foot_l_loc")
	return b
}

// Seed stores the sample scene under name. An existing scene is kept unless
// force is set.
func (a *App) Seed(ctx context.Context, name string, force bool) error {
	if !force {
		_, err := a.Scenes.Load(ctx, name)
		if err == nil {
			return fmt.Errorf("scene %q already exists", name)
		}
		if !errors.Is(err, domain.ErrSceneNotFound) {
			return err
		}
	}
	scene, err := SampleScene().Build()
	if err != nil {
		return err
	}
	eng, err := bitrig.New(scene, a.EngineOptions()...)
	if err != nil {
		return err
	}
	doc, err := eng.Snapshot(name)
	if err != nil {
		return err
	}
	if err := a.Scenes.Save(ctx, name, doc); err != nil {
		return err
	}
	printSystemMessage(a.Out, "Scene %q seeded with %d nodes.", name, len(doc.Nodes))
	return nil
}
