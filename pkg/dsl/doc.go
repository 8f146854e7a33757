/*
Package dsl provides a Go DSL for authoring rig scenes programmatically.

It builds an in-memory scene with bits, characters, modules and joint/control
components using a fluent builder, instead of hand-writing scene documents.
This is particularly useful for unit tests and for seeding example scenes.

Example usage:

	b := dsl.New()

	b.Bit("hero", "").Character("hero").Module("hero_root", 0)
	b.Bit("pelvis", "hero").Joint("pelvis_jnt").Curve("cog_ctl", "circle")
	b.Bit("arm_l", "pelvis").Module("arm_l", 2).Joint("shoulder_l_jnt")
	b.Bit("elbow_l", "arm_l").Joint("elbow_l_jnt").Curve("elbow_l_ctl", "square")

	scene, err := b.Build()
	// ... pass scene to bitrig.New(scene)
*/
package dsl
