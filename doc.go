/*
Package bitrig builds rig hierarchies from annotated scene graphs.

Authoring data lives on bits: scene transforms that carry typed components
attached through graph edges. A bit with a module-root component starts a
module, which owns every bit below it down to the next module root. A
character owns an ordered list of modules. Building a character produces a
joint hierarchy and a control hierarchy whose nesting follows the authoring
hierarchy, even across module boundaries.

# Concept

The engine never owns the scene. It talks to a host scene service through the
ports.SceneGraph interface, so the same build logic runs against the in-memory
scene used in tests and tools and against a real host. Builds are repeatable:
running a build twice over an already wired character changes no parentage.

# Usage

	scene := dsl.New()
	scene.Bit("hero", "").Character("hero").Module("body", 0)
	scene.Bit("hip", "hero").Joint("hip_jnt").Curve("hip_ctl", "circle")
	scene.Bit("arm_l", "hip").Module("arm_l", 1).Joint("shoulder_l_jnt")

	eng, err := bitrig.New(scene.MustBuild(), bitrig.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	report, err := eng.Build(ctx, "hero")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Created(), "nodes created")

After the build the scene holds hero_skeleton (hip_jnt, then shoulder_l_jnt
beneath it) and hero_rig (hip_ctl inside its spacer).

# Observability

Build hooks (domain.BuildHooks) report module start and finish, and every
artifact created or reparented. The internal metrics package binds them to
Prometheus collectors.
*/
package bitrig
