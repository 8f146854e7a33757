/*
Package domain contains the core domain models of the bitrig build engine.

It defines the vocabulary shared by every layer: bits (scene nodes addressed by
stable handles), plugs (edge endpoints), the closed set of component variants that
can be attached to bits, and the reports and hooks produced by a character build.
This package is kept pure and free of I/O, following Hexagonal Architecture principles.

# Key Entities

  - BitID: Stable handle of a node owned by the scene graph service.
  - Component: A typed record attached to exactly one bit (module roots, character roots, joints, controls).
  - Matcher: A predicate over component classes used by ancestor searches.
  - BuildReport: Per-module outcome of a character build.
  - SceneDocument: Serialisable snapshot of a scene, used by the stores.
*/
package domain
