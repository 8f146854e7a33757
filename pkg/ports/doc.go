/*
Package ports defines the driven ports (interfaces) for the bitrig engine.

These interfaces decouple the build logic from the host that owns the scene,
so resolution and build code can run against an in-memory fake in tests and
against a real host scene in production.

# Key Interfaces

  - SceneGraph: Hierarchy queries, attribute storage, graph edges and node editing.
  - SceneStore: Persists and loads scene documents (file, Redis, memory).
  - DistributedLocker: Serialises character builds across processes.
*/
package ports
