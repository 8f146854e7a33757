/*
Package session coordinates concurrent access to stored scenes.

A Manager wraps a SceneStore with per-key locks so that a scene is never
loaded, built and saved by two callers at once. Locks are reference counted
and released when no caller holds them. An optional DistributedLocker extends
the guarantee across processes sharing one store.
*/
package session
