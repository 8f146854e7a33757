// Package runtime resolves modules and builds the derived joint and control
// hierarchies of a character.
//
// A build is a best-effort sequential mutation of the scene: modules are built
// in priority order, joints before controls, and nothing is rolled back when a
// module fails.
package runtime
