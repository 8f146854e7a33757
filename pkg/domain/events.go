package domain

import (
	"context"
	"time"
)

// ArtifactKind names what a build created or moved.
type ArtifactKind string

const (
	ArtifactJoint   ArtifactKind = "joint"
	ArtifactControl ArtifactKind = "control"
	ArtifactSpacer  ArtifactKind = "spacer"
	ArtifactGroup   ArtifactKind = "group"
)

// ModuleEvent is emitted around each module build.
type ModuleEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Character string        `json:"character"`
	Module    string        `json:"module"`
	Index     int           `json:"index"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// ArtifactEvent is emitted when an artifact is created or reparented.
type ArtifactEvent struct {
	Timestamp time.Time    `json:"timestamp"`
	Module    string       `json:"module"`
	Kind      ArtifactKind `json:"kind"`
	Name      string       `json:"name"`
	Node      BitID        `json:"node"`
	Parent    BitID        `json:"parent,omitempty"`
}

// BuildHooks defines callbacks for build observability.
// Nil callbacks are skipped.
type BuildHooks struct {
	OnModuleStart func(context.Context, *ModuleEvent)
	OnModuleDone  func(context.Context, *ModuleEvent)
	OnCreate      func(context.Context, *ArtifactEvent)
	OnReparent    func(context.Context, *ArtifactEvent)
}

// MergeHooks returns hooks that call every non-nil callback of hs in order.
func MergeHooks(hs ...BuildHooks) BuildHooks {
	var out BuildHooks
	for _, h := range hs {
		out.OnModuleStart = chain(out.OnModuleStart, h.OnModuleStart)
		out.OnModuleDone = chain(out.OnModuleDone, h.OnModuleDone)
		out.OnCreate = chain(out.OnCreate, h.OnCreate)
		out.OnReparent = chain(out.OnReparent, h.OnReparent)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
