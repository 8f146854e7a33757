package runtime

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/bitrig/internal/attach"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/ports"
)

// Builder runs the joint and control pipelines and the character orchestrator.
type Builder struct {
	scene      ports.SceneGraph
	layer      *attach.Layer
	resolver   *Resolver
	locator    *Locator
	logger     *slog.Logger
	hooks      domain.BuildHooks
	order      domain.Order
	bestEffort bool
	now        func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.BuildHooks) Option {
	return func(b *Builder) {
		b.hooks = hooks
	}
}

// WithOrder sets the priority sort direction for linked modules (default: ascending).
func WithOrder(order domain.Order) Option {
	return func(b *Builder) {
		if order != "" {
			b.order = order
		}
	}
}

// WithBestEffort keeps building the remaining modules after a module fails.
func WithBestEffort(enabled bool) Option {
	return func(b *Builder) {
		b.bestEffort = enabled
	}
}

// NewBuilder creates a builder bound to scene.
func NewBuilder(scene ports.SceneGraph, opts ...Option) *Builder {
	layer := attach.New(scene)
	b := &Builder{
		scene:    scene,
		layer:    layer,
		resolver: NewResolver(layer),
		locator:  NewLocator(layer),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		order:    domain.Ascending,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Resolver exposes the module resolver.
func (b *Builder) Resolver() *Resolver { return b.resolver }

// Locator exposes the ancestor locator.
func (b *Builder) Locator() *Locator { return b.locator }

// Layer exposes the attachment layer.
func (b *Builder) Layer() *attach.Layer { return b.layer }

func (b *Builder) emitCreate(ctx context.Context, module string, kind domain.ArtifactKind, name string, node, parent domain.BitID) {
	if b.hooks.OnCreate != nil {
		b.hooks.OnCreate(ctx, &domain.ArtifactEvent{
			Timestamp: b.now(), Module: module, Kind: kind, Name: name, Node: node, Parent: parent,
		})
	}
}

func (b *Builder) emitReparent(ctx context.Context, module string, kind domain.ArtifactKind, name string, node, parent domain.BitID) {
	if b.hooks.OnReparent != nil {
		b.hooks.OnReparent(ctx, &domain.ArtifactEvent{
			Timestamp: b.now(), Module: module, Kind: kind, Name: name, Node: node, Parent: parent,
		})
	}
}
