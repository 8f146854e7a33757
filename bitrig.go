package bitrig

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/bitrig/internal/runtime"
	"github.com/aretw0/bitrig/pkg/adapters/memory"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/aretw0/bitrig/pkg/ports"
	"github.com/aretw0/bitrig/pkg/session"
)

// Character describes a character root found in the scene.
type Character = runtime.Character

// ModuleSet is a module together with the bits it owns.
type ModuleSet = runtime.ModuleSet

// Engine is the high-level entry point for the bitrig library.
// It wraps the internal runtime and serialises builds per character.
type Engine struct {
	scene   ports.SceneGraph
	builder *runtime.Builder
	locks   *session.Manager
	mu      sync.Mutex // one build mutates the scene at a time

	hooks      domain.BuildHooks
	order      domain.Order
	bestEffort bool
	locker     ports.DistributedLocker
	lockTTL    time.Duration
	logger     *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithHooks registers build observability hooks.
func WithHooks(hooks domain.BuildHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithOrder sets the priority order of linked modules (default ascending).
func WithOrder(order domain.Order) Option {
	return func(e *Engine) {
		e.order = order
	}
}

// WithBestEffort keeps building the remaining modules after a module fails.
func WithBestEffort(enabled bool) Option {
	return func(e *Engine) {
		e.bestEffort = enabled
	}
}

// WithLocker guards each character build with a distributed lock, so that
// several processes sharing one scene never build the same character at once.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// New creates an Engine over scene.
func New(scene ports.SceneGraph, opts ...Option) (*Engine, error) {
	if scene == nil {
		return nil, fmt.Errorf("scene is required")
	}
	eng := &Engine{scene: scene, order: domain.Ascending}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	switch eng.order {
	case domain.Ascending, domain.Descending:
	default:
		return nil, fmt.Errorf("unknown module order %q", eng.order)
	}

	eng.builder = runtime.NewBuilder(scene,
		runtime.WithLogger(eng.logger),
		runtime.WithHooks(eng.hooks),
		runtime.WithOrder(eng.order),
		runtime.WithBestEffort(eng.bestEffort),
	)
	lockOpts := []session.Option{session.WithLogger(eng.logger), session.WithLockTTL(eng.lockTTL)}
	if eng.locker != nil {
		lockOpts = append(lockOpts, session.WithLocker(eng.locker))
	}
	eng.locks = session.NewManager(nil, lockOpts...)
	return eng, nil
}

// Open loads the scene stored under name into memory and wraps it in an Engine.
func Open(ctx context.Context, store ports.SceneStore, name string, opts ...Option) (*Engine, error) {
	doc, err := store.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene %q: %w", name, err)
	}
	return OpenDocument(doc, opts...)
}

// OpenDocument decodes doc into an in-memory scene and wraps it in an Engine.
func OpenDocument(doc *domain.SceneDocument, opts ...Option) (*Engine, error) {
	scene, err := memory.FromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scene %q: %w", doc.Name, err)
	}
	return New(scene, opts...)
}

// Scene returns the scene the engine builds into.
func (e *Engine) Scene() ports.SceneGraph {
	return e.scene
}

// Snapshot exports the scene, including built artifacts, as a document.
// It fails if the scene cannot be exported.
func (e *Engine) Snapshot(name string) (*domain.SceneDocument, error) {
	s, ok := e.scene.(ports.Snapshotter)
	if !ok {
		return nil, fmt.Errorf("scene %T cannot be exported", e.scene)
	}
	return s.Snapshot(name)
}

// Save exports the scene and stores it under name.
func (e *Engine) Save(ctx context.Context, store ports.SceneStore, name string) error {
	doc, err := e.Snapshot(name)
	if err != nil {
		return err
	}
	return store.Save(ctx, name, doc)
}

// Characters lists every character root in the scene, in hierarchy order.
func (e *Engine) Characters() ([]Character, error) {
	roots, err := e.scene.Roots()
	if err != nil {
		return nil, err
	}
	var out []Character
	for _, root := range roots {
		desc, err := e.scene.Descendants(root)
		if err != nil {
			return nil, err
		}
		for _, bit := range append([]domain.BitID{root}, desc...) {
			kind, err := e.scene.Kind(bit)
			if err != nil {
				return nil, err
			}
			if kind != domain.KindTransform {
				continue
			}
			_, ok, err := e.builder.Layer().HasComponent(bit, domain.ClassCharacterRoot)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			ch, err := e.builder.Character(bit)
			if err != nil {
				return nil, err
			}
			out = append(out, ch)
		}
	}
	return out, nil
}

// Character finds a character by name.
func (e *Engine) Character(name string) (Character, error) {
	all, err := e.Characters()
	if err != nil {
		return Character{}, err
	}
	for _, ch := range all {
		if ch.Name == name {
			return ch, nil
		}
	}
	return Character{}, fmt.Errorf("%w: %q", domain.ErrNotCharacter, name)
}

// Build builds the character called name and wires its skeleton and rig groups.
// Builds are serialised within the engine, and across processes per character
// when a locker is configured.
func (e *Engine) Build(ctx context.Context, name string) (*domain.BuildReport, error) {
	ch, err := e.Character(name)
	if err != nil {
		return nil, err
	}
	var report *domain.BuildReport
	err = e.locks.WithLock(ctx, "character:"+ch.Name, func(ctx context.Context) error {
		e.mu.Lock()
		defer e.mu.Unlock()
		var err error
		report, err = e.builder.BuildCharacter(ctx, ch.Bit)
		return err
	})
	return report, err
}

// BuildAll builds every character in the scene, stopping at the first failure.
func (e *Engine) BuildAll(ctx context.Context) ([]*domain.BuildReport, error) {
	all, err := e.Characters()
	if err != nil {
		return nil, err
	}
	reports := make([]*domain.BuildReport, 0, len(all))
	for _, ch := range all {
		report, err := e.Build(ctx, ch.Name)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			return reports, fmt.Errorf("character %q: %w", ch.Name, err)
		}
	}
	return reports, nil
}

// Modules returns the character's modules in build order with their bit-sets.
func (e *Engine) Modules(name string) ([]ModuleSet, error) {
	ch, err := e.Character(name)
	if err != nil {
		return nil, err
	}
	return e.builder.Partition(ch.Bit)
}

// Validate checks the character's authoring data without building it.
func (e *Engine) Validate(name string) error {
	ch, err := e.Character(name)
	if err != nil {
		return err
	}
	return e.builder.Validate(ch.Bit)
}
