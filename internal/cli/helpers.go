package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/bitrig/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// Unlike signal.NotifyContext it remembers which signal arrived.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}
	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
		signal.Stop(sc.sigCh)
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func debugHooks(logger *slog.Logger) domain.BuildHooks {
	return domain.BuildHooks{
		OnModuleStart: func(ctx context.Context, e *domain.ModuleEvent) {
			logger.Debug("Module Start", "character", e.Character, "module", e.Module, "index", e.Index)
		},
		OnModuleDone: func(ctx context.Context, e *domain.ModuleEvent) {
			if e.Err != nil {
				logger.Debug("Module Failed", "module", e.Module, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.Debug("Module Done", "module", e.Module, "duration", e.Duration)
		},
		OnCreate: func(ctx context.Context, e *domain.ArtifactEvent) {
			logger.Debug("Create", "module", e.Module, "kind", e.Kind, "name", e.Name)
		},
		OnReparent: func(ctx context.Context, e *domain.ArtifactEvent) {
			logger.Debug("Reparent", "module", e.Module, "kind", e.Kind, "name", e.Name, "parent", e.Parent)
		},
	}
}
