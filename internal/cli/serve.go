package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/bitrig"
	httpadapter "github.com/aretw0/bitrig/internal/adapters/http"
	"github.com/aretw0/bitrig/internal/metrics"
	"github.com/aretw0/bitrig/internal/presentation/tui"
	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// Handler builds the HTTP API over the app's scenes, recording build metrics
// on a fresh registry that /metrics exposes.
func (a *App) Handler() (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	hooks := m.Hooks()
	if a.debug {
		hooks = domain.MergeHooks(hooks, debugHooks(a.Logger))
	}
	return httpadapter.NewHandler(&httpadapter.Server{
		Scenes:   a.Scenes,
		Options:  a.EngineOptions(bitrig.WithHooks(hooks)),
		Gatherer: reg,
		Logger:   a.Logger,
	}), nil
}

// Serve runs the HTTP API on addr until ctx is cancelled, then shuts down
// gracefully.
func (a *App) Serve(ctx context.Context, addr string) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	tui.PrintBanner(a.Out)
	serverErrors := make(chan error, 1)
	go func() {
		printSystemMessage(a.Out, "Serving on %s", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			return srv.Close()
		}
		printSystemMessage(a.Out, "Server stopped gracefully")
		return nil
	}
}
