// Package metrics exposes build activity as Prometheus collectors.
package metrics

import (
	"context"

	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors holds the build metrics.
type Collectors struct {
	ModulesBuilt   *prometheus.CounterVec
	ModuleDuration *prometheus.HistogramVec
	Created        *prometheus.CounterVec
	Reparented     *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		ModulesBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitrig_modules_built_total",
				Help: "Total number of module builds, by outcome",
			},
			[]string{"character", "outcome"},
		),
		ModuleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bitrig_module_build_seconds",
				Help:    "Duration of module builds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"character"},
		),
		Created: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitrig_artifacts_created_total",
				Help: "Total number of nodes created by builds",
			},
			[]string{"kind"},
		),
		Reparented: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bitrig_reparents_total",
				Help: "Total number of parent changes made by builds",
			},
			[]string{"kind"},
		),
	}
	for _, col := range []prometheus.Collector{c.ModulesBuilt, c.ModuleDuration, c.Created, c.Reparented} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns build hooks feeding the collectors.
func (c *Collectors) Hooks() domain.BuildHooks {
	return domain.BuildHooks{
		OnModuleDone: func(_ context.Context, e *domain.ModuleEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			c.ModulesBuilt.WithLabelValues(e.Character, outcome).Inc()
			c.ModuleDuration.WithLabelValues(e.Character).Observe(e.Duration.Seconds())
		},
		OnCreate: func(_ context.Context, e *domain.ArtifactEvent) {
			c.Created.WithLabelValues(string(e.Kind)).Inc()
		},
		OnReparent: func(_ context.Context, e *domain.ArtifactEvent) {
			c.Reparented.WithLabelValues(string(e.Kind)).Inc()
		},
	}
}
