// Package metrics exposes hub navigation and module lifecycle counters.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the hub's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Navigations  *prometheus.CounterVec
	Mounts       *prometheus.CounterVec
	Unmounts     *prometheus.CounterVec
	MountSeconds *prometheus.HistogramVec
	Running      *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Navigations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bdhub_navigations_total",
				Help: "Route changes committed by the router",
			},
			[]string{"kind"},
		),
		Mounts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bdhub_module_mounts_total",
				Help: "Module mount attempts by result",
			},
			[]string{"module", "result"},
		),
		Unmounts: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bdhub_module_unmounts_total",
				Help: "Module unmounts by result",
			},
			[]string{"module", "result"},
		),
		MountSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bdhub_module_mount_duration_seconds",
				Help:    "Time spent inside module Mount",
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"module"},
		),
		Running: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bdhub_module_running",
				Help: "1 while the module owns the content region",
			},
			[]string{"module"},
		),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) Navigation(kind string) {
	if m == nil {
		return
	}
	m.Navigations.WithLabelValues(kind).Inc()
}

func (m *Metrics) Mount(module string, took time.Duration, err error) {
	if m == nil {
		return
	}
	m.Mounts.WithLabelValues(module, result(err)).Inc()
	m.MountSeconds.WithLabelValues(module).Observe(took.Seconds())
	if err == nil {
		m.Running.WithLabelValues(module).Set(1)
	}
}

func (m *Metrics) Unmount(module string, err error) {
	if m == nil {
		return
	}
	m.Unmounts.WithLabelValues(module, result(err)).Inc()
	m.Running.WithLabelValues(module).Set(0)
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
