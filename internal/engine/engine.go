package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"boarbot/internal/domain"
	"boarbot/internal/metrics"
)

// Engine holds the ordered module registry. Build it fully before calling
// Run; Register is not safe to call concurrently with Dispatch.
type Engine struct {
	modules []domain.Module
	log     *slog.Logger
	metrics *metrics.Metrics
}

// New returns an empty engine. A nil logger or metrics selects defaults.
func New(log *slog.Logger, m *metrics.Metrics) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Engine{
		log:     log.With("component", "engine"),
		metrics: m,
	}
}

// Register appends m to the registry and returns the engine for chaining.
func (e *Engine) Register(m domain.Module) *Engine {
	e.modules = append(e.modules, m)
	return e
}

// Modules returns the registered module names in dispatch order.
func (e *Engine) Modules() []string {
	names := make([]string, len(e.modules))
	for i, m := range e.modules {
		names[i] = m.Name()
	}
	return names
}

// Dispatch hands ev to every module in registration order.
func (e *Engine) Dispatch(ctx context.Context, ev domain.Event) {
	e.metrics.EventsDispatched.WithLabelValues(string(ev.Kind())).Inc()
	for _, m := range e.modules {
		e.invoke(ctx, m, ev)
	}
}

// Run dispatches events until the channel is closed (nil) or ctx ends
// (ctx.Err()).
func (e *Engine) Run(ctx context.Context, events <-chan domain.Event) error {
	e.log.Info("dispatching events", "modules", e.Modules())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				e.log.Info("event stream closed")
				return nil
			}
			e.Dispatch(ctx, ev)
		}
	}
}

func (e *Engine) invoke(ctx context.Context, m domain.Module, ev domain.Event) {
	name := m.Name()
	start := time.Now()
	defer func() {
		e.metrics.ModuleHandleSeconds.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	err := safeHandle(ctx, m, ev)
	if err == nil {
		return
	}

	reason := "error"
	if _, ok := err.(*panicError); ok {
		reason = "panic"
	}
	e.metrics.ModuleFailures.WithLabelValues(name, reason).Inc()
	e.log.Error("module failed", "module", name, "event", ev.Kind(), "reason", reason, "err", err)
}

// panicError carries a value recovered from a module.
type panicError struct {
	value any
}

func (p *panicError) Error() string { return fmt.Sprintf("panic: %v", p.value) }

func safeHandle(ctx context.Context, m domain.Module, ev domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return m.Handle(ctx, ev)
}
