// Package telemetry exposes frame and step counters through the global
// OpenTelemetry meter. Without an installed provider they are no-ops.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Flight-Scope/internal/telemetry"

// Metrics holds the loop instruments.
type Metrics struct {
	steps     metric.Int64Counter
	frames    metric.Int64Counter
	clamped   metric.Int64Counter
	frameTime metric.Float64Histogram
	catchUp   metric.Int64Histogram
}

// New creates the instruments on m.
func New(m metric.Meter) (*Metrics, error) {
	var (
		mt  Metrics
		err error
	)
	mt.steps, err = m.Int64Counter("sim.steps",
		metric.WithDescription("Fixed-quantum simulation steps executed"))
	if err != nil {
		return nil, fmt.Errorf("creating steps counter: %w", err)
	}
	mt.frames, err = m.Int64Counter("render.frames",
		metric.WithDescription("Display callbacks processed"))
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}
	mt.clamped, err = m.Int64Counter("render.frames.clamped",
		metric.WithDescription("Callbacks whose elapsed time hit the catch-up clamp"))
	if err != nil {
		return nil, fmt.Errorf("creating clamp counter: %w", err)
	}
	mt.frameTime, err = m.Float64Histogram("render.frame.elapsed",
		metric.WithDescription("Real time credited per callback"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating frame time histogram: %w", err)
	}
	mt.catchUp, err = m.Int64Histogram("sim.steps.per_frame",
		metric.WithDescription("Simulation steps executed in one callback"))
	if err != nil {
		return nil, fmt.Errorf("creating catch-up histogram: %w", err)
	}
	return &mt, nil
}

// Global creates the instruments on the global meter provider.
func Global() (*Metrics, error) {
	return New(otel.Meter(instrumentationName))
}

// RecordFrame records one processed callback. A nil receiver is a no-op.
func (m *Metrics) RecordFrame(ctx context.Context, scene string, steps int, credited float64, clamped bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("scene", scene))
	m.frames.Add(ctx, 1, attrs)
	m.steps.Add(ctx, int64(steps), attrs)
	m.frameTime.Record(ctx, credited, attrs)
	m.catchUp.Record(ctx, int64(steps), attrs)
	if clamped {
		m.clamped.Add(ctx, 1, attrs)
	}
}
