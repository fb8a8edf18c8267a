package api

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/MattZaluski/SWETripPlanner/app/observability/metrics"
)

// Recorder funnels gateway instrumentation through one place. A nil Recorder
// (or one built from nil instruments, as in tests) records nothing.
type Recorder struct {
	m *metrics.AppMetrics
}

func NewRecorder(m *metrics.AppMetrics) *Recorder {
	return &Recorder{m: m}
}

// Cache counts a hit or miss for one cache class.
func (r *Recorder) Cache(ctx context.Context, class string, hit bool) {
	if r == nil || r.m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("class", class))
	if hit {
		r.m.CacheHitsTotal.Add(ctx, 1, attrs)
	} else {
		r.m.CacheMissesTotal.Add(ctx, 1, attrs)
	}
}

// Upstream records one completed outbound call.
func (r *Recorder) Upstream(ctx context.Context, provider string, d time.Duration, err error) {
	if r == nil || r.m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	)
	r.m.UpstreamRequestsTotal.Add(ctx, 1, attrs)
	r.m.UpstreamDurationSeconds.Record(ctx, d.Seconds(), attrs)
}

// LLMFallback counts a completion served by a non-primary provider.
func (r *Recorder) LLMFallback(ctx context.Context, provider string) {
	if r == nil || r.m == nil {
		return
	}
	r.m.LLMFallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// PlanDuration records one full pipeline run.
func (r *Recorder) PlanDuration(ctx context.Context, mode string, d time.Duration) {
	if r == nil || r.m == nil {
		return
	}
	r.m.PlanDurationSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("mode", mode)))
}
