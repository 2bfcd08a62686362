package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Session metric names. Every dispatch and advance reports a counter and a
// duration; a successful exchange also reports the issued token.
const (
	MetricDispatchTotal      = "fmc.session.dispatch.total"
	MetricDispatchDurationMS = "fmc.session.dispatch.duration_ms"
	MetricAdvanceTotal       = "fmc.session.advance.total"
	MetricAdvanceDurationMS  = "fmc.session.advance.duration_ms"
	MetricTokensIssued       = "fmc.session.tokens_issued"
)

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func stepMetricNames(event string) (total, duration string) {
	switch event {
	case "dispatch":
		return MetricDispatchTotal, MetricDispatchDurationMS
	case "advance":
		return MetricAdvanceTotal, MetricAdvanceDurationMS
	default:
		return "fmc.session." + event + ".total", "fmc.session." + event + ".duration_ms"
	}
}

// stepTags keeps tag cardinality bounded: operation, method, auth mode and
// outcome only. URLs and tenant ids stay in logs.
func stepTags(event, status string, fields map[string]any) map[string]string {
	tags := map[string]string{
		"event":  event,
		"status": status,
	}
	for _, key := range []string{"operation", "method", "auth_mode"} {
		value, ok := fields[key]
		if !ok || value == nil {
			continue
		}
		if text := strings.TrimSpace(fmt.Sprint(value)); text != "" {
			tags[key] = text
		}
	}
	return tags
}

func (d *Driver) recordStep(ctx context.Context, event, status string, elapsed time.Duration, fields map[string]any) {
	if d == nil || d.metricsRecorder == nil {
		return
	}
	total, duration := stepMetricNames(event)
	tags := stepTags(event, status, fields)
	d.metricsRecorder.IncCounter(ctx, total, 1, tags)
	d.metricsRecorder.ObserveHistogram(ctx, duration, float64(elapsed.Milliseconds()), cloneTags(tags))
}

func (d *Driver) recordTokenIssued(ctx context.Context, req Request) {
	if d == nil || d.metricsRecorder == nil {
		return
	}
	d.metricsRecorder.IncCounter(ctx, MetricTokensIssued, 1, map[string]string{
		"operation": req.Operation().String(),
	})
}

func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for key, value := range tags {
		out[key] = value
	}
	return out
}
