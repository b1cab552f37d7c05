package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/domain"
	"github.com/lI-Isekai-Il/EA-Email-Finder/pkg/metrics"
)

const meterName = "engine"

// engineMetrics holds the instruments the engine reports while processing
// addresses.
type engineMetrics struct {
	// endpointChecks counts endpoint checks grouped by endpoint and result.
	endpointChecks metric.Int64Counter
	// checkDuration measures one endpoint check including pacing and retries.
	checkDuration metric.Float64Histogram
	// classifications counts terminal classifications grouped by class.
	classifications metric.Int64Counter
}

// newEngineMetrics creates the engine instruments on the provided meter
// provider.
func newEngineMetrics(mp metric.MeterProvider) (*engineMetrics, error) {
	meter := mp.Meter(meterName)

	m := new(engineMetrics)
	var err error

	if m.endpointChecks, err = meter.Int64Counter(
		"endpoint_checks_total",
		metric.WithDescription("Total endpoint checks grouped by endpoint and result"),
	); err != nil {
		return nil, err
	}

	if m.checkDuration, err = meter.Float64Histogram(
		"endpoint_check_duration_seconds",
		metric.WithDescription("Time taken by one endpoint check including pacing and retries"),
		metric.WithExplicitBucketBoundaries(metrics.DefaultBuckets...),
	); err != nil {
		return nil, err
	}

	if m.classifications, err = meter.Int64Counter(
		"addresses_classified_total",
		metric.WithDescription("Total addresses classified grouped by classification"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// recordCheck reports one finished endpoint check.
func (m *engineMetrics) recordCheck(ctx context.Context, endpoint string, dur time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	m.endpointChecks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("result", result)))
	m.checkDuration.Record(ctx, dur.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint)))
}

// recordClassification reports one terminal classification.
func (m *engineMetrics) recordClassification(ctx context.Context, class domain.Classification) {
	m.classifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("classification", string(class))))
}
