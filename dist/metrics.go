package dist

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	instrumentationName = "github.com/in-the-mood-for-mov/erlang-cnode/dist"
)

// Metrics defines the connection instrumentation
type Metrics struct {
	// Specifies the total number of messages decoded
	decoded metric.Int64Counter
	// Specifies the total number of packets that failed to decode
	errors metric.Int64Counter
	// Specifies the total number of atoms stored by distribution headers
	cacheInserts metric.Int64Counter
	// Specifies the decode duration in microseconds
	duration metric.Int64Histogram
}

// NewMetrics creates the instruments on meter. A nil meter means the global
// meter provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(instrumentationName)
	}

	m := new(Metrics)
	var err error
	if m.decoded, err = meter.Int64Counter(
		"cnode_messages_decoded",
		metric.WithDescription("Total number of messages decoded"),
	); err != nil {
		return nil, fmt.Errorf("failed to create decoded instrument, %w", err)
	}

	if m.errors, err = meter.Int64Counter(
		"cnode_decode_errors",
		metric.WithDescription("Total number of packets that failed to decode"),
	); err != nil {
		return nil, fmt.Errorf("failed to create errors instrument, %w", err)
	}

	if m.cacheInserts, err = meter.Int64Counter(
		"cnode_atom_cache_inserts",
		metric.WithDescription("Total number of atoms stored in atom caches"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cacheInserts instrument, %w", err)
	}

	if m.duration, err = meter.Int64Histogram(
		"cnode_decode_duration",
		metric.WithDescription("The latency of decoding a packet in microseconds"),
		metric.WithUnit("us"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration instrument, %w", err)
	}

	return m, nil
}

func (m *Metrics) recordDecoded(ctx context.Context, t MessageType, took time.Duration) {
	m.decoded.Add(ctx, 1, metric.WithAttributes(attribute.String("type", t.String())))
	m.duration.Record(ctx, took.Microseconds())
}

func (m *Metrics) recordError(ctx context.Context, took time.Duration) {
	m.errors.Add(ctx, 1)
	m.duration.Record(ctx, took.Microseconds())
}

func (m *Metrics) recordCacheInserts(ctx context.Context, n uint64) {
	if n > 0 {
		m.cacheInserts.Add(ctx, int64(n))
	}
}
