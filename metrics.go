package weakhash

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Purge reasons reported on the weakhash.purged counter.
const (
	purgeLazy    = "lazy"
	purgeSweep   = "sweep"
	purgeRehash  = "rehash"
	purgeIterate = "iterate"
)

// tableMetrics records table events. Operations never block and carry no
// context, so the counters are recorded against context.Background.
type tableMetrics struct {
	inserts  metric.Int64Counter
	erases   metric.Int64Counter
	purged   metric.Int64Counter
	rehashes metric.Int64Counter
	table    attribute.KeyValue
}

func newTableMetrics(meter metric.Meter, name string) (*tableMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("weakhash")
	}

	inserts, err := meter.Int64Counter("weakhash.inserts",
		metric.WithDescription("Number of insert operations, split by whether an existing entry was updated"),
	)
	if err != nil {
		return nil, err
	}

	erases, err := meter.Int64Counter("weakhash.erases",
		metric.WithDescription("Number of entries removed by an explicit erase"),
	)
	if err != nil {
		return nil, err
	}

	purged, err := meter.Int64Counter("weakhash.purged",
		metric.WithDescription("Number of expired entries physically removed"),
	)
	if err != nil {
		return nil, err
	}

	rehashes, err := meter.Int64Counter("weakhash.rehashes",
		metric.WithDescription("Number of bucket array rebuilds"),
	)
	if err != nil {
		return nil, err
	}

	return &tableMetrics{
		inserts:  inserts,
		erases:   erases,
		purged:   purged,
		rehashes: rehashes,
		table:    attribute.String("table", name),
	}, nil
}

func (m *tableMetrics) recordInsert(update bool) {
	m.inserts.Add(context.Background(), 1,
		metric.WithAttributes(m.table, attribute.Bool("update", update)))
}

func (m *tableMetrics) recordErase() {
	m.erases.Add(context.Background(), 1, metric.WithAttributes(m.table))
}

func (m *tableMetrics) recordPurged(reason string, n int) {
	if n == 0 {
		return
	}
	m.purged.Add(context.Background(), int64(n),
		metric.WithAttributes(m.table, attribute.String("reason", reason)))
}

func (m *tableMetrics) recordRehash() {
	m.rehashes.Add(context.Background(), 1, metric.WithAttributes(m.table))
}
