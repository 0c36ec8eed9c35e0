package indexer

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/gabapcia/registrywatch/internal/indexer"

type metrics struct {
	batches         metric.Int64Counter
	eventsPublished metric.Int64Counter
	itemsInvalid    metric.Int64Counter
	itemsSkipped    metric.Int64Counter
	cycleFailures   metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	return &metrics{
		batches:         counter(meter, "registrywatch.batches", "Batches fully published and committed"),
		eventsPublished: counter(meter, "registrywatch.events.published", "Registry events accepted by the sink"),
		itemsInvalid:    counter(meter, "registrywatch.items.invalid", "Items skipped because their registry payload was malformed"),
		itemsSkipped:    counter(meter, "registrywatch.items.skipped", "Items that carried no registry operation"),
		cycleFailures:   counter(meter, "registrywatch.cycle.failures", "Cycles abandoned after exhausting their retries"),
	}
}

func counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(instrumentationName).Int64Counter(name)
	}

	return c
}

func defaultTracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func defaultMeter() metric.Meter {
	return otel.Meter(instrumentationName)
}
