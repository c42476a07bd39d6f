// Package otelmetrics implements metrics.Client on top of the OpenTelemetry
// SDK. Measurements are kept in memory and exposed as JSON by Handler.
package otelmetrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/architeacher/items/pkg/logger"
	"github.com/architeacher/items/pkg/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "github.com/architeacher/items"

type Client struct {
	provider    *sdkmetric.MeterProvider
	reader      *sdkmetric.ManualReader
	meter       metric.Meter
	descriptors metrics.Descriptors
	logger      logger.Logger

	mu         sync.Mutex
	counters   map[string]metric.Int64Counter
	histograms map[string]metric.Float64Histogram
}

func New(res *resource.Resource, descriptors metrics.Descriptors, log logger.Logger) *Client {
	reader := sdkmetric.NewManualReader()

	opts := []sdkmetric.Option{sdkmetric.WithReader(reader)}
	if res != nil {
		opts = append(opts, sdkmetric.WithResource(res))
	}

	provider := sdkmetric.NewMeterProvider(opts...)

	return &Client{
		provider:    provider,
		reader:      reader,
		meter:       provider.Meter(meterName),
		descriptors: descriptors,
		logger:      log,
		counters:    make(map[string]metric.Int64Counter),
		histograms:  make(map[string]metric.Float64Histogram),
	}
}

func (c *Client) Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue) {
	opt := metric.WithAttributes(attributes...)

	switch v := value.(type) {
	case int:
		c.add(ctx, key, int64(v), opt)
	case int64:
		c.add(ctx, key, v, opt)
	case float64:
		c.record(ctx, key, v, opt)
	default:
		c.logger.Warn().Str("metric", key).Str("type", fmt.Sprintf("%T", value)).Msg("unsupported metric value type")
	}
}

func (c *Client) add(ctx context.Context, key string, value int64, opt metric.AddOption) {
	c.mu.Lock()
	counter, ok := c.counters[key]
	if !ok {
		var err error

		counter, err = metrics.RegisterInt64Counter(c.meter, c.descriptors.Lookup(key), key)
		if err != nil {
			c.mu.Unlock()
			c.logger.Warn().Err(err).Msg("dropping measurement")

			return
		}

		c.counters[key] = counter
	}
	c.mu.Unlock()

	counter.Add(ctx, value, opt)
}

func (c *Client) record(ctx context.Context, key string, value float64, opt metric.RecordOption) {
	c.mu.Lock()
	histogram, ok := c.histograms[key]
	if !ok {
		var err error

		histogram, err = metrics.RegisterFloat64Histogram(c.meter, c.descriptors.Lookup(key), key)
		if err != nil {
			c.mu.Unlock()
			c.logger.Warn().Err(err).Msg("dropping measurement")

			return
		}

		c.histograms[key] = histogram
	}
	c.mu.Unlock()

	histogram.Record(ctx, value, opt)
}

// Snapshot collects the current state of every instrument.
func (c *Client) Snapshot(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics

	if err := c.reader.Collect(ctx, &rm); err != nil {
		return rm, fmt.Errorf("collecting metrics: %w", err)
	}

	return rm, nil
}

func (c *Client) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rm, err := c.Snapshot(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(rm.ScopeMetrics); err != nil {
			c.logger.Error().Err(err).Msg("failed to encode metrics")
		}
	})
}

func (c *Client) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}
