package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporter names accepted by NewProviders.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// ErrUnknownExporter is returned for an exporter name NewProviders does not know.
var ErrUnknownExporter = errors.New("observability: unknown exporter")

// ProviderConfig selects how telemetry leaves the process.
type ProviderConfig struct {
	ServiceName    string
	Exporter       string        // ExporterNone or ExporterStdout
	Writer         io.Writer     // destination of the stdout exporter
	MetricInterval time.Duration // export period of the stdout metric reader
}

// Providers holds the SDK tracer and meter providers.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// NewProviders builds SDK providers. With ExporterNone spans and metrics are
// still recorded and aggregated but never exported.
func NewProviders(cfg ProviderConfig) (*Providers, error) {
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	traceOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	meterOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	switch cfg.Exporter {
	case ExporterNone, "":
	case ExporterStdout:
		spanExp, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("stdout trace exporter: %w", err)
		}
		metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.Writer))
		if err != nil {
			return nil, fmt.Errorf("stdout metric exporter: %w", err)
		}
		var readerOpts []sdkmetric.PeriodicReaderOption
		if cfg.MetricInterval > 0 {
			readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spanExp))
		meterOpts = append(meterOpts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, readerOpts...)))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}

	return &Providers{
		Tracer: sdktrace.NewTracerProvider(traceOpts...),
		Meter:  sdkmetric.NewMeterProvider(meterOpts...),
	}, nil
}

// Shutdown flushes pending telemetry and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Tracer.Shutdown(ctx), p.Meter.Shutdown(ctx))
}
