// Package instrument sets up OpenTelemetry tracing, metrics and the slog
// pipeline the rest of the service logs through.
package instrument

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const defaultMetricsInterval = time.Minute

// Instrumentation hands out tracers and meters and flushes them on shutdown.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
	Shutdown(ctx context.Context) error
}

// Config drives OpenTelemetry initialization.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	// OTLPEndpoint is host:port of the collector's gRPC receiver.
	OTLPEndpoint string
	OTLPSecure   bool
	// TraceSampleRatio is clamped to [0, 1].
	TraceSampleRatio float64
	MetricsInterval  time.Duration
	// MaskFields lists log attribute keys whose values are replaced.
	MaskFields []string
	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string
}

type providers struct {
	traces  *sdktrace.TracerProvider
	metrics *sdkmetric.MeterProvider
	logs    *sdklog.LoggerProvider
}

// New exports traces, metrics and logs over OTLP gRPC. When cfg.Enabled is
// false only local JSON logging is configured and a noop is returned.
func New(ctx context.Context, cfg *Config) (Instrumentation, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	if !cfg.Enabled {
		initLogging(cfg.ServiceName, cfg.LogLevel, nil, cfg.MaskFields)
		return NewNoop(), nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
			attribute.String("env", cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	p, err := newProviders(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	otel.SetTracerProvider(p.traces)
	otel.SetMeterProvider(p.metrics)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	initLogging(cfg.ServiceName, cfg.LogLevel, p.logs, cfg.MaskFields)

	return p, nil
}

func newProviders(ctx context.Context, cfg *Config, res *resource.Resource) (*providers, error) {
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if !cfg.OTLPSecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	traceExp, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, err
	}
	metricExp, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, errors.Join(err, traceExp.Shutdown(ctx))
	}
	logExp, err := otlploggrpc.New(ctx, logOpts...)
	if err != nil {
		return nil, errors.Join(err, traceExp.Shutdown(ctx), metricExp.Shutdown(ctx))
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	ratio := min(max(cfg.TraceSampleRatio, 0), 1)

	return &providers{
		traces: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
			sdktrace.WithBatcher(traceExp),
		),
		metrics: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(interval))),
		),
		logs: sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		),
	}, nil
}

func (p *providers) Tracer(name string) trace.Tracer { return p.traces.Tracer(name) }

func (p *providers) Meter(name string) metric.Meter { return p.metrics.Meter(name) }

// Shutdown flushes pending spans, metrics and log records.
func (p *providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.traces.Shutdown(ctx),
		p.metrics.Shutdown(ctx),
		p.logs.Shutdown(ctx),
	)
}

type noop struct {
	tp trace.TracerProvider
	mp metric.MeterProvider
}

// NewNoop returns instrumentation that records nothing. Tests use it.
func NewNoop() Instrumentation {
	return noop{
		tp: tracenoop.NewTracerProvider(),
		mp: metricnoop.NewMeterProvider(),
	}
}

func (n noop) Tracer(name string) trace.Tracer { return n.tp.Tracer(name) }

func (n noop) Meter(name string) metric.Meter { return n.mp.Meter(name) }

func (noop) Shutdown(context.Context) error { return nil }
