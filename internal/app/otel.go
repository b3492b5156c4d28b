package app

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fbcdesk/fbcdesk/internal/config"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

const otelShutdownTimeout = 5 * time.Second

// provideOtelShutdown sets up OTLP trace export when configured.
// Returns a no-op cleanup when tracing is disabled; trace export failures
// degrade to a warning, never block startup.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	obs := cfg.Observability
	if obs.OTLPEndpoint == "" {
		return func() {}
	}

	// SAFETY: os.Setenv is not concurrent-safe, but this function is called
	// exactly once during startup, before goroutines are spawned.
	if obs.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", obs.ServiceName)
	}
	if obs.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+obs.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(obs.OTLPEndpoint),
		otlptracehttp.WithInsecure(), // local collector doesn't need TLS
	)
	if err != nil {
		logger.Warn("creating OTLP exporter, tracing disabled", "error", err)
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)

	logger.Debug("trace export enabled",
		"endpoint", obs.OTLPEndpoint,
		"service", obs.ServiceName,
		"environment", obs.Environment,
	)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}
