package observability

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
)

// Module provides telemetry instruments plus a meter and tracer scoped to the service.
var Module = fx.Options(
	fx.Provide(
		newInstruments,
		func(i *Instruments) metric.Meter { return i.Meter(ServiceName) },
		func(i *Instruments) trace.Tracer { return i.Tracer(ServiceName) },
	),
)

type instrumentParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newInstruments(p instrumentParams) (*Instruments, error) {
	opts := Options{
		Endpoint: p.Config.OTLPEndpoint,
		Insecure: !strings.HasPrefix(p.Config.OTLPEndpoint, "https://"),
	}
	if strings.EqualFold(p.Config.LogLevel, "debug") {
		opts.Stdout = os.Stderr
	}

	instruments, shutdown, err := Init(context.Background(), ServiceName, opts, p.Logger)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Logger.Info("flushing telemetry")
			return shutdown(ctx)
		},
	})
	return instruments, nil
}
