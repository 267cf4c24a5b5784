package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/openfiscal/nfeingest/internal/config"
	"github.com/openfiscal/nfeingest/internal/observability/logger"
	"github.com/openfiscal/nfeingest/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewIngestMetrics),
	fx.Invoke(StartMetricsListener),
)

func NewLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	return logger.New(lc, logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
}

func NewIngestMetrics() *metrics.Ingest {
	return metrics.NewIngest(prometheus.DefaultRegisterer)
}

// StartMetricsListener serves /metrics on MetricsAddr for the lifetime of
// the app. An empty address disables the endpoint.
func StartMetricsListener(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) {
	if cfg.MetricsAddr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("metrics listener failed", zap.Error(err))
				}
			}()
			log.Info("metrics listening", zap.String("addr", cfg.MetricsAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
