package main

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openfiscal/nfeingest/internal/clock"
	"github.com/openfiscal/nfeingest/internal/company"
	"github.com/openfiscal/nfeingest/internal/config"
	"github.com/openfiscal/nfeingest/internal/ingest"
	"github.com/openfiscal/nfeingest/internal/invoice"
	"github.com/openfiscal/nfeingest/internal/migration"
	"github.com/openfiscal/nfeingest/internal/observability"
	"github.com/openfiscal/nfeingest/internal/product"
	"github.com/openfiscal/nfeingest/internal/retryqueue"
	"github.com/openfiscal/nfeingest/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		// Core infrastructure
		fx.Provide(config.Load),
		fx.Provide(func(cfg config.Config) db.Config { return cfg.DB() }),
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domain modules
		company.Module,
		product.Module,
		invoice.Module,
		ingest.Module,
		retryqueue.Module,

		fx.Invoke(StartWorker),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

// StartWorker runs the queue consumer and the delayed-envelope mover for
// the lifetime of the app.
func StartWorker(lc fx.Lifecycle, q *retryqueue.Queue, p *ingest.Processor, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("ingest worker starting")
			go q.Consume(ctx, func(ctx context.Context, fileRef string) {
				p.ProcessFile(ctx, fileRef)
			})
			go q.RunMover(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
