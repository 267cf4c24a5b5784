package ingest

import (
	"github.com/openfiscal/nfeingest/internal/config"
	"github.com/openfiscal/nfeingest/internal/nfe"
	"go.uber.org/fx"
)

var Module = fx.Module("ingest.processor",
	fx.Provide(func() nfe.Parser { return nfe.NewParser() }),
	fx.Provide(func(cfg config.Config) Config {
		return Config{Timeout: cfg.IngestTimeout}
	}),
	fx.Provide(New),
)
