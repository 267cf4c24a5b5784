package invoice

import (
	"github.com/openfiscal/nfeingest/internal/invoice/repository"
	"github.com/openfiscal/nfeingest/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
