package product

import (
	"github.com/openfiscal/nfeingest/internal/product/repository"
	"github.com/openfiscal/nfeingest/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.catalog",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
