package company

import (
	"github.com/openfiscal/nfeingest/internal/company/repository"
	"github.com/openfiscal/nfeingest/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.resolver",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
