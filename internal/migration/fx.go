package migration

import (
	companydomain "github.com/openfiscal/nfeingest/internal/company/domain"
	"github.com/openfiscal/nfeingest/internal/config"
	invoicedomain "github.com/openfiscal/nfeingest/internal/invoice/domain"
	productdomain "github.com/openfiscal/nfeingest/internal/product/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Dev/test dialects bootstrap straight from the models; the
			// unique indexes come from the gorm tags.
			return conn.AutoMigrate(
				&companydomain.Company{},
				&productdomain.Product{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceItem{},
			)
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
