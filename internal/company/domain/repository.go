package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, company *Company) error
	FindByCNPJ(ctx context.Context, db *gorm.DB, cnpj string) (*Company, error)
}
