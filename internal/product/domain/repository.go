package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByCode(ctx context.Context, db *gorm.DB, companyID snowflake.ID, code string) (*Product, error)
	FindByCodes(ctx context.Context, db *gorm.DB, companyID snowflake.ID, codes []string) ([]Product, error)
}
