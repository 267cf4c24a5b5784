package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Create inserts the invoice together with all its items.
	Create(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	FindByIssuerAndNumber(ctx context.Context, db *gorm.DB, issuerID snowflake.ID, number string) (*Invoice, error)
}
