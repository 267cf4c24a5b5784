package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/openfiscal/nfeingest/internal/nfe"
	"gorm.io/gorm"
)

// Catalog resolves product references against the issuer-scoped catalog.
// Preload batches the lookup for every code in one document; ResolveOrCreate
// then serves each line from the preloaded map, creating missing entries and
// inserting them back into the map so repeated codes within one document
// resolve to a single row. Both run inside the caller's transaction.
type Catalog interface {
	Preload(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, codes []string) (map[string]*Product, error)
	ResolveOrCreate(ctx context.Context, tx *gorm.DB, preloaded map[string]*Product, ref nfe.ProductRef, companyID snowflake.ID) (*Product, error)
}

var (
	ErrInvalidCode = errors.New("invalid_code")
	ErrNotResolved = errors.New("product_not_resolved")
)
