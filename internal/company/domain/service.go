package domain

import (
	"context"
	"errors"

	"github.com/openfiscal/nfeingest/internal/nfe"
	"gorm.io/gorm"
)

// Resolver performs idempotent get-or-create of company identities keyed by
// CNPJ. Resolution runs inside the caller's transaction; tx is the scoped
// unit of work for one file.
type Resolver interface {
	ResolveIssuer(ctx context.Context, tx *gorm.DB, doc *nfe.Document) (*Company, error)
	ResolveRecipient(ctx context.Context, tx *gorm.DB, doc *nfe.Document) (*Company, error)
}

var (
	ErrInvalidCNPJ = errors.New("invalid_cnpj")
	ErrNotResolved = errors.New("company_not_resolved")
)
