package domain

import (
	"context"

	companydomain "github.com/openfiscal/nfeingest/internal/company/domain"
	"github.com/openfiscal/nfeingest/internal/nfe"
	productdomain "github.com/openfiscal/nfeingest/internal/product/domain"
	"gorm.io/gorm"
)

// Service guards invoice uniqueness, assembles the aggregate and persists
// it. All methods that touch storage run inside the caller's transaction.
type Service interface {
	// AssertNotDuplicate fails with *DuplicateInvoiceError when an invoice
	// with the same (issuer, number) pair already exists.
	AssertNotDuplicate(ctx context.Context, tx *gorm.DB, issuer *companydomain.Company, number string) error
	// Build assembles the invoice and its items from the document and the
	// resolved entities. Pure; document line order is preserved and repeated
	// lines are kept.
	Build(doc *nfe.Document, issuer, recipient *companydomain.Company, products map[string]*productdomain.Product) (*Invoice, error)
	// Persist inserts the aggregate. A unique-index conflict on
	// (issuer, number) from a concurrent ingestion surfaces as
	// *DuplicateInvoiceError.
	Persist(ctx context.Context, tx *gorm.DB, issuer *companydomain.Company, invoice *Invoice) error
}
