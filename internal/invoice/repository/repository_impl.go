package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openfiscal/nfeingest/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Create inserts the invoice row and every item in one statement batch.
// The caller's transaction makes the aggregate atomic.
func (r *repo) Create(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO invoices (id, number, issuer_id, recipient_id, series, access_key, issued_at,
		                       total_icms, total_products, total_invoice, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		invoice.ID,
		invoice.Number,
		invoice.IssuerID,
		invoice.RecipientID,
		invoice.Series,
		invoice.AccessKey,
		invoice.IssuedAt,
		invoice.TotalICMS,
		invoice.TotalProducts,
		invoice.TotalInvoice,
		invoice.Metadata,
		invoice.CreatedAt,
	).Error
	if err != nil {
		return err
	}
	for i := range invoice.Items {
		item := &invoice.Items[i]
		err = db.WithContext(ctx).Exec(
			`INSERT INTO invoice_items (id, invoice_id, product_id, line_no, quantity, unit_price, total, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.InvoiceID,
			item.ProductID,
			item.LineNo,
			item.Quantity,
			item.UnitPrice,
			item.Total,
			item.CreatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) FindByIssuerAndNumber(ctx context.Context, db *gorm.DB, issuerID snowflake.ID, number string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Raw(
		`SELECT id, number, issuer_id, recipient_id, series, access_key, issued_at,
		        total_icms, total_products, total_invoice, metadata, created_at
		 FROM invoices WHERE issuer_id = ? AND number = ?`,
		issuerID,
		number,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}
