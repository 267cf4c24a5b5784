// Package domain contains the invoice aggregate and its ports.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice is one ingested document. Identity is (issuer_id, number); a
// second document with the same pair is rejected, never merged. Totals are
// copied from the document, not recomputed.
type Invoice struct {
	ID            snowflake.ID      `gorm:"primaryKey"`
	Number        string            `gorm:"type:text;not null;uniqueIndex:ux_invoices_issuer_number,priority:2"`
	IssuerID      snowflake.ID      `gorm:"not null;uniqueIndex:ux_invoices_issuer_number,priority:1"`
	RecipientID   snowflake.ID      `gorm:"not null;index"`
	Series        string            `gorm:"type:text"`
	AccessKey     string            `gorm:"type:text"`
	IssuedAt      time.Time
	TotalICMS     decimal.Decimal   `gorm:"type:numeric(15,2)"`
	TotalProducts decimal.Decimal   `gorm:"type:numeric(15,2)"`
	TotalInvoice  decimal.Decimal   `gorm:"type:numeric(15,2)"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt     time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line of the aggregate. Quantity and price are the
// document's snapshot at time of sale; they never alias the catalog price.
// LineNo preserves document order, and repeated lines for the same product
// are legitimate.
type InvoiceItem struct {
	ID        snowflake.ID    `gorm:"primaryKey"`
	InvoiceID snowflake.ID    `gorm:"not null;index"`
	ProductID snowflake.ID    `gorm:"not null;index"`
	LineNo    int             `gorm:"not null"`
	Quantity  decimal.Decimal `gorm:"type:numeric(15,4)"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(15,4)"`
	Total     decimal.Decimal `gorm:"type:numeric(15,2)"`
	CreatedAt time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
