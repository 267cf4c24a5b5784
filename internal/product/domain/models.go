// Package domain contains persistence models for the product catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Product is one catalog entry. The catalog is partitioned per owning
// company: two issuers may use the same code for unrelated products, so
// identity is (company_id, code).
type Product struct {
	ID          snowflake.ID    `gorm:"primaryKey"`
	CompanyID   snowflake.ID    `gorm:"not null;uniqueIndex:ux_products_company_code,priority:1"`
	Code        string          `gorm:"type:text;not null;uniqueIndex:ux_products_company_code,priority:2"`
	Description string          `gorm:"type:text"`
	Unit        string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:numeric(15,4)"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }
