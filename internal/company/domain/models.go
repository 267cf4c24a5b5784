// Package domain contains persistence models for company identities.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Company is one party of an invoice. Whether it acts as issuer or
// recipient depends on which side of a given document it appears on; the
// entity itself carries no role.
type Company struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	CNPJ      string            `gorm:"column:cnpj;type:text;not null;uniqueIndex:ux_companies_cnpj"`
	Name      string            `gorm:"type:text;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }
