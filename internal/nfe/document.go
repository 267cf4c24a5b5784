// Package nfe holds the parsed form of an electronic invoice (NF-e) file.
package nfe

import (
	"time"

	"github.com/shopspring/decimal"
)

// Document is the structured representation of one invoice file. It is
// produced by Parse and treated as read-only by everything downstream.
type Document struct {
	Identification Identification `validate:"required"`
	Issuer         Party          `validate:"required"`
	Recipient      Party          `validate:"required"`
	Totals         Totals
	ItemGroups     []ItemGroup `validate:"min=1,dive"`
}

// Identification carries the invoice identity fields.
type Identification struct {
	Number    string `validate:"required"`
	Series    string
	AccessKey string
	IssuedAt  time.Time
}

// Party is one side of the invoice; the same shape serves issuer and
// recipient.
type Party struct {
	CNPJ string `validate:"required"`
	Name string `validate:"required"`
}

// Totals are copied from the document as-is, never recomputed.
type Totals struct {
	ICMS     decimal.Decimal
	Products decimal.Decimal
	Invoice  decimal.Decimal
}

// ItemGroup is one det block; ordering follows the file.
type ItemGroup struct {
	Products []ProductRef `validate:"min=1,dive"`
}

// ProductRef is a product reference within a line, with the per-line
// quantity/price snapshot.
type ProductRef struct {
	Code        string `validate:"required"`
	Description string
	Unit        string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// ProductCodes returns the distinct product codes in document order.
func (d *Document) ProductCodes() []string {
	seen := make(map[string]struct{})
	codes := make([]string, 0, len(d.ItemGroups))
	for _, group := range d.ItemGroups {
		for _, ref := range group.Products {
			if _, ok := seen[ref.Code]; ok {
				continue
			}
			seen[ref.Code] = struct{}{}
			codes = append(codes, ref.Code)
		}
	}
	return codes
}
