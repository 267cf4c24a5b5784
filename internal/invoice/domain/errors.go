package domain

import (
	"errors"
	"fmt"
)

// DuplicateInvoiceError reports that an invoice with the same
// (issuer, number) pair already exists. It is a terminal rejection:
// retrying the same file would only re-detect the duplicate.
type DuplicateInvoiceError struct {
	Number     string
	IssuerName string
	IssuerCNPJ string
}

func (e *DuplicateInvoiceError) Error() string {
	return fmt.Sprintf("invoice %s already exists for issuer %s (%s)",
		e.Number, e.IssuerName, e.IssuerCNPJ)
}

var ErrProductNotResolved = errors.New("invoice line references unresolved product")
