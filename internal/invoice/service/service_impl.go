package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/openfiscal/nfeingest/internal/company/domain"
	"github.com/openfiscal/nfeingest/internal/invoice/domain"
	"github.com/openfiscal/nfeingest/internal/nfe"
	productdomain "github.com/openfiscal/nfeingest/internal/product/domain"
	"github.com/openfiscal/nfeingest/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	repo  domain.Repository
	genID *snowflake.Node
}

func New(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("invoice.service"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) AssertNotDuplicate(ctx context.Context, tx *gorm.DB, issuer *companydomain.Company, number string) error {
	existing, err := s.repo.FindByIssuerAndNumber(ctx, tx, issuer.ID, number)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.DuplicateInvoiceError{
			Number:     number,
			IssuerName: issuer.Name,
			IssuerCNPJ: issuer.CNPJ,
		}
	}
	return nil
}

func (s *Service) Build(doc *nfe.Document, issuer, recipient *companydomain.Company, products map[string]*productdomain.Product) (*domain.Invoice, error) {
	now := time.Now().UTC()
	invoice := &domain.Invoice{
		ID:            s.genID.Generate(),
		Number:        doc.Identification.Number,
		IssuerID:      issuer.ID,
		RecipientID:   recipient.ID,
		Series:        doc.Identification.Series,
		AccessKey:     doc.Identification.AccessKey,
		IssuedAt:      doc.Identification.IssuedAt,
		TotalICMS:     doc.Totals.ICMS,
		TotalProducts: doc.Totals.Products,
		TotalInvoice:  doc.Totals.Invoice,
		CreatedAt:     now,
	}

	lineNo := 0
	for _, group := range doc.ItemGroups {
		for _, ref := range group.Products {
			product, ok := products[ref.Code]
			if !ok {
				return nil, domain.ErrProductNotResolved
			}
			lineNo++
			invoice.Items = append(invoice.Items, domain.InvoiceItem{
				ID:        s.genID.Generate(),
				InvoiceID: invoice.ID,
				ProductID: product.ID,
				LineNo:    lineNo,
				Quantity:  ref.Quantity,
				UnitPrice: ref.UnitPrice,
				Total:     ref.Total,
				CreatedAt: now,
			})
		}
	}
	return invoice, nil
}

func (s *Service) Persist(ctx context.Context, tx *gorm.DB, issuer *companydomain.Company, invoice *domain.Invoice) error {
	err := s.repo.Create(ctx, tx, invoice)
	if err == nil {
		s.log.Debug("invoice persisted",
			zap.String("number", invoice.Number),
			zap.Int("items", len(invoice.Items)),
		)
		return nil
	}
	// A concurrent ingestion of the same file can slip past the pre-check;
	// the unique index on (issuer_id, number) makes the loser a duplicate,
	// not a transient failure.
	if db.IsDuplicateKeyErr(err) {
		return &domain.DuplicateInvoiceError{
			Number:     invoice.Number,
			IssuerName: issuer.Name,
			IssuerCNPJ: issuer.CNPJ,
		}
	}
	return err
}
