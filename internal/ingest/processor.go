// Package ingest runs the file ingestion pipeline: parse, resolve,
// persist, classify.
package ingest

import (
	"context"
	"errors"
	"time"

	companydomain "github.com/openfiscal/nfeingest/internal/company/domain"
	invoicedomain "github.com/openfiscal/nfeingest/internal/invoice/domain"
	"github.com/openfiscal/nfeingest/internal/nfe"
	"github.com/openfiscal/nfeingest/internal/observability/metrics"
	productdomain "github.com/openfiscal/nfeingest/internal/product/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Delivery is what became of a resubmitted file.
type Delivery int

const (
	// DeliveryScheduled means the file will be redelivered later.
	DeliveryScheduled Delivery = iota
	// DeliveryDead means the retry budget is exhausted and the file was
	// dead-lettered instead.
	DeliveryDead
	// DeliveryFailed means the queue could not accept the file at all.
	DeliveryFailed
)

// RetryQueue resubmits a file reference for a later attempt. The result
// tells the caller whether a redelivery is actually coming.
type RetryQueue interface {
	Send(ctx context.Context, fileRef string) Delivery
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Metrics   *metrics.Ingest `optional:"true"`
	Parser    nfe.Parser
	Companies companydomain.Resolver
	Catalog   productdomain.Catalog
	Invoices  invoicedomain.Service
	Retry     RetryQueue
	Config    Config `optional:"true"`
}

// Config bounds one ingestion attempt.
type Config struct {
	Timeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// Processor is the ingestion entry point. One instance is safe for
// concurrent use: each call owns its transaction and shares no mutable
// state with other calls.
type Processor struct {
	db        *gorm.DB
	log       *zap.Logger
	metrics   *metrics.Ingest
	cfg       Config
	parser    nfe.Parser
	companies companydomain.Resolver
	catalog   productdomain.Catalog
	invoices  invoicedomain.Service
	retry     RetryQueue
}

func New(p Params) *Processor {
	return &Processor{
		db:        p.DB,
		log:       p.Log.Named("ingest.processor"),
		metrics:   p.Metrics,
		cfg:       p.Config.withDefaults(),
		parser:    p.Parser,
		companies: p.Companies,
		catalog:   p.Catalog,
		invoices:  p.Invoices,
		retry:     p.Retry,
	}
}

// ProcessFile ingests one raw file. It never returns an error: every
// failure is classified, logged and — for transient ones only — requeued.
func (p *Processor) ProcessFile(ctx context.Context, fileRef string) Outcome {
	outcome := p.process(ctx, fileRef)
	if p.metrics != nil {
		p.metrics.IncOutcome(outcome.String())
	}
	return outcome
}

func (p *Processor) process(ctx context.Context, fileRef string) Outcome {
	doc, err := p.parser.Parse([]byte(fileRef))
	if err != nil {
		p.log.Error("file parse failed, dropping", zap.Error(err))
		return OutcomeDropped
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	err = p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return p.save(ctx, tx, doc)
	})
	if err == nil {
		p.log.Info("invoice committed",
			zap.String("number", doc.Identification.Number),
			zap.String("issuer_cnpj", doc.Issuer.CNPJ),
		)
		return OutcomeCommitted
	}

	var dup *invoicedomain.DuplicateInvoiceError
	if errors.As(err, &dup) {
		p.log.Warn("duplicate invoice rejected",
			zap.String("number", dup.Number),
			zap.String("issuer", dup.IssuerName),
			zap.String("issuer_cnpj", dup.IssuerCNPJ),
		)
		return OutcomeRejected
	}

	// Transient: the only path that causes redelivery. The send must
	// survive an expired ingestion deadline.
	switch p.retry.Send(context.WithoutCancel(ctx), fileRef) {
	case DeliveryScheduled:
		if p.metrics != nil {
			p.metrics.IncRequeue()
		}
		p.log.Error("ingestion failed, file requeued",
			zap.String("number", doc.Identification.Number),
			zap.Error(err),
		)
	case DeliveryDead:
		p.log.Error("ingestion failed, retry budget exhausted, file dead-lettered",
			zap.String("number", doc.Identification.Number),
			zap.Error(err),
		)
	default:
		p.log.Error("ingestion failed and the retry channel refused the file",
			zap.String("number", doc.Identification.Number),
			zap.Error(err),
		)
	}
	return OutcomeRetrying
}

// save runs Resolving and Persisting inside one transaction. The duplicate
// check runs before product resolution to fail fast; product resolution is
// the expensive step.
func (p *Processor) save(ctx context.Context, tx *gorm.DB, doc *nfe.Document) error {
	issuer, err := p.companies.ResolveIssuer(ctx, tx, doc)
	if err != nil {
		return err
	}
	recipient, err := p.companies.ResolveRecipient(ctx, tx, doc)
	if err != nil {
		return err
	}

	if err := p.invoices.AssertNotDuplicate(ctx, tx, issuer, doc.Identification.Number); err != nil {
		return err
	}

	resolved, err := p.catalog.Preload(ctx, tx, issuer.ID, doc.ProductCodes())
	if err != nil {
		return err
	}
	for _, group := range doc.ItemGroups {
		for _, ref := range group.Products {
			if _, err := p.catalog.ResolveOrCreate(ctx, tx, resolved, ref, issuer.ID); err != nil {
				return err
			}
		}
	}

	invoice, err := p.invoices.Build(doc, issuer, recipient, resolved)
	if err != nil {
		return err
	}
	return p.invoices.Persist(ctx, tx, issuer, invoice)
}
