package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openfiscal/nfeingest/internal/company/domain"
	"github.com/openfiscal/nfeingest/internal/nfe"
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

func New(p Params) domain.Resolver {
	return &Service{
		log:   p.Log.Named("company.resolver"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

func (s *Service) ResolveIssuer(ctx context.Context, tx *gorm.DB, doc *nfe.Document) (*domain.Company, error) {
	return s.findOrCreate(ctx, tx, doc.Issuer)
}

func (s *Service) ResolveRecipient(ctx context.Context, tx *gorm.DB, doc *nfe.Document) (*domain.Company, error) {
	return s.findOrCreate(ctx, tx, doc.Recipient)
}

// findOrCreate looks the company up by CNPJ and creates it when absent.
// An already-known CNPJ is the common case, not an error. When two
// ingestions race on the same unseen CNPJ the unique index rejects the
// loser, which then re-reads the winner's row exactly once.
func (s *Service) findOrCreate(ctx context.Context, tx *gorm.DB, party nfe.Party) (*domain.Company, error) {
	cnpj := strings.TrimSpace(party.CNPJ)
	if cnpj == "" {
		return nil, domain.ErrInvalidCNPJ
	}

	existing, err := s.repo.FindByCNPJ(ctx, tx, cnpj)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	company := &domain.Company{
		ID:        s.genID.Generate(),
		CNPJ:      cnpj,
		Name:      strings.TrimSpace(party.Name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.repo.Create(ctx, tx, company)
	if err == nil {
		s.log.Debug("company created", zap.String("cnpj", cnpj))
		return company, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return nil, err
	}

	winner, err := s.repo.FindByCNPJ(ctx, tx, cnpj)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, domain.ErrNotResolved
	}
	return winner, nil
}
