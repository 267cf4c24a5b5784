package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/openfiscal/nfeingest/internal/nfe"
	"github.com/openfiscal/nfeingest/internal/product/domain"
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

func New(p Params) domain.Catalog {
	return &Service{
		log:   p.Log.Named("product.catalog"),
		repo:  p.Repo,
		genID: p.GenID,
	}
}

// Preload fetches every known product for the given codes in one query.
// The result is keyed by code and must be equivalent to resolving each code
// individually; it exists only to avoid N lookups per document.
func (s *Service) Preload(ctx context.Context, tx *gorm.DB, companyID snowflake.ID, codes []string) (map[string]*domain.Product, error) {
	preloaded := make(map[string]*domain.Product, len(codes))
	items, err := s.repo.FindByCodes(ctx, tx, companyID, codes)
	if err != nil {
		return nil, err
	}
	for i := range items {
		preloaded[items[i].Code] = &items[i]
	}
	return preloaded, nil
}

// ResolveOrCreate returns the catalog entry for ref, creating it under the
// owning company when absent. Newly created entries join the preloaded map
// so a repeated code later in the same document reuses the same row. A
// unique-index conflict from a concurrent ingestion is resolved by one
// re-read of the winner's row.
func (s *Service) ResolveOrCreate(ctx context.Context, tx *gorm.DB, preloaded map[string]*domain.Product, ref nfe.ProductRef, companyID snowflake.ID) (*domain.Product, error) {
	code := strings.TrimSpace(ref.Code)
	if code == "" {
		return nil, domain.ErrInvalidCode
	}
	if p, ok := preloaded[code]; ok {
		return p, nil
	}

	now := time.Now().UTC()
	p := &domain.Product{
		ID:          s.genID.Generate(),
		CompanyID:   companyID,
		Code:        code,
		Description: strings.TrimSpace(ref.Description),
		Unit:        strings.TrimSpace(ref.Unit),
		Price:       ref.UnitPrice,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.repo.Create(ctx, tx, p)
	if err == nil {
		preloaded[code] = p
		s.log.Debug("product created",
			zap.String("code", code),
			zap.Int64("company_id", companyID.Int64()),
		)
		return p, nil
	}
	if !db.IsDuplicateKeyErr(err) {
		return nil, err
	}

	winner, err := s.repo.FindByCode(ctx, tx, companyID, code)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, domain.ErrNotResolved
	}
	preloaded[code] = winner
	return winner, nil
}
