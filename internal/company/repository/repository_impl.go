package repository

import (
	"context"

	"github.com/openfiscal/nfeingest/internal/company/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO companies (id, cnpj, name, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.CNPJ,
		company.Name,
		company.Metadata,
		company.CreatedAt,
		company.UpdatedAt,
	).Error
}

func (r *repo) FindByCNPJ(ctx context.Context, db *gorm.DB, cnpj string) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT id, cnpj, name, metadata, created_at, updated_at
		 FROM companies WHERE cnpj = ?`,
		cnpj,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}
