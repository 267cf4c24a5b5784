package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/openfiscal/nfeingest/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (id, company_id, code, description, unit, price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.CompanyID,
		product.Code,
		product.Description,
		product.Unit,
		product.Price,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, companyID snowflake.ID, code string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, code, description, unit, price, created_at, updated_at
		 FROM products WHERE company_id = ? AND code = ?`,
		companyID,
		code,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindByCodes(ctx context.Context, db *gorm.DB, companyID snowflake.ID, codes []string) ([]domain.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var items []domain.Product
	err := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("company_id = ? AND code IN ?", companyID, codes).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
