package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openfiscal/nfeingest/internal/nfe"
	"github.com/openfiscal/nfeingest/internal/product/domain"
	"github.com/openfiscal/nfeingest/internal/product/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}))
	return db
}

func newCatalog(t *testing.T) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	}).(*Service)
}

func ref(code string) nfe.ProductRef {
	return nfe.ProductRef{
		Code:        code,
		Description: "Item " + code,
		Unit:        "UN",
		UnitPrice:   decimal.RequireFromString("10.50"),
	}
}

func countProducts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.Product{}).Count(&n).Error)
	return n
}

func TestResolveOrCreate_CreatesWhenAbsent(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalog(t)
	issuerID := snowflake.ID(1)

	preloaded, err := svc.Preload(context.Background(), db, issuerID, []string{"SKU-A"})
	require.NoError(t, err)
	assert.Empty(t, preloaded)

	p, err := svc.ResolveOrCreate(context.Background(), db, preloaded, ref("SKU-A"), issuerID)
	require.NoError(t, err)
	assert.Equal(t, "SKU-A", p.Code)
	assert.Equal(t, issuerID, p.CompanyID)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.50")))
	assert.EqualValues(t, 1, countProducts(t, db))
}

func TestResolveOrCreate_RepeatedCodeInOneDocument(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalog(t)
	issuerID := snowflake.ID(1)

	preloaded, err := svc.Preload(context.Background(), db, issuerID, []string{"SKU-A"})
	require.NoError(t, err)

	first, err := svc.ResolveOrCreate(context.Background(), db, preloaded, ref("SKU-A"), issuerID)
	require.NoError(t, err)
	second, err := svc.ResolveOrCreate(context.Background(), db, preloaded, ref("SKU-A"), issuerID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, countProducts(t, db))
}

func TestPreload_MatchesPerItemResolution(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalog(t)
	issuerID := snowflake.ID(1)

	// Seed through the per-item path.
	seedMap := map[string]*domain.Product{}
	seeded, err := svc.ResolveOrCreate(context.Background(), db, seedMap, ref("SKU-A"), issuerID)
	require.NoError(t, err)

	preloaded, err := svc.Preload(context.Background(), db, issuerID, []string{"SKU-A", "SKU-B"})
	require.NoError(t, err)

	require.Contains(t, preloaded, "SKU-A")
	assert.Equal(t, seeded.ID, preloaded["SKU-A"].ID)
	assert.NotContains(t, preloaded, "SKU-B")

	resolved, err := svc.ResolveOrCreate(context.Background(), db, preloaded, ref("SKU-A"), issuerID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, resolved.ID)
}

func TestCatalog_ScopedPerIssuer(t *testing.T) {
	db := newTestDB(t)
	svc := newCatalog(t)

	a, err := svc.ResolveOrCreate(context.Background(), db, map[string]*domain.Product{}, ref("SKU-A"), snowflake.ID(1))
	require.NoError(t, err)
	b, err := svc.ResolveOrCreate(context.Background(), db, map[string]*domain.Product{}, ref("SKU-A"), snowflake.ID(2))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.EqualValues(t, 2, countProducts(t, db))
}

// racingRepo makes a concurrent ingestion win the insert for the same
// (issuer, code) pair before this catalog's create lands.
type racingRepo struct {
	inner  domain.Repository
	db     *gorm.DB
	winner *domain.Product
	raced  bool
}

func (r *racingRepo) FindByCode(ctx context.Context, db *gorm.DB, companyID snowflake.ID, code string) (*domain.Product, error) {
	return r.inner.FindByCode(ctx, db, companyID, code)
}

func (r *racingRepo) FindByCodes(ctx context.Context, db *gorm.DB, companyID snowflake.ID, codes []string) ([]domain.Product, error) {
	return r.inner.FindByCodes(ctx, db, companyID, codes)
}

func (r *racingRepo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if !r.raced {
		r.raced = true
		if err := r.inner.Create(ctx, r.db, r.winner); err != nil {
			return err
		}
	}
	return r.inner.Create(ctx, db, product)
}

func TestResolveOrCreate_ConflictReReadsWinner(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)
	issuerID := snowflake.ID(1)

	winner := &domain.Product{
		ID:        node.Generate(),
		CompanyID: issuerID,
		Code:      "SKU-A",
	}
	repo := &racingRepo{inner: repository.Provide(), db: db, winner: winner}
	svc := New(Params{Log: zap.NewNop(), GenID: node, Repo: repo}).(*Service)

	preloaded := map[string]*domain.Product{}
	resolved, err := svc.ResolveOrCreate(context.Background(), db, preloaded, ref("SKU-A"), issuerID)
	require.NoError(t, err)

	assert.Equal(t, winner.ID, resolved.ID)
	assert.Equal(t, winner.ID, preloaded["SKU-A"].ID)
	assert.EqualValues(t, 1, countProducts(t, db))
}
