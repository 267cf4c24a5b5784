package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/openfiscal/nfeingest/internal/company/domain"
	"github.com/openfiscal/nfeingest/internal/company/repository"
	"github.com/openfiscal/nfeingest/internal/nfe"
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
	require.NoError(t, db.AutoMigrate(&domain.Company{}))
	return db
}

func newResolver(t *testing.T) *Service {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(Params{
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	}).(*Service)
}

func sampleDoc() *nfe.Document {
	return &nfe.Document{
		Issuer:    nfe.Party{CNPJ: "11.111.111/0001-11", Name: "Fornecedora Alfa LTDA"},
		Recipient: nfe.Party{CNPJ: "22.222.222/0001-22", Name: "Compradora Beta SA"},
	}
}

func countCompanies(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&domain.Company{}).Count(&n).Error)
	return n
}

func TestResolveIssuer_CreatesOnFirstSight(t *testing.T) {
	db := newTestDB(t)
	svc := newResolver(t)

	issuer, err := svc.ResolveIssuer(context.Background(), db, sampleDoc())
	require.NoError(t, err)
	assert.Equal(t, "11.111.111/0001-11", issuer.CNPJ)
	assert.Equal(t, "Fornecedora Alfa LTDA", issuer.Name)
	assert.EqualValues(t, 1, countCompanies(t, db))
}

func TestResolveIssuer_Idempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newResolver(t)
	doc := sampleDoc()

	first, err := svc.ResolveIssuer(context.Background(), db, doc)
	require.NoError(t, err)
	second, err := svc.ResolveIssuer(context.Background(), db, doc)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.EqualValues(t, 1, countCompanies(t, db))
}

func TestResolveIssuerAndRecipient_AreDistinctRows(t *testing.T) {
	db := newTestDB(t)
	svc := newResolver(t)
	doc := sampleDoc()

	issuer, err := svc.ResolveIssuer(context.Background(), db, doc)
	require.NoError(t, err)
	recipient, err := svc.ResolveRecipient(context.Background(), db, doc)
	require.NoError(t, err)

	assert.NotEqual(t, issuer.ID, recipient.ID)
	assert.EqualValues(t, 2, countCompanies(t, db))
}

func TestResolve_EmptyCNPJ(t *testing.T) {
	db := newTestDB(t)
	svc := newResolver(t)

	_, err := svc.ResolveIssuer(context.Background(), db, &nfe.Document{})
	assert.ErrorIs(t, err, domain.ErrInvalidCNPJ)
}

// racingRepo simulates a concurrent ingestion that wins the insert between
// this resolver's lookup and its create.
type racingRepo struct {
	inner  domain.Repository
	db     *gorm.DB
	winner *domain.Company
	raced  bool
}

func (r *racingRepo) FindByCNPJ(ctx context.Context, db *gorm.DB, cnpj string) (*domain.Company, error) {
	return r.inner.FindByCNPJ(ctx, db, cnpj)
}

func (r *racingRepo) Create(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	if !r.raced {
		r.raced = true
		if err := r.inner.Create(ctx, r.db, r.winner); err != nil {
			return err
		}
	}
	return r.inner.Create(ctx, db, company)
}

func TestResolveIssuer_ConflictReReadsWinner(t *testing.T) {
	db := newTestDB(t)
	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	winner := &domain.Company{
		ID:   node.Generate(),
		CNPJ: "11.111.111/0001-11",
		Name: "Fornecedora Alfa LTDA",
	}
	repo := &racingRepo{inner: repository.Provide(), db: db, winner: winner}
	svc := New(Params{Log: zap.NewNop(), GenID: node, Repo: repo}).(*Service)

	resolved, err := svc.ResolveIssuer(context.Background(), db, sampleDoc())
	require.NoError(t, err)

	assert.Equal(t, winner.ID, resolved.ID)
	assert.EqualValues(t, 1, countCompanies(t, db))
}
