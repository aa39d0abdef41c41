package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/catalog"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/images"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/products"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()
	assert.IsType(t, &users.PostgresRepository{}, m.Users(db))
	assert.IsType(t, &products.PostgresRepository{}, m.Products(db))
	assert.IsType(t, &images.PostgresRepository{}, m.Images(db))
	assert.IsType(t, &catalog.PostgresRepository{}, m.Catalog(db))
}

func TestRunMigrations_Success(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	require.NoError(t, NewPostgresRepositoryManager().RunMigrations(context.Background(), db))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err := NewPostgresRepositoryManager().RunMigrations(context.Background(), db)
	assert.EqualError(t, err, "boom")
}

func TestPostgresInTx_CommitsAndRollsBack(t *testing.T) {
	db, mock := newDB(t)
	defer db.Close()
	m := NewPostgresRepositoryManager()

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, m.InTx(context.Background(), db, func(ctx context.Context, tx dbx.DBTX) error { return nil }))

	mock.ExpectBegin()
	mock.ExpectRollback()
	err := m.InTx(context.Background(), db, func(ctx context.Context, tx dbx.DBTX) error { return errors.New("fail") })
	assert.EqualError(t, err, "fail")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryManager_SharesRepositories(t *testing.T) {
	m := NewMemoryRepositoryManager()
	assert.Same(t, m.Users(nil), m.Users(nil))
	assert.Same(t, m.Products(nil), m.Products(nil))
	assert.NoError(t, m.RunMigrations(context.Background(), nil))

	called := false
	require.NoError(t, m.InTx(context.Background(), nil, func(ctx context.Context, tx dbx.DBTX) error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
