package products

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{"id", "id_empresa", "reference", "description", "sale_price", "costo_price",
	"id_categoria", "id_unidad", "id_tax", "tax_include", "status", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

func TestList_BuildsFieldExpression(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM productos p.*LEFT JOIN categorias c.*WHERE p\.id_empresa = \$1 AND \(\$2 = '' OR coalesce\(c\.description, ''\) ILIKE '%' \|\| \$2 \|\| '%'\).*ORDER BY p\.id.*LIMIT \$3 OFFSET \$4`).
		WithArgs(int64(7), `50\%`, 11, 20).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(int64(1), int64(7), "R1", "Shirt", 9.5, 5.0, int64(2), nil, nil, false, true, now, now))

	got, err := repo.List(context.Background(), 7, models.ProductFilter{Field: FieldCategoria, Value: "50%", Limit: 11, Offset: 20})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.NewOptionalID(2), got[0].IDCategoria)
	assert.False(t, got[0].IDUnidad.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_UnknownField(t *testing.T) {
	repo, _ := newRepoWithMock(t)
	_, err := repo.List(context.Background(), 7, models.ProductFilter{Field: "price"})
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestList_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`FROM productos`).WillReturnError(errors.New("db down"))
	_, err := repo.List(context.Background(), 7, models.ProductFilter{Limit: 10})
	assert.ErrorContains(t, err, "db error: db down")
}

func TestGet(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)FROM productos p\s+WHERE p\.id_empresa = \$1 AND p\.id = \$2`).
		WithArgs(int64(7), int64(1)).
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(int64(1), int64(7), "R1", "Shirt", 9.5, 5.0, nil, nil, int64(3), true, true, now, now))
	mock.ExpectQuery(`FROM productos p`).
		WithArgs(int64(7), int64(2)).
		WillReturnError(sql.ErrNoRows)

	p, err := repo.Get(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "R1", p.Reference)
	assert.Equal(t, models.NewOptionalID(3), p.IDTax)

	_, err = repo.Get(context.Background(), 7, 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT INTO productos .*RETURNING id, created_at, updated_at`).
		WithArgs(int64(7), "R1", "Shirt", 9.5, 5.0, int64(2), nil, nil, false, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))

	p, err := repo.Create(context.Background(), &models.Product{
		CompanyID: 7, Reference: "R1", Description: "Shirt", SalePrice: 9.5, CostoPrice: 5,
		IDCategoria: models.NewOptionalID(2), Status: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), p.ID)
}

func TestCreate_DuplicateReference(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO productos`).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.Product{CompanyID: 7, Reference: "R1", Description: "Shirt", CostoPrice: 5})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)UPDATE productos SET .*WHERE id_empresa = \$1 AND id = \$2`).
		WithArgs(int64(7), int64(10), "R1", "Shirt", 9.5, 5.0, nil, nil, nil, false, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(`UPDATE productos`).
		WillReturnError(sql.ErrNoRows)

	p := &models.Product{ID: 10, CompanyID: 7, Reference: "R1", Description: "Shirt", SalePrice: 9.5, CostoPrice: 5}
	_, err := repo.Update(context.Background(), p)
	require.NoError(t, err)

	_, err = repo.Update(context.Background(), p)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
