package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/catalog"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/images"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/products"
	"github.com/dmitrijs2005/gophstore/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or transaction.
// InTx runs fn atomically when the backend supports transactions.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	InTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	Products(db dbx.DBTX) products.Repository
	Images(db dbx.DBTX) images.Repository
	Catalog(db dbx.DBTX) catalog.Repository
}
