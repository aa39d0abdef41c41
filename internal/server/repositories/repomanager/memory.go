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

// MemoryRepositoryManager serves one shared set of in-memory repositories
// whatever handle it is given. InTx offers no rollback.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	products *products.MemoryRepository
	images   *images.MemoryRepository
	catalog  *catalog.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	c := catalog.NewMemoryRepository()
	return &MemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		products: products.NewMemoryRepository(c),
		images:   images.NewMemoryRepository(),
		catalog:  c,
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) InTx(ctx context.Context, _ *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return fn(ctx, nil)
}

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository       { return m.users }
func (m *MemoryRepositoryManager) Products(dbx.DBTX) products.Repository { return m.products }
func (m *MemoryRepositoryManager) Images(dbx.DBTX) images.Repository     { return m.images }
func (m *MemoryRepositoryManager) Catalog(dbx.DBTX) catalog.Repository   { return m.catalog }
