package catalog

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, companyID int64) (models.Catalog, error) {
	var c models.Catalog
	var err error

	if c.Categories, err = r.options(ctx, `SELECT id, description FROM categorias WHERE id_empresa = $1 ORDER BY description`, companyID); err != nil {
		return models.Catalog{}, err
	}
	if c.Units, err = r.options(ctx, `SELECT id, description FROM unidades WHERE id_empresa = $1 ORDER BY description`, companyID); err != nil {
		return models.Catalog{}, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id, description, rate FROM taxes WHERE id_empresa = $1 ORDER BY description`, companyID)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	c.Taxes = []models.TaxOption{}
	for rows.Next() {
		var t models.TaxOption
		if err := rows.Scan(&t.ID, &t.Description, &t.Rate); err != nil {
			return models.Catalog{}, fmt.Errorf("db error: %w", err)
		}
		c.Taxes = append(c.Taxes, t)
	}
	if err := rows.Err(); err != nil {
		return models.Catalog{}, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) options(ctx context.Context, query string, companyID int64) ([]models.CatalogOption, error) {
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.CatalogOption{}
	for rows.Next() {
		var o models.CatalogOption
		if err := rows.Scan(&o.ID, &o.Description); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) AddCategory(ctx context.Context, companyID int64, description string) (int64, error) {
	return r.insert(ctx, `INSERT INTO categorias (id_empresa, description) VALUES ($1, $2) RETURNING id`, companyID, description)
}

func (r *PostgresRepository) AddUnit(ctx context.Context, companyID int64, description string) (int64, error) {
	return r.insert(ctx, `INSERT INTO unidades (id_empresa, description) VALUES ($1, $2) RETURNING id`, companyID, description)
}

func (r *PostgresRepository) AddTax(ctx context.Context, companyID int64, description string, rate float64) (int64, error) {
	return r.insert(ctx, `INSERT INTO taxes (id_empresa, description, rate) VALUES ($1, $2, $3) RETURNING id`, companyID, description, rate)
}

func (r *PostgresRepository) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}
