package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/dbx"
	"github.com/dmitrijs2005/gophstore/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `p.id, p.id_empresa, p.reference, p.description, p.sale_price, p.costo_price,
		 p.id_categoria, p.id_unidad, p.id_tax, p.tax_include, p.status, p.created_at, p.updated_at`

// searchExpr maps a filter field to the SQL expression it is matched against.
var searchExpr = map[string]string{
	FieldAny:         "p.reference || ' ' || p.description",
	FieldDescription: "p.description",
	FieldReference:   "p.reference",
	FieldCategoria:   "coalesce(c.description, '')",
	FieldUnidad:      "coalesce(u.description, '')",
	FieldTax:         "coalesce(t.description, '')",
}

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *PostgresRepository) List(ctx context.Context, companyID int64, f models.ProductFilter) ([]models.Product, error) {
	expr, ok := searchExpr[f.Field]
	if !ok {
		return nil, fmt.Errorf("%w: unknown field %q", common.ErrorValidation, f.Field)
	}

	query := `SELECT ` + productColumns + `
		 FROM productos p
		 LEFT JOIN categorias c ON c.id = p.id_categoria
		 LEFT JOIN unidades u ON u.id = p.id_unidad
		 LEFT JOIN taxes t ON t.id = p.id_tax
		 WHERE p.id_empresa = $1 AND ($2 = '' OR ` + expr + ` ILIKE '%' || $2 || '%')
		 ORDER BY p.id
		 LIMIT $3 OFFSET $4
		 `

	rows, err := r.db.QueryContext(ctx, query, companyID, escapeLike(f.Value), f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, companyID, id int64) (*models.Product, error) {
	query := `SELECT ` + productColumns + `
		 FROM productos p
		 WHERE p.id_empresa = $1 AND p.id = $2
		 `

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`INSERT INTO productos (id_empresa, reference, description, sale_price, costo_price,
		     id_categoria, id_unidad, id_tax, tax_include, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.CompanyID, p.Reference, p.Description, p.SalePrice, p.CostoPrice,
		p.IDCategoria.Ptr(), p.IDUnidad.Ptr(), p.IDTax.Ptr(), p.TaxInclude, p.Status,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: reference %q", common.ErrorAlreadyExists, p.Reference)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Product) (*models.Product, error) {
	query :=
		`UPDATE productos SET reference = $3, description = $4, sale_price = $5, costo_price = $6,
		     id_categoria = $7, id_unidad = $8, id_tax = $9, tax_include = $10, status = $11,
		     updated_at = now()
		 WHERE id_empresa = $1 AND id = $2
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		p.CompanyID, p.ID, p.Reference, p.Description, p.SalePrice, p.CostoPrice,
		p.IDCategoria.Ptr(), p.IDUnidad.Ptr(), p.IDTax.Ptr(), p.TaxInclude, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: reference %q", common.ErrorAlreadyExists, p.Reference)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*models.Product, error) {
	var p models.Product
	var cat, unit, tax sql.NullInt64
	err := s.Scan(&p.ID, &p.CompanyID, &p.Reference, &p.Description, &p.SalePrice, &p.CostoPrice,
		&cat, &unit, &tax, &p.TaxInclude, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.IDCategoria = models.OptionalID{Value: cat.Int64, Valid: cat.Valid}
	p.IDUnidad = models.OptionalID{Value: unit.Int64, Valid: unit.Valid}
	p.IDTax = models.OptionalID{Value: tax.Int64, Valid: tax.Valid}
	return &p, nil
}
