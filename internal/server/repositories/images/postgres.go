package images

import (
	"context"
	"database/sql"
	"fmt"

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

func (r *PostgresRepository) Add(ctx context.Context, img *models.ProductImage) (*models.ProductImage, error) {
	query :=
		`INSERT INTO product_images (id_empresa, id_producto, reference, extension, image, storage_key)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, active, created_at, updated_at
		 `

	var key sql.NullString
	if img.StorageKey != "" {
		key = sql.NullString{String: img.StorageKey, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, query,
		img.CompanyID, img.ProductID, img.Reference, img.Extension, img.Image, key,
	).Scan(&img.ID, &img.Active, &img.CreatedAt, &img.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return img, nil
}

func (r *PostgresRepository) ListByProduct(ctx context.Context, companyID, productID int64) ([]models.ProductImage, error) {
	query :=
		`SELECT id, id_empresa, id_producto, reference, extension, image, storage_key, active, created_at, updated_at
		 FROM product_images
		 WHERE id_empresa = $1 AND id_producto = $2 AND deleted_at IS NULL
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query, companyID, productID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.ProductImage{}
	for rows.Next() {
		var img models.ProductImage
		var inline, key sql.NullString
		if err := rows.Scan(&img.ID, &img.CompanyID, &img.ProductID, &img.Reference, &img.Extension,
			&inline, &key, &img.Active, &img.CreatedAt, &img.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if inline.Valid {
			img.Image = &inline.String
		}
		img.StorageKey = key.String
		out = append(out, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, companyID, id int64) error {
	query :=
		`UPDATE product_images SET deleted_at = now(), active = false, updated_at = now()
		 WHERE id_empresa = $1 AND id = $2 AND deleted_at IS NULL
		 `

	res, err := r.db.ExecContext(ctx, query, companyID, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
