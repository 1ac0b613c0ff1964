package db

import (
	"context"

	"github.com/gumusqr/backend/internal/model"
)

const productColumns = `
	p.id, p.category_id, p.name, p.description, p.price,
	p.image_url, p.allergens, p.sort_order, p.is_active,
	p.created_at, p.updated_at`

func (db *Postgres) ListProducts(ctx context.Context) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		ORDER BY p.category_id ASC, p.sort_order ASC, p.id ASC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.ImageURL,
			&p.Allergens,
			&p.SortOrder,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.CategoryName,
		); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if list == nil {
		list = []model.Product{}
	}
	return list, rows.Err()
}

func (db *Postgres) ListProductsByCategory(ctx context.Context, categoryID int64) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		WHERE p.category_id = $1
		ORDER BY p.sort_order ASC, p.id ASC
	`
	rows, err := db.Pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.ImageURL,
			&p.Allergens,
			&p.SortOrder,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if list == nil {
		list = []model.Product{}
	}
	return list, rows.Err()
}

func (db *Postgres) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `, c.name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`
	var p model.Product
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.CategoryID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.Allergens,
		&p.SortOrder,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *Postgres) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	query := `
		INSERT INTO products
			(category_id, name, description, price, image_url, allergens, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`
	created := *p
	err := db.Pool.QueryRow(ctx, query,
		p.CategoryID, p.Name, p.Description, p.Price,
		p.ImageURL, p.Allergens, p.SortOrder, p.IsActive,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (db *Postgres) UpdateProduct(ctx context.Context, p *model.Product) error {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, price = $5,
		    image_url = $6, allergens = $7, sort_order = $8, is_active = $9,
		    updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price,
		p.ImageURL, p.Allergens, p.SortOrder, p.IsActive,
	)
	return err
}

func (db *Postgres) DeleteProduct(ctx context.Context, id int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

func (db *Postgres) ListActiveProducts(ctx context.Context) ([]model.MenuProduct, error) {
	query := `
		SELECT id, category_id, name, description, price, image_url, allergens
		FROM products
		WHERE is_active = TRUE
		ORDER BY sort_order ASC, id ASC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.MenuProduct
	for rows.Next() {
		var p model.MenuProduct
		if err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.ImageURL,
			&p.Allergens,
		); err != nil {
			return nil, err
		}
		list = append(list, p)
	}

	if list == nil {
		list = []model.MenuProduct{}
	}
	return list, rows.Err()
}
