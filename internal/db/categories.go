package db

import (
	"context"

	"github.com/gumusqr/backend/internal/model"
)

func (db *Postgres) ListCategories(ctx context.Context) ([]model.Category, error) {
	query := `
		SELECT c.id, c.name, c.description, c.sort_order, c.is_active,
		       COUNT(p.id), c.created_at, c.updated_at
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.sort_order ASC, c.id ASC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Description,
			&c.SortOrder,
			&c.IsActive,
			&c.ProductCount,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		list = append(list, c)
	}

	if list == nil {
		list = []model.Category{}
	}
	return list, rows.Err()
}

func (db *Postgres) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	query := `
		SELECT id, name, description, sort_order, is_active, created_at, updated_at
		FROM categories
		WHERE id = $1
	`
	var c model.Category
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.SortOrder,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *Postgres) CreateCategory(ctx context.Context, name, description string, sortOrder int, isActive bool) (*model.Category, error) {
	query := `
		INSERT INTO categories (name, description, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, name, description, sort_order, is_active, created_at, updated_at
	`
	var c model.Category
	err := db.Pool.QueryRow(ctx, query, name, description, sortOrder, isActive).Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.SortOrder,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *Postgres) UpdateCategory(ctx context.Context, c *model.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3, sort_order = $4, is_active = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query, c.ID, c.Name, c.Description, c.SortOrder, c.IsActive)
	return err
}

func (db *Postgres) DeleteCategory(ctx context.Context, id int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}

func (db *Postgres) CategoryHasProducts(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (db *Postgres) ListActiveCategories(ctx context.Context) ([]model.MenuCategory, error) {
	query := `
		SELECT id, name, description, sort_order
		FROM categories
		WHERE is_active = TRUE
		ORDER BY sort_order ASC, id ASC
	`
	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []model.MenuCategory
	for rows.Next() {
		var c model.MenuCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder); err != nil {
			return nil, err
		}
		list = append(list, c)
	}

	if list == nil {
		list = []model.MenuCategory{}
	}
	return list, rows.Err()
}
