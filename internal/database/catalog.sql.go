package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCategoriesByOutlet = `-- name: ListCategoriesByOutlet :many
SELECT id, outlet_id, name, sort_order, is_active, created_at FROM categories
WHERE outlet_id = $1 AND is_active = true
ORDER BY sort_order, name
`

func (q *Queries) ListCategoriesByOutlet(ctx context.Context, outletID uuid.UUID) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategoriesByOutlet, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.Name,
			&i.SortOrder,
			&i.IsActive,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProductsByCategory = `-- name: ListProductsByCategory :many
SELECT id, outlet_id, category_id, name, base_price, image_url, is_active, created_at FROM products
WHERE outlet_id = $1 AND category_id = $2 AND is_active = true
ORDER BY name
`

type ListProductsByCategoryParams struct {
	OutletID   uuid.UUID `json:"outlet_id"`
	CategoryID int64     `json:"category_id"`
}

func (q *Queries) ListProductsByCategory(ctx context.Context, arg ListProductsByCategoryParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProductsByCategory, arg.OutletID, arg.CategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const listProductsByOutlet = `-- name: ListProductsByOutlet :many
SELECT id, outlet_id, category_id, name, base_price, image_url, is_active, created_at FROM products
WHERE outlet_id = $1 AND is_active = true
ORDER BY name
`

func (q *Queries) ListProductsByOutlet(ctx context.Context, outletID uuid.UUID) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProductsByOutlet, outletID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

const getProduct = `-- name: GetProduct :one
SELECT id, outlet_id, category_id, name, base_price, image_url, is_active, created_at FROM products
WHERE id = $1 AND outlet_id = $2 AND is_active = true
`

type GetProductParams struct {
	ID       int64     `json:"id"`
	OutletID uuid.UUID `json:"outlet_id"`
}

func (q *Queries) GetProduct(ctx context.Context, arg GetProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, arg.ID, arg.OutletID)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.CategoryID,
		&i.Name,
		&i.BasePrice,
		&i.ImageUrl,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const listModifiersByProduct = `-- name: ListModifiersByProduct :many
SELECT id, product_id, name, price, sort_order, is_active FROM product_modifiers
WHERE product_id = $1 AND is_active = true
ORDER BY sort_order, id
`

func (q *Queries) ListModifiersByProduct(ctx context.Context, productID int64) ([]ProductModifier, error) {
	rows, err := q.db.Query(ctx, listModifiersByProduct, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProductModifier
	for rows.Next() {
		var i ProductModifier
		if err := rows.Scan(
			&i.ID,
			&i.ProductID,
			&i.Name,
			&i.Price,
			&i.SortOrder,
			&i.IsActive,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (outlet_id, name, sort_order)
VALUES ($1, $2, $3)
RETURNING id, outlet_id, name, sort_order, is_active, created_at
`

type CreateCategoryParams struct {
	OutletID  uuid.UUID `json:"outlet_id"`
	Name      string    `json:"name"`
	SortOrder int32     `json:"sort_order"`
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.OutletID, arg.Name, arg.SortOrder)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.Name,
		&i.SortOrder,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const createProduct = `-- name: CreateProduct :one
INSERT INTO products (outlet_id, category_id, name, base_price, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, outlet_id, category_id, name, base_price, image_url, is_active, created_at
`

type CreateProductParams struct {
	OutletID   uuid.UUID      `json:"outlet_id"`
	CategoryID int64          `json:"category_id"`
	Name       string         `json:"name"`
	BasePrice  pgtype.Numeric `json:"base_price"`
	ImageUrl   pgtype.Text    `json:"image_url"`
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.db.QueryRow(ctx, createProduct,
		arg.OutletID,
		arg.CategoryID,
		arg.Name,
		arg.BasePrice,
		arg.ImageUrl,
	)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.OutletID,
		&i.CategoryID,
		&i.Name,
		&i.BasePrice,
		&i.ImageUrl,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const createProductModifier = `-- name: CreateProductModifier :one
INSERT INTO product_modifiers (product_id, name, price, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING id, product_id, name, price, sort_order, is_active
`

type CreateProductModifierParams struct {
	ProductID int64          `json:"product_id"`
	Name      string         `json:"name"`
	Price     pgtype.Numeric `json:"price"`
	SortOrder int32          `json:"sort_order"`
}

func (q *Queries) CreateProductModifier(ctx context.Context, arg CreateProductModifierParams) (ProductModifier, error) {
	row := q.db.QueryRow(ctx, createProductModifier,
		arg.ProductID,
		arg.Name,
		arg.Price,
		arg.SortOrder,
	)
	var i ProductModifier
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.Name,
		&i.Price,
		&i.SortOrder,
		&i.IsActive,
	)
	return i, err
}

type productRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProducts(rows productRows) ([]Product, error) {
	var items []Product
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.OutletID,
			&i.CategoryID,
			&i.Name,
			&i.BasePrice,
			&i.ImageUrl,
			&i.IsActive,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
