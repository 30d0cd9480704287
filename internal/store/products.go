package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/johndosdos/tindahan/internal/model"
)

const productColumns = `p.id, p.name, p.description, p.price,
	p.image_url, p.external_image_id, p.created_at,
	u.id, u.name, u.email
	FROM products p
	JOIN users u ON u.id = p.seller_id`

type CreateProductParams struct {
	Name            string
	Description     string
	Price           float64
	ImageURL        string
	ExternalImageID string
	SellerID        uuid.UUID
}

func (s *Store) CreateProduct(ctx context.Context, params CreateProductParams) (uuid.UUID, error) {
	query := `INSERT INTO products (id, name, description, price, image_url, external_image_id, seller_id)
		VALUES (@id, @name, @description, @price, @imageURL, @externalImageID, @sellerID)
		RETURNING id`
	args := pgx.NamedArgs{
		"id":              pgtype.UUID{Bytes: uuid.New(), Valid: true},
		"name":            params.Name,
		"description":     params.Description,
		"price":           params.Price,
		"imageURL":        params.ImageURL,
		"externalImageID": params.ExternalImageID,
		"sellerID":        pgtype.UUID{Bytes: params.SellerID, Valid: true},
	}

	var id pgtype.UUID
	if err := s.pool.QueryRow(ctx, query, args).Scan(&id); err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/store: failed to create product: %w", err)
	}

	return id.Bytes, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` ORDER BY p.created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("internal/store: failed to list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("internal/store: failed to scan product row: %w", err)
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (s *Store) ProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	query := `SELECT ` + productColumns + ` WHERE p.id = @id`
	args := pgx.NamedArgs{"id": pgtype.UUID{Bytes: id, Valid: true}}

	product, err := scanProduct(s.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, fmt.Errorf("internal/store: %w", model.ErrNotFound)
		}
		return model.Product{}, fmt.Errorf("internal/store: failed to load product: %w", err)
	}

	return product, nil
}

type UpdateProductParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       float64
}

func (s *Store) UpdateProduct(ctx context.Context, params UpdateProductParams) error {
	query := `UPDATE products
		SET name = @name, description = @description, price = @price
		WHERE id = @id`
	args := pgx.NamedArgs{
		"id":          pgtype.UUID{Bytes: params.ID, Valid: true},
		"name":        params.Name,
		"description": params.Description,
		"price":       params.Price,
	}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("internal/store: failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("internal/store: %w", model.ErrNotFound)
	}

	return nil
}

// UpdateProductImage swaps the stored image reference after a
// successful re-upload.
func (s *Store) UpdateProductImage(ctx context.Context, id uuid.UUID, imageURL, externalImageID string) error {
	query := `UPDATE products
		SET image_url = @imageURL, external_image_id = @externalImageID
		WHERE id = @id`
	args := pgx.NamedArgs{
		"id":              pgtype.UUID{Bytes: id, Valid: true},
		"imageURL":        imageURL,
		"externalImageID": externalImageID,
	}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("internal/store: failed to update product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("internal/store: %w", model.ErrNotFound)
	}

	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM products WHERE id = @id`
	args := pgx.NamedArgs{"id": pgtype.UUID{Bytes: id, Valid: true}}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("internal/store: failed to delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		id, sellerID pgtype.UUID
		createdAt    pgtype.Timestamptz
		product      model.Product
	)

	err := row.Scan(&id, &product.Name, &product.Description, &product.Price,
		&product.ImageURL, &product.ExternalImageID, &createdAt,
		&sellerID, &product.Seller.Name, &product.Seller.Email)
	if err != nil {
		return model.Product{}, err
	}

	product.ID = id.Bytes
	product.Seller.ID = sellerID.Bytes
	product.CreatedAt = createdAt.Time

	return product, nil
}
