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

// CreateGrocery persists the grocery and its options in a single
// transaction.
func (s *Store) CreateGrocery(ctx context.Context, grocery model.Grocery) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/store: failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	groceryID := uuid.New()
	query := `INSERT INTO groceries (id, title, image_url, rating, price, discount, description)
		VALUES (@id, @title, @imageURL, @rating, @price, @discount, @description)`
	args := pgx.NamedArgs{
		"id":          pgtype.UUID{Bytes: groceryID, Valid: true},
		"title":       grocery.Title,
		"imageURL":    grocery.ImageURL,
		"rating":      grocery.Rating,
		"price":       grocery.Price,
		"discount":    grocery.Discount,
		"description": grocery.Description,
	}
	if _, err := tx.Exec(ctx, query, args); err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/store: failed to create grocery: %w", err)
	}

	optQuery := `INSERT INTO grocery_options (id, grocery_id, name, price)
		VALUES (@id, @groceryID, @name, @price)`
	for _, opt := range grocery.Options {
		optArgs := pgx.NamedArgs{
			"id":        pgtype.UUID{Bytes: uuid.New(), Valid: true},
			"groceryID": pgtype.UUID{Bytes: groceryID, Valid: true},
			"name":      opt.Name,
			"price":     opt.Price,
		}
		if _, err := tx.Exec(ctx, optQuery, optArgs); err != nil {
			return uuid.UUID{}, fmt.Errorf("internal/store: failed to create grocery option: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.UUID{}, fmt.Errorf("internal/store: failed to commit grocery tx: %w", err)
	}

	return groceryID, nil
}

func (s *Store) ListGroceries(ctx context.Context) ([]model.Grocery, error) {
	query := `SELECT id, title, image_url, rating, price, discount, description
		FROM groceries WHERE NOT is_deleted ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("internal/store: failed to list groceries: %w", err)
	}
	defer rows.Close()

	var groceries []model.Grocery
	for rows.Next() {
		grocery, err := scanGrocery(rows)
		if err != nil {
			return nil, fmt.Errorf("internal/store: failed to scan grocery row: %w", err)
		}
		groceries = append(groceries, grocery)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groceries {
		options, err := s.groceryOptions(ctx, groceries[i].ID)
		if err != nil {
			return nil, err
		}
		groceries[i].Options = options
	}

	return groceries, nil
}

func (s *Store) GroceryByID(ctx context.Context, id uuid.UUID) (model.Grocery, error) {
	query := `SELECT id, title, image_url, rating, price, discount, description
		FROM groceries WHERE id = @id AND NOT is_deleted`
	args := pgx.NamedArgs{"id": pgtype.UUID{Bytes: id, Valid: true}}

	grocery, err := scanGrocery(s.pool.QueryRow(ctx, query, args))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Grocery{}, fmt.Errorf("internal/store: %w", model.ErrNotFound)
		}
		return model.Grocery{}, fmt.Errorf("internal/store: failed to load grocery: %w", err)
	}

	options, err := s.groceryOptions(ctx, grocery.ID)
	if err != nil {
		return model.Grocery{}, err
	}
	grocery.Options = options

	return grocery, nil
}

type UpdateGroceryParams struct {
	ID          uuid.UUID
	Title       string
	ImageURL    string
	Rating      float64
	Price       float64
	Discount    float64
	Description string
}

func (s *Store) UpdateGrocery(ctx context.Context, params UpdateGroceryParams) error {
	query := `UPDATE groceries
		SET title = @title, image_url = @imageURL, rating = @rating,
			price = @price, discount = @discount, description = @description
		WHERE id = @id AND NOT is_deleted`
	args := pgx.NamedArgs{
		"id":          pgtype.UUID{Bytes: params.ID, Valid: true},
		"title":       params.Title,
		"imageURL":    params.ImageURL,
		"rating":      params.Rating,
		"price":       params.Price,
		"discount":    params.Discount,
		"description": params.Description,
	}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("internal/store: failed to update grocery: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("internal/store: %w", model.ErrNotFound)
	}

	return nil
}

// DeleteGrocery is a soft delete; the row stays behind an is_deleted
// flag and drops out of every query.
func (s *Store) DeleteGrocery(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE groceries SET is_deleted = TRUE WHERE id = @id AND NOT is_deleted`
	args := pgx.NamedArgs{"id": pgtype.UUID{Bytes: id, Valid: true}}

	tag, err := s.pool.Exec(ctx, query, args)
	if err != nil {
		return false, fmt.Errorf("internal/store: failed to delete grocery: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *Store) groceryOptions(ctx context.Context, groceryID uuid.UUID) ([]model.GroceryOption, error) {
	query := `SELECT id, name, price FROM grocery_options
		WHERE grocery_id = @groceryID ORDER BY name`
	args := pgx.NamedArgs{"groceryID": pgtype.UUID{Bytes: groceryID, Valid: true}}

	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("internal/store: failed to list grocery options: %w", err)
	}
	defer rows.Close()

	var options []model.GroceryOption
	for rows.Next() {
		var (
			id  pgtype.UUID
			opt model.GroceryOption
		)
		if err := rows.Scan(&id, &opt.Name, &opt.Price); err != nil {
			return nil, fmt.Errorf("internal/store: failed to scan option row: %w", err)
		}
		opt.ID = id.Bytes

		options = append(options, opt)
	}

	return options, rows.Err()
}

func scanGrocery(row pgx.Row) (model.Grocery, error) {
	var (
		id      pgtype.UUID
		grocery model.Grocery
	)

	err := row.Scan(&id, &grocery.Title, &grocery.ImageURL, &grocery.Rating,
		&grocery.Price, &grocery.Discount, &grocery.Description)
	if err != nil {
		return model.Grocery{}, err
	}

	grocery.ID = id.Bytes

	return grocery, nil
}
