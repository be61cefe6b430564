package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/mechatrack/internal/errs"
	"github.com/erazemk/mechatrack/internal/model"
)

// MsgItemNotFound is returned for unknown item ids.
const MsgItemNotFound = "Item not found"

var itemsTable = table[model.Item]{
	name:     "items",
	columns:  "id, name, category, quantity, price, created_at, updated_at",
	scan:     scanItem,
	notFound: MsgItemNotFound,
}

func scanItem(s scanner) (model.Item, error) {
	var item model.Item
	var price sql.NullFloat64
	err := s.Scan(&item.ID, &item.Name, &item.Category, &item.Quantity, &price, &item.CreatedAt, &item.UpdatedAt)
	if price.Valid {
		item.Price = &price.Float64
	}
	return item, err
}

// Items persists the parts inventory.
type Items struct {
	DB  *sql.DB
	Now func() time.Time
}

// List returns all items ordered by id.
func (s *Items) List(ctx context.Context) ([]model.Item, error) {
	return itemsTable.list(ctx, s.DB)
}

// Get returns an item by ID.
func (s *Items) Get(ctx context.Context, id int64) (*model.Item, error) {
	return itemsTable.get(ctx, s.DB, id)
}

// Create validates and inserts a new item.
func (s *Items) Create(ctx context.Context, in model.NewItem) (*model.Item, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := model.NewTimestamp(clock(s.Now))
	result, err := s.DB.ExecContext(ctx,
		`INSERT INTO items (name, category, quantity, price, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		in.Name, nullString(in.Category), *in.Quantity, in.Price, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}
	return s.Get(ctx, id)
}

// Update merges patch into the stored item and refreshes updated_at.
func (s *Items) Update(ctx context.Context, id int64, patch model.ItemPatch) (*model.Item, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := patch.Apply(item); err != nil {
		return nil, err
	}
	item.UpdatedAt = model.NewTimestamp(clock(s.Now))

	result, err := s.DB.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, quantity = ?, price = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name, item.Category, item.Quantity, item.Price, item.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if err := checkUpdated(result, MsgItemNotFound); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item permanently.
func (s *Items) Delete(ctx context.Context, id int64) error {
	return itemsTable.delete(ctx, s.DB, id)
}

// Count returns the number of stored items.
func (s *Items) Count(ctx context.Context) (int, error) {
	return itemsTable.count(ctx, s.DB)
}

// FindByName returns the first item with exactly this name, or nil.
func (s *Items) FindByName(ctx context.Context, name string) (*model.Item, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+itemsTable.columns+` FROM items WHERE name = ? ORDER BY id LIMIT 1`, name)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding item by name: %w", err)
	}
	return &item, nil
}

// SetImage stores a processed photo for an item.
func (s *Items) SetImage(ctx context.Context, id int64, image []byte, mime string) error {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = ? WHERE id = ?`,
		image, mime, model.NewTimestamp(clock(s.Now)), id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return checkUpdated(result, MsgItemNotFound)
}

// GetImage returns an item's photo and MIME type. A missing item is a
// not-found error; an item without a photo returns nil data.
func (s *Items) GetImage(ctx context.Context, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := s.DB.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", errs.NotFound(MsgItemNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
