package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"dinehall/internal/database"
	"dinehall/internal/models"
)

// MenuItem is a priced catalog entry. Orders snapshot its name and price at
// the moment an item is added, so later menu edits never change past orders.
type MenuItem struct {
	ID        int
	Name      string
	Price     decimal.Decimal
	Options   []models.SelectedOption
	Available bool
}

// Option returns the option with the given name, if the item offers it.
func (m *MenuItem) Option(name string) (models.SelectedOption, bool) {
	for _, opt := range m.Options {
		if opt.Name == name {
			return opt, true
		}
	}
	return models.SelectedOption{}, false
}

// Catalog resolves menu item IDs to priced entries.
type Catalog interface {
	GetMenuItem(ctx context.Context, id int) (*MenuItem, error)
}

// PostgresCatalog reads menu items from the database.
type PostgresCatalog struct {
	db *database.DB
}

func NewPostgresCatalog(db *database.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// GetMenuItem fetches a menu item by ID. Unknown and unavailable items both
// map to ErrMenuItemUnavailable.
func (c *PostgresCatalog) GetMenuItem(ctx context.Context, id int) (*MenuItem, error) {
	var (
		item        MenuItem
		optionsJSON []byte
	)

	row := c.db.QueryRow(ctx, database.GetMenuItemSQL, id)
	err := row.Scan(&item.ID, &item.Name, &item.Price, &optionsJSON, &item.Available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrMenuItemUnavailable
		}
		return nil, fmt.Errorf("failed to get menu item %d: %w", id, err)
	}

	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &item.Options); err != nil {
			return nil, fmt.Errorf("failed to parse options for menu item %d: %w", id, err)
		}
	}

	if !item.Available {
		return nil, models.ErrMenuItemUnavailable
	}

	return &item, nil
}
