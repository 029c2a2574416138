package tables

import (
	"context"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"

	"github.com/uptrace/bun"
)

// DB covers the little the core needs from tables: existence checks for
// dine-in orders and reservations, plus a listing.
type DB struct {
	Bun *bun.DB
}

func (d *DB) Exists(tableID string) (bool, error) {
	exists, err := d.Bun.NewSelect().
		Model((*models.Table)(nil)).
		Where("id = ?", tableID).
		Exists(context.Background())
	if err != nil {
		return false, apperr.Internal("table existence check", err)
	}
	return exists, nil
}

func (d *DB) ListTables() ([]models.Table, error) {
	var ts []models.Table
	err := d.Bun.NewSelect().
		Model(&ts).
		Order("number ASC").
		Scan(context.Background())
	if err != nil {
		return nil, apperr.Internal("list tables", err)
	}
	return ts, nil
}
