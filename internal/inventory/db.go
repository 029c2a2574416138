package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetStockItem(id string) (*models.StockItem, error) {
	var item models.StockItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("stock item %s not found", id))
	}
	if err != nil {
		return nil, apperr.Internal("select stock item", err)
	}
	return &item, nil
}

func (d *DB) GetStockItemByFood(foodID string) (*models.StockItem, error) {
	var item models.StockItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("food_id = ?", foodID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("no stock item linked to food %s", foodID))
	}
	if err != nil {
		return nil, apperr.Internal("select stock item by food", err)
	}
	return &item, nil
}

func (d *DB) ListStockItems() ([]models.StockItem, error) {
	var items []models.StockItem
	err := d.Bun.NewSelect().
		Model(&items).
		Order("name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, apperr.Internal("list stock items", err)
	}
	return items, nil
}

// CreateStockItem inserts the item and, when it opens with stock on hand,
// the initial log row in one transaction.
func (d *DB) CreateStockItem(item models.StockItem, logRow *models.InventoryLog) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&item).Exec(ctx); err != nil {
			return err
		}
		if logRow != nil {
			if _, err := tx.NewInsert().Model(logRow).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperr.Internal("create stock item", err)
	}
	return nil
}

// ApplyMovement shifts a stock item's quantity and appends the matching log
// row in one transaction; the quantity never observably moves without its
// history entry. Negative deltas fail when stock would go below zero.
func (d *DB) ApplyMovement(itemID string, delta float64, entry *models.StockEntry, logRow models.InventoryLog) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().
			Model((*models.StockItem)(nil)).
			Set("quantity = quantity + ?", delta).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", itemID)
		if delta < 0 {
			q = q.Where("quantity >= ?", -delta)
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			exists, err := tx.NewSelect().
				Model((*models.StockItem)(nil)).
				Where("id = ?", itemID).
				Exists(ctx)
			if err != nil {
				return err
			}
			if !exists {
				return apperr.NotFound(fmt.Sprintf("stock item %s not found", itemID))
			}
			return apperr.Conflict(fmt.Sprintf("stock item %s has insufficient quantity", itemID))
		}

		if entry != nil {
			if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
				return err
			}
		}
		_, err = tx.NewInsert().Model(&logRow).Exec(ctx)
		return err
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return e
		}
		return apperr.Internal("apply stock movement", err)
	}
	return nil
}

func (d *DB) ListLogsByStockItem(itemID string) ([]models.InventoryLog, error) {
	var logs []models.InventoryLog
	err := d.Bun.NewSelect().
		Model(&logs).
		Where("stock_item_id = ?", itemID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, apperr.Internal("list inventory logs", err)
	}
	return logs, nil
}
