package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// GetOrderByID fetches one order together with its lines.
func (d *DB) GetOrderByID(id string) (*models.Order, error) {
	var o models.Order
	err := d.Bun.NewSelect().
		Model(&o).
		Relation("Lines").
		Where("\"order\".id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("order %s not found", id))
	}
	if err != nil {
		return nil, apperr.Internal("select order", err)
	}
	return &o, nil
}

func (d *DB) ListAllOrders() ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Lines").
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, apperr.Internal("list orders", err)
	}
	return orders, nil
}

func (d *DB) ListOrdersByUser(userID string) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Lines").
		Where("\"order\".user_id = ?", userID).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, apperr.Internal("list orders by user", err)
	}
	return orders, nil
}

// CreateOrder inserts the order and its initial lines in one transaction.
func (d *DB) CreateOrder(order models.Order, lines []models.OrderLine) error {
	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&order).Exec(ctx); err != nil {
			return err
		}
		if len(lines) > 0 {
			if _, err := tx.NewInsert().Model(&lines).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperr.Internal("create order", err)
	}
	return nil
}

// UpdateOrderStatus persists a lifecycle transition. The order's Version
// field carries the version the caller read; a concurrent writer bumps it
// and this update then matches zero rows, which surfaces as Conflict.
func (d *DB) UpdateOrderStatus(order models.Order) error {
	ctx := context.Background()
	res, err := d.Bun.NewUpdate().
		Model(&order).
		Column("status", "accepted_at", "updated_at").
		Set("version = version + 1").
		Where("id = ?", order.ID).
		Where("version = ?", order.Version).
		Exec(ctx)
	if err != nil {
		return apperr.Internal("update order status", err)
	}
	return d.checkGuard(ctx, res, order.ID)
}

// InsertLine appends a line and recomputes the order total atomically.
func (d *DB) InsertLine(line models.OrderLine, expectedVersion int64) (*models.Order, error) {
	return d.mutateAggregate(line.OrderID, expectedVersion, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&line).Exec(ctx)
		return err
	})
}

// UpdateLine saves a changed line (status or quantity) and recomputes the
// order total atomically.
func (d *DB) UpdateLine(line models.OrderLine, expectedVersion int64) (*models.Order, error) {
	return d.mutateAggregate(line.OrderID, expectedVersion, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(&line).
			Column("status", "quantity", "updated_at").
			Where("id = ?", line.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound(fmt.Sprintf("line %s not found", line.ID))
		}
		return nil
	})
}

// mutateAggregate runs the line mutation, recomputes sum_price from the
// non-cancelled lines and bumps the order version, all in one transaction.
// No observer ever sees the line change without the matching total.
func (d *DB) mutateAggregate(orderID string, expectedVersion int64, mutate func(ctx context.Context, tx bun.Tx) error) (*models.Order, error) {
	ctx := context.Background()
	var out models.Order
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := mutate(ctx, tx); err != nil {
			return err
		}

		var sum float64
		err := tx.NewSelect().
			Model((*models.OrderLine)(nil)).
			ColumnExpr("COALESCE(SUM(price * quantity), 0)").
			Where("order_id = ?", orderID).
			Where("status != ?", models.LineCancelled).
			Scan(ctx, &sum)
		if err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("sum_price = ?", sum).
			Set("version = version + 1").
			Set("updated_at = ?", time.Now().UTC()).
			Where("id = ?", orderID).
			Where("version = ?", expectedVersion).
			Exec(ctx)
		if err != nil {
			return err
		}
		if err := d.checkGuardTx(ctx, tx, res, orderID); err != nil {
			return err
		}

		return tx.NewSelect().
			Model(&out).
			Relation("Lines").
			Where("\"order\".id = ?", orderID).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		var e *apperr.Error
		if errors.As(err, &e) {
			return nil, e
		}
		return nil, apperr.Internal("mutate order aggregate", err)
	}
	return &out, nil
}

func (d *DB) checkGuard(ctx context.Context, res sql.Result, orderID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("rows affected", err)
	}
	if n > 0 {
		return nil
	}
	exists, err := d.Bun.NewSelect().
		Model((*models.Order)(nil)).
		Where("id = ?", orderID).
		Exists(ctx)
	if err != nil {
		return apperr.Internal("order existence check", err)
	}
	if !exists {
		return apperr.NotFound(fmt.Sprintf("order %s not found", orderID))
	}
	return apperr.Conflict(fmt.Sprintf("order %s was modified concurrently", orderID))
}

func (d *DB) checkGuardTx(ctx context.Context, tx bun.Tx, res sql.Result, orderID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	exists, err := tx.NewSelect().
		Model((*models.Order)(nil)).
		Where("id = ?", orderID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return apperr.NotFound(fmt.Sprintf("order %s not found", orderID))
	}
	return apperr.Conflict(fmt.Sprintf("order %s was modified concurrently", orderID))
}
