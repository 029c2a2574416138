package catalog

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

func (d *DB) GetFood(foodID string) (*models.Food, error) {
	var f models.Food
	err := d.Bun.NewSelect().
		Model(&f).
		Where("id = ?", foodID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("food %s not found", foodID))
	}
	if err != nil {
		return nil, apperr.Internal("select food", err)
	}
	return &f, nil
}

func (d *DB) ListFoods() ([]models.Food, error) {
	var foods []models.Food
	err := d.Bun.NewSelect().
		Model(&foods).
		Order("name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, apperr.Internal("list foods", err)
	}
	return foods, nil
}

func (d *DB) InsertFood(f models.Food) error {
	if _, err := d.Bun.NewInsert().Model(&f).Exec(context.Background()); err != nil {
		return apperr.Internal("insert food", err)
	}
	return nil
}

func (d *DB) UpdateFood(f models.Food) error {
	res, err := d.Bun.NewUpdate().
		Model(&f).
		Column("name", "description", "price", "available", "updated_at").
		Where("id = ?", f.ID).
		Exec(context.Background())
	if err != nil {
		return apperr.Internal("update food", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("rows affected", err)
	}
	if n == 0 {
		return apperr.NotFound(fmt.Sprintf("food %s not found", f.ID))
	}
	return nil
}
