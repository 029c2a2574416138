package db

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

func (d *DB) GetReservationByID(id string) (*models.Reservation, error) {
	var res models.Reservation
	err := d.Bun.NewSelect().
		Model(&res).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("reservation %s not found", id))
	}
	if err != nil {
		return nil, apperr.Internal("select reservation", err)
	}
	return &res, nil
}

func (d *DB) ListReservationsByUser(userID string) ([]models.Reservation, error) {
	var items []models.Reservation
	err := d.Bun.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Order("appointment_time DESC").
		Scan(context.Background())
	if err != nil {
		return nil, apperr.Internal("list reservations", err)
	}
	return items, nil
}

func (d *DB) CreateReservation(res models.Reservation) error {
	if _, err := d.Bun.NewInsert().Model(&res).Exec(context.Background()); err != nil {
		return apperr.Internal("insert reservation", err)
	}
	return nil
}

// UpdateStatusGuard moves a reservation from one status to another and
// reports Conflict when the row was not in the expected status anymore.
func (d *DB) UpdateStatusGuard(id string, from, to models.ReservationStatus) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Reservation)(nil)).
		Set("status = ?", to).
		Where("id = ?", id).
		Where("status = ?", from).
		Exec(context.Background())
	if err != nil {
		return apperr.Internal("update reservation status", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("rows affected", err)
	}
	if n == 0 {
		exists, err := d.Bun.NewSelect().
			Model((*models.Reservation)(nil)).
			Where("id = ?", id).
			Exists(context.Background())
		if err != nil {
			return apperr.Internal("reservation existence check", err)
		}
		if !exists {
			return apperr.NotFound(fmt.Sprintf("reservation %s not found", id))
		}
		return apperr.Conflict(fmt.Sprintf("reservation %s is no longer %s", id, from))
	}
	return nil
}
