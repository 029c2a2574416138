package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"

	"github.com/uptrace/bun"
)

// DB is the user directory. Identity management lives elsewhere; this only
// answers existence/role questions and serves admin listings.
type DB struct {
	Bun *bun.DB
}

func (d *DB) Exists(userID string) (bool, error) {
	exists, err := d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", userID).
		Exists(context.Background())
	if err != nil {
		return false, apperr.Internal("user existence check", err)
	}
	return exists, nil
}

func (d *DB) GetRole(userID string) (models.Role, error) {
	var role models.Role
	err := d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Column("role").
		Where("id = ?", userID).
		Scan(context.Background(), &role)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.NotFound(fmt.Sprintf("user %s not found", userID))
	}
	if err != nil {
		return "", apperr.Internal("select user role", err)
	}
	return role, nil
}

func (d *DB) GetUser(userID string) (*models.User, error) {
	var u models.User
	err := d.Bun.NewSelect().
		Model(&u).
		Where("id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(fmt.Sprintf("user %s not found", userID))
	}
	if err != nil {
		return nil, apperr.Internal("select user", err)
	}
	return &u, nil
}
