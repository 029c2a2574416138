package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Table struct {
	bun.BaseModel `bun:"table:tables"`

	ID        string    `bun:"id,pk" json:"id"`
	Number    int       `bun:"number,notnull,unique" json:"number"`
	Seats     int       `bun:"seats,notnull" json:"seats"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
