package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

func (s ReservationStatus) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

type Reservation struct {
	bun.BaseModel `bun:"table:reservations"`

	ID              string            `bun:"id,pk" json:"id"`
	UserID          string            `bun:"user_id,notnull" json:"user_id"`
	TableID         string            `bun:"table_id,notnull" json:"table_id"`
	AppointmentTime time.Time         `bun:"appointment_time,notnull" json:"appointment_time"`
	Status          ReservationStatus `bun:"status,notnull" json:"status"`
	CreatedAt       time.Time         `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at,nullzero" json:"updated_at"`
}

type CreateReservationCommand struct {
	TableID         string    `json:"table_id"`
	AppointmentTime time.Time `json:"appointment_time"`
}
