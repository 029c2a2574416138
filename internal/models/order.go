package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// Terminal reports whether the status accepts no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

type OrderType string

const (
	OrderDelivery OrderType = "DELIVERY"
	OrderPickup   OrderType = "PICKUP"
	OrderDineIn   OrderType = "DINE_IN"
)

type PaymentMethod string

const (
	PayCash       PaymentMethod = "CASH"
	PayCreditCard PaymentMethod = "CREDIT_CARD"
	PayQRCode     PaymentMethod = "QRCODE"
)

type LineStatus string

const (
	LinePending   LineStatus = "PENDING"
	LineCancelled LineStatus = "CANCELLED"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID            string        `bun:"id,pk" json:"id"`
	UserID        string        `bun:"user_id,notnull" json:"user_id"`
	TableID       string        `bun:"table_id,nullzero" json:"table_id,omitempty"`
	Address       string        `bun:"address,nullzero" json:"address,omitempty"`
	Status        OrderStatus   `bun:"status,notnull" json:"status"`
	Type          OrderType     `bun:"type,notnull" json:"type"`
	PaymentMethod PaymentMethod `bun:"payment_method,notnull" json:"payment_method"`
	// AcceptedAt is set exactly once, when the order leaves PENDING for
	// IN_PROGRESS, and is never cleared while the order stays active.
	AcceptedAt *time.Time `bun:"accepted_at,nullzero" json:"accepted_at,omitempty"`
	// SumPrice is derived from non-cancelled lines; only the repository's
	// recompute path writes it.
	SumPrice  float64   `bun:"sum_price,notnull" json:"sum_price"`
	Version   int64     `bun:"version,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`

	Lines []OrderLine `bun:"rel:has-many,join:id=order_id" json:"lines,omitempty"`
}

// OrderLine is one add-to-order event. Lines are append-only: the same food
// added twice produces two rows, and cancellation is a status, not a delete.
type OrderLine struct {
	bun.BaseModel `bun:"table:order_lines"`

	ID      string `bun:"id,pk" json:"id"`
	OrderID string `bun:"order_id,notnull" json:"order_id"`
	FoodID  string `bun:"food_id,notnull" json:"food_id"`
	// Description and Price are snapshots taken at add time; later catalog
	// edits do not touch historical lines.
	Description string     `bun:"description,nullzero" json:"description,omitempty"`
	Price       float64    `bun:"price,notnull" json:"price"`
	Quantity    int        `bun:"quantity,notnull" json:"quantity"`
	Status      LineStatus `bun:"status,notnull" json:"status"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero" json:"updated_at"`
}

// ---------------- Commands ----------------
// Explicit per-operation command structs; handlers decode into these and
// nothing else reaches the service layer.

type PlaceOrderCommand struct {
	TableID       string        `json:"table_id"`
	Address       string        `json:"address"`
	Type          OrderType     `json:"type"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Lines         []AddLineCommand `json:"lines"`
}

type AddLineCommand struct {
	FoodID   string `json:"food_id"`
	Quantity int    `json:"quantity"`
	// PriceOverride, when non-nil, replaces the catalog snapshot. Only
	// elevated callers may set it.
	PriceOverride *float64 `json:"price_override,omitempty"`
}

type UpdateLineQuantityCommand struct {
	Quantity int `json:"quantity"`
}

type UpdateOrderStatusCommand struct {
	Status OrderStatus `json:"status"`
}
