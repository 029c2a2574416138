package models

import (
	"time"

	"github.com/uptrace/bun"
)

type StockItem struct {
	bun.BaseModel `bun:"table:stock_items"`

	ID   string `bun:"id,pk" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
	Unit string `bun:"unit,notnull" json:"unit"`
	// FoodID links the stock item to a catalog entry; accepting an order
	// consumes linked stock per ordered quantity.
	FoodID    string    `bun:"food_id,nullzero" json:"food_id,omitempty"`
	Quantity  float64   `bun:"quantity,notnull" json:"quantity"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

// StockEntry records a replenishment delivery for a stock item.
type StockEntry struct {
	bun.BaseModel `bun:"table:stock_entries"`

	ID          string    `bun:"id,pk" json:"id"`
	StockItemID string    `bun:"stock_item_id,notnull" json:"stock_item_id"`
	Quantity    float64   `bun:"quantity,notnull" json:"quantity"`
	Supplier    string    `bun:"supplier,nullzero" json:"supplier,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at"`
}

type InventoryAction string

const (
	InventoryRestock InventoryAction = "RESTOCK"
	InventoryConsume InventoryAction = "CONSUME"
	InventoryAdjust  InventoryAction = "ADJUST"
)

// InventoryLog is the append-only movement history for a stock item.
type InventoryLog struct {
	bun.BaseModel `bun:"table:inventory_logs"`

	ID          string          `bun:"id,pk" json:"id"`
	StockItemID string          `bun:"stock_item_id,notnull" json:"stock_item_id"`
	Action      InventoryAction `bun:"action,notnull" json:"action"`
	Delta       float64         `bun:"delta,notnull" json:"delta"`
	Reference   string          `bun:"reference,nullzero" json:"reference,omitempty"`
	ActorID     string          `bun:"actor_id,notnull" json:"actor_id"`
	CreatedAt   time.Time       `bun:"created_at,notnull" json:"created_at"`
}

type CreateStockItemCommand struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	FoodID   string  `json:"food_id"`
	Quantity float64 `json:"quantity"`
}

type RestockCommand struct {
	StockItemID string  `json:"stock_item_id"`
	Quantity    float64 `json:"quantity"`
	Supplier    string  `json:"supplier"`
}

type AdjustStockCommand struct {
	StockItemID string  `json:"stock_item_id"`
	Delta       float64 `json:"delta"`
	Reason      string  `json:"reason"`
}
