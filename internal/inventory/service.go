package inventory

import (
	"fmt"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/policy"

	"github.com/google/uuid"
)

// Service manages stock items, replenishment entries and the append-only
// movement log. All writes are elevated-only.
type Service struct {
	DB     *DB
	Policy *policy.Policy
	Log    *logger.Logger
}

func NewService(db *DB, pol *policy.Policy, log *logger.Logger) *Service {
	return &Service{DB: db, Policy: pol, Log: log}
}

func (s *Service) ListStockItems(actor models.Actor) ([]models.StockItem, error) {
	if err := s.Policy.Authorize(actor, policy.ActionManageInventory, policy.Class()); err != nil {
		return nil, err
	}
	return s.DB.ListStockItems()
}

func (s *Service) ListLogs(actor models.Actor, stockItemID string) ([]models.InventoryLog, error) {
	if err := s.Policy.Authorize(actor, policy.ActionManageInventory, policy.Class()); err != nil {
		return nil, err
	}
	if _, err := s.DB.GetStockItem(stockItemID); err != nil {
		return nil, err
	}
	return s.DB.ListLogsByStockItem(stockItemID)
}

// CreateStockItem registers a new tracked item. An opening quantity lands in
// the movement log like any other restock so the history starts complete.
func (s *Service) CreateStockItem(actor models.Actor, cmd models.CreateStockItemCommand) (*models.StockItem, error) {
	if err := s.Policy.Authorize(actor, policy.ActionManageInventory, policy.Class()); err != nil {
		return nil, err
	}
	if cmd.Name == "" {
		return nil, apperr.InvalidArgument("stock item name is required")
	}
	if cmd.Unit == "" {
		return nil, apperr.InvalidArgument("stock item unit is required")
	}
	if cmd.Quantity < 0 {
		return nil, apperr.InvalidArgument("opening quantity must not be negative")
	}

	now := time.Now().UTC()
	item := models.StockItem{
		ID:        uuid.NewString(),
		Name:      cmd.Name,
		Unit:      cmd.Unit,
		FoodID:    cmd.FoodID,
		Quantity:  cmd.Quantity,
		CreatedAt: now,
	}
	var logRow *models.InventoryLog
	if cmd.Quantity > 0 {
		logRow = &models.InventoryLog{
			ID:          uuid.NewString(),
			StockItemID: item.ID,
			Action:      models.InventoryRestock,
			Delta:       cmd.Quantity,
			Reference:   "opening stock",
			ActorID:     actor.ID,
			CreatedAt:   now,
		}
	}
	if err := s.DB.CreateStockItem(item, logRow); err != nil {
		return nil, err
	}
	s.Log.LogInventory("CREATE", item.ID, fmt.Sprintf("%s (%s) opening %.2f by %s", item.Name, item.Unit, item.Quantity, actor.ID))
	return &item, nil
}

// Restock books a delivery: stock entry, quantity bump and log row commit
// together.
func (s *Service) Restock(actor models.Actor, cmd models.RestockCommand) error {
	if err := s.Policy.Authorize(actor, policy.ActionManageInventory, policy.Class()); err != nil {
		return err
	}
	if cmd.Quantity <= 0 {
		return apperr.InvalidArgument("restock quantity must be positive")
	}

	now := time.Now().UTC()
	entry := &models.StockEntry{
		ID:          uuid.NewString(),
		StockItemID: cmd.StockItemID,
		Quantity:    cmd.Quantity,
		Supplier:    cmd.Supplier,
		CreatedAt:   now,
	}
	logRow := models.InventoryLog{
		ID:          uuid.NewString(),
		StockItemID: cmd.StockItemID,
		Action:      models.InventoryRestock,
		Delta:       cmd.Quantity,
		Reference:   entry.ID,
		ActorID:     actor.ID,
		CreatedAt:   now,
	}
	if err := s.DB.ApplyMovement(cmd.StockItemID, cmd.Quantity, entry, logRow); err != nil {
		return err
	}
	s.Log.LogInventory("RESTOCK", cmd.StockItemID, fmt.Sprintf("+%.2f by %s", cmd.Quantity, actor.ID))
	return nil
}

// Adjust corrects stock after a count; delta may be negative.
func (s *Service) Adjust(actor models.Actor, cmd models.AdjustStockCommand) error {
	if err := s.Policy.Authorize(actor, policy.ActionManageInventory, policy.Class()); err != nil {
		return err
	}
	if cmd.Delta == 0 {
		return apperr.InvalidArgument("adjustment delta must not be zero")
	}

	logRow := models.InventoryLog{
		ID:          uuid.NewString(),
		StockItemID: cmd.StockItemID,
		Action:      models.InventoryAdjust,
		Delta:       cmd.Delta,
		Reference:   cmd.Reason,
		ActorID:     actor.ID,
		CreatedAt:   time.Now().UTC(),
	}
	return s.DB.ApplyMovement(cmd.StockItemID, cmd.Delta, nil, logRow)
}

// ConsumeForOrder deducts linked stock when an order is accepted. Foods
// without a linked stock item are skipped; an insufficient-stock conflict is
// reported to the caller, which logs it without undoing the acceptance.
func (s *Service) ConsumeForOrder(order models.Order, actor models.Actor) error {
	var firstErr error
	for _, line := range order.Lines {
		if line.Status == models.LineCancelled {
			continue
		}
		item, err := s.DB.GetStockItemByFood(line.FoodID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				continue
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		logRow := models.InventoryLog{
			ID:          uuid.NewString(),
			StockItemID: item.ID,
			Action:      models.InventoryConsume,
			Delta:       -float64(line.Quantity),
			Reference:   order.ID,
			ActorID:     actor.ID,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.DB.ApplyMovement(item.ID, -float64(line.Quantity), nil, logRow); err != nil {
			s.Log.LogInventory("CONSUME", item.ID, fmt.Sprintf("order %s: %v", order.ID, err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
