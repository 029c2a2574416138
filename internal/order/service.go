package order

import (
	"fmt"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/policy"

	"github.com/google/uuid"
)

// DBLayer is the persistence surface for the order aggregate. Mutating calls
// commit the line change and the recomputed total in one transaction and
// guard against concurrent writers with the order's version column; a stale
// version surfaces as a Conflict error.
type DBLayer interface {
	CreateOrder(order models.Order, lines []models.OrderLine) error
	GetOrderByID(id string) (*models.Order, error)
	ListAllOrders() ([]models.Order, error)
	ListOrdersByUser(userID string) ([]models.Order, error)
	UpdateOrderStatus(order models.Order) error
	InsertLine(line models.OrderLine, expectedVersion int64) (*models.Order, error)
	UpdateLine(line models.OrderLine, expectedVersion int64) (*models.Order, error)
}

// UserDirectory answers existence and role questions about users. Token
// issuance and everything else about identity lives outside this service.
type UserDirectory interface {
	Exists(userID string) (bool, error)
	GetRole(userID string) (models.Role, error)
}

// FoodCatalog resolves catalog entries; consulted only at line-add time,
// never to re-price historical lines.
type FoodCatalog interface {
	GetFood(foodID string) (*models.Food, error)
}

type KafkaPublisher interface {
	PublishOrderPlaced(order models.Order) error
	PublishOrderStatusChanged(order models.Order) error
	PublishLineAdded(order models.Order, line models.OrderLine) error
	PublishLineCancelled(order models.Order, line models.OrderLine) error
}

// InventoryConsumer deducts stock when an order is accepted. Optional; a nil
// consumer skips deduction.
type InventoryConsumer interface {
	ConsumeForOrder(order models.Order, actor models.Actor) error
}

type OrderService struct {
	DB        DBLayer
	Users     UserDirectory
	Catalog   FoodCatalog
	Kafka     KafkaPublisher
	Inventory InventoryConsumer
	Policy    *policy.Policy
	Log       *logger.Logger
}

func NewOrderService(db DBLayer, users UserDirectory, catalog FoodCatalog, kafka KafkaPublisher, pol *policy.Policy, log *logger.Logger) *OrderService {
	return &OrderService{DB: db, Users: users, Catalog: catalog, Kafka: kafka, Policy: pol, Log: log}
}

// ---------------- Queries ----------------

func (s *OrderService) GetOrder(actor models.Actor, id string) (*models.Order, error) {
	o, err := s.DB.GetOrderByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Authorize(actor, policy.ActionViewOrder, policy.Owned(o.UserID)); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) ListAllOrders(actor models.Actor) ([]models.Order, error) {
	if err := s.Policy.Authorize(actor, policy.ActionListAllOrders, policy.Class()); err != nil {
		return nil, err
	}
	return s.DB.ListAllOrders()
}

// ListByUser authorizes before touching the user directory so a denied
// caller learns nothing about whether the target user exists.
func (s *OrderService) ListByUser(actor models.Actor, targetUserID string) ([]models.Order, error) {
	if err := s.Policy.Authorize(actor, policy.ActionListOrdersByUser, policy.Owned(targetUserID)); err != nil {
		return nil, err
	}
	exists, err := s.Users.Exists(targetUserID)
	if err != nil {
		return nil, apperr.Internal("user directory lookup failed", err)
	}
	if !exists {
		return nil, apperr.NotFound(fmt.Sprintf("user %s not found", targetUserID))
	}
	return s.DB.ListOrdersByUser(targetUserID)
}

// ---------------- Mutations ----------------

func (s *OrderService) PlaceOrder(actor models.Actor, cmd models.PlaceOrderCommand) (*models.Order, error) {
	if err := s.Policy.Authorize(actor, policy.ActionCreateOrder, policy.Owned(actor.ID)); err != nil {
		return nil, err
	}
	if err := validatePlacement(cmd); err != nil {
		return nil, err
	}

	now := time.Now()
	o := models.Order{
		ID:            uuid.NewString(),
		UserID:        actor.ID,
		TableID:       cmd.TableID,
		Address:       cmd.Address,
		Status:        models.OrderPending,
		Type:          cmd.Type,
		PaymentMethod: cmd.PaymentMethod,
		Version:       1,
		CreatedAt:     now.UTC(),
	}

	lines := make([]models.OrderLine, 0, len(cmd.Lines))
	for _, lc := range cmd.Lines {
		line, err := s.buildLine(actor, o.ID, lc, now)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	o.SumPrice = RecomputeTotal(lines)

	if err := s.DB.CreateOrder(o, lines); err != nil {
		return nil, err
	}
	o.Lines = lines

	if err := s.Kafka.PublishOrderPlaced(o); err != nil {
		s.Log.LogKafka("PUBLISH", "order_placed", fmt.Sprintf("failed for order %s: %v", o.ID, err))
	}
	s.Log.LogOrder("PLACE", o.ID, fmt.Sprintf("user=%s lines=%d sum=%.2f", o.UserID, len(lines), o.SumPrice))
	return &o, nil
}

// UpdateStatus runs the lifecycle machine and persists the result. A version
// conflict from a concurrent writer is retried once against fresh state
// before surfacing.
func (s *OrderService) UpdateStatus(actor models.Actor, orderID string, cmd models.UpdateOrderStatusCommand) (*models.Order, error) {
	var updated models.Order
	err := s.withConflictRetry(func() error {
		o, err := s.DB.GetOrderByID(orderID)
		if err != nil {
			return err
		}
		if err := s.Policy.Authorize(actor, policy.ActionUpdateOrderStatus, policy.Owned(o.UserID)); err != nil {
			return err
		}
		next, err := Transition(*o, cmd.Status, actor, time.Now())
		if err != nil {
			return err
		}
		if err := s.DB.UpdateOrderStatus(next); err != nil {
			return err
		}
		updated = next
		updated.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.Status == models.OrderInProgress && s.Inventory != nil {
		// Stock deduction must not undo an already-committed acceptance.
		if err := s.Inventory.ConsumeForOrder(updated, actor); err != nil {
			s.Log.LogDatabase("UPDATE", "stock_items", fmt.Sprintf("deduction for order %s failed: %v", updated.ID, err))
		}
	}
	if err := s.Kafka.PublishOrderStatusChanged(updated); err != nil {
		s.Log.LogKafka("PUBLISH", "order_status_changed", fmt.Sprintf("failed for order %s: %v", updated.ID, err))
	}
	s.Log.LogOrder("STATUS", updated.ID, fmt.Sprintf("-> %s by %s", updated.Status, actor.ID))
	return &updated, nil
}

func (s *OrderService) AddLine(actor models.Actor, orderID string, cmd models.AddLineCommand) (*models.Order, error) {
	var out *models.Order
	var added models.OrderLine
	err := s.withConflictRetry(func() error {
		o, err := s.DB.GetOrderByID(orderID)
		if err != nil {
			return err
		}
		if err := s.Policy.Authorize(actor, policy.ActionMutateOrderLines, policy.Owned(o.UserID)); err != nil {
			return err
		}
		if o.Status.Terminal() {
			return apperr.InvalidTransition(fmt.Sprintf("order %s is %s; lines are frozen", o.ID, o.Status))
		}
		line, err := s.buildLine(actor, o.ID, cmd, time.Now())
		if err != nil {
			return err
		}
		out, err = s.DB.InsertLine(line, o.Version)
		if err != nil {
			return err
		}
		added = line
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.Kafka.PublishLineAdded(*out, added); err != nil {
		s.Log.LogKafka("PUBLISH", "order_line_added", fmt.Sprintf("failed for order %s: %v", out.ID, err))
	}
	return out, nil
}

// CancelLine is idempotent: cancelling an already-cancelled line changes
// nothing and reports success.
func (s *OrderService) CancelLine(actor models.Actor, orderID, lineID string) (*models.Order, error) {
	var out *models.Order
	var cancelled *models.OrderLine
	err := s.withConflictRetry(func() error {
		o, err := s.DB.GetOrderByID(orderID)
		if err != nil {
			return err
		}
		if err := s.Policy.Authorize(actor, policy.ActionMutateOrderLines, policy.Owned(o.UserID)); err != nil {
			return err
		}
		if o.Status.Terminal() {
			return apperr.InvalidTransition(fmt.Sprintf("order %s is %s; lines are frozen", o.ID, o.Status))
		}
		line := findLine(o.Lines, lineID)
		if line == nil {
			return apperr.NotFound(fmt.Sprintf("line %s not found on order %s", lineID, orderID))
		}
		next, changed := CancelLine(*line, time.Now())
		if !changed {
			out = o
			return nil
		}
		out, err = s.DB.UpdateLine(next, o.Version)
		if err != nil {
			return err
		}
		cancelled = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cancelled != nil {
		if err := s.Kafka.PublishLineCancelled(*out, *cancelled); err != nil {
			s.Log.LogKafka("PUBLISH", "order_line_cancelled", fmt.Sprintf("failed for order %s: %v", out.ID, err))
		}
		s.Log.LogOrder("LINE_CANCEL", out.ID, fmt.Sprintf("line=%s sum=%.2f", lineID, out.SumPrice))
	}
	return out, nil
}

// UpdateLineQuantity corrects a pending line's quantity and recomputes the
// total in the same transaction.
func (s *OrderService) UpdateLineQuantity(actor models.Actor, orderID, lineID string, cmd models.UpdateLineQuantityCommand) (*models.Order, error) {
	if cmd.Quantity <= 0 {
		return nil, apperr.InvalidArgument(fmt.Sprintf("quantity must be a positive integer, got %d", cmd.Quantity))
	}
	var out *models.Order
	err := s.withConflictRetry(func() error {
		o, err := s.DB.GetOrderByID(orderID)
		if err != nil {
			return err
		}
		if err := s.Policy.Authorize(actor, policy.ActionMutateOrderLines, policy.Owned(o.UserID)); err != nil {
			return err
		}
		if o.Status.Terminal() {
			return apperr.InvalidTransition(fmt.Sprintf("order %s is %s; lines are frozen", o.ID, o.Status))
		}
		line := findLine(o.Lines, lineID)
		if line == nil {
			return apperr.NotFound(fmt.Sprintf("line %s not found on order %s", lineID, orderID))
		}
		if line.Status != models.LinePending {
			return apperr.InvalidTransition(fmt.Sprintf("line %s is %s and cannot be edited", lineID, line.Status))
		}
		next := *line
		next.Quantity = cmd.Quantity
		next.UpdatedAt = time.Now().UTC()
		out, err = s.DB.UpdateLine(next, o.Version)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------- helpers ----------------

func (s *OrderService) buildLine(actor models.Actor, orderID string, cmd models.AddLineCommand, now time.Time) (models.OrderLine, error) {
	if cmd.PriceOverride != nil && !actor.Role.Elevated() {
		return models.OrderLine{}, apperr.Forbidden("price overrides require an elevated role")
	}
	food, err := s.Catalog.GetFood(cmd.FoodID)
	if err != nil {
		return models.OrderLine{}, err
	}
	return NewLine(orderID, *food, cmd, now)
}

// withConflictRetry runs fn and retries exactly once when the repository
// reports an optimistic-lock conflict. Policy and validation failures pass
// through untouched.
func (s *OrderService) withConflictRetry(fn func() error) error {
	err := fn()
	if err != nil && apperr.IsKind(err, apperr.KindConflict) {
		s.Log.LogDatabase("RETRY", "orders", "version conflict, retrying once")
		err = fn()
	}
	return err
}

func findLine(lines []models.OrderLine, lineID string) *models.OrderLine {
	for i := range lines {
		if lines[i].ID == lineID {
			return &lines[i]
		}
	}
	return nil
}

func validatePlacement(cmd models.PlaceOrderCommand) error {
	switch cmd.Type {
	case models.OrderDineIn:
		if cmd.TableID == "" {
			return apperr.InvalidArgument("dine-in orders require a table_id")
		}
	case models.OrderDelivery:
		if cmd.Address == "" {
			return apperr.InvalidArgument("delivery orders require an address")
		}
	case models.OrderPickup:
		// Nothing extra.
	default:
		return apperr.InvalidArgument(fmt.Sprintf("unknown order type %q", cmd.Type))
	}
	switch cmd.PaymentMethod {
	case models.PayCash, models.PayCreditCard, models.PayQRCode:
	default:
		return apperr.InvalidArgument(fmt.Sprintf("unknown payment method %q", cmd.PaymentMethod))
	}
	if len(cmd.Lines) == 0 {
		return apperr.InvalidArgument("an order needs at least one line")
	}
	return nil
}
