package policy

import (
	"fmt"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
)

// Action names one guarded operation. Subjects carry whatever ownership
// information the rule needs (usually the owning user id).
type Action string

const (
	ActionListAllOrders     Action = "orders.list_all"
	ActionViewOrder         Action = "orders.view"
	ActionListOrdersByUser  Action = "orders.list_by_user"
	ActionCreateOrder       Action = "orders.create"
	ActionUpdateOrderStatus Action = "orders.update_status"
	ActionMutateOrderLines  Action = "orders.mutate_lines"
	ActionManageCatalog     Action = "catalog.manage"
	ActionManageInventory   Action = "inventory.manage"
	ActionCreateReservation Action = "reservations.create"
	ActionMutateReservation Action = "reservations.mutate"
)

// Subject is the target of an action: either a concrete record (carrying its
// owner) or a whole class of records (OwnerID empty).
type Subject struct {
	OwnerID string
}

func Owned(ownerID string) Subject { return Subject{OwnerID: ownerID} }
func Class() Subject               { return Subject{} }

// Policy is the single authorization decision point. It is injected into
// services at construction; nothing consults ambient global state.
type Policy struct{}

func New() *Policy { return &Policy{} }

// Authorize returns nil when actor may perform action on subject, and a
// Forbidden error with the denial reason otherwise. It never reports any
// other error kind, so a denial can always be told apart from a missing
// record or an internal fault.
func (p *Policy) Authorize(actor models.Actor, action Action, subject Subject) error {
	if actor.ID == "" {
		return apperr.Forbidden("unauthenticated actor")
	}
	if actor.Role.Elevated() {
		return nil
	}

	switch action {
	case ActionViewOrder, ActionListOrdersByUser, ActionUpdateOrderStatus,
		ActionMutateOrderLines, ActionMutateReservation:
		if subject.OwnerID != "" && subject.OwnerID == actor.ID {
			return nil
		}
		return apperr.Forbidden(fmt.Sprintf("%s: actor %s does not own the target", action, actor.ID))
	case ActionCreateOrder, ActionCreateReservation:
		// Plain users create only for themselves.
		if subject.OwnerID == "" || subject.OwnerID == actor.ID {
			return nil
		}
		return apperr.Forbidden(fmt.Sprintf("%s: cannot create for another user", action))
	case ActionListAllOrders, ActionManageCatalog, ActionManageInventory:
		return apperr.Forbidden(fmt.Sprintf("%s: requires an elevated role", action))
	default:
		return apperr.Forbidden(fmt.Sprintf("unknown action %q", action))
	}
}
