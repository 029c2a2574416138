package order

import (
	"fmt"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
)

// legalTransitions is the full lifecycle table. Terminal states have no
// entry and therefore reject every target.
var legalTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderInProgress, models.OrderCancelled},
	models.OrderInProgress: {models.OrderCompleted, models.OrderCancelled},
}

func transitionAllowed(from, to models.OrderStatus) bool {
	for _, t := range legalTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Transition applies a status change to the order in memory and returns the
// mutated copy. It enforces the lifecycle table and the per-edge role rules:
// owners may only cancel, acceptance and completion need an elevated role.
// AcceptedAt is stamped server-side on PENDING → IN_PROGRESS and never
// cleared afterwards; caller-supplied timestamps are not accepted anywhere.
func Transition(o models.Order, to models.OrderStatus, actor models.Actor, now time.Time) (models.Order, error) {
	if o.Status.Terminal() {
		return o, apperr.InvalidTransition(fmt.Sprintf("order %s is %s and accepts no further transitions", o.ID, o.Status))
	}
	if !transitionAllowed(o.Status, to) {
		return o, apperr.InvalidTransition(fmt.Sprintf("order %s: %s -> %s is not a legal transition", o.ID, o.Status, to))
	}

	switch to {
	case models.OrderCancelled:
		// Owner or elevated role.
		if !actor.Role.Elevated() && actor.ID != o.UserID {
			return o, apperr.Forbidden(fmt.Sprintf("order %s: only the owner or staff may cancel", o.ID))
		}
	default:
		// IN_PROGRESS and COMPLETED are staff decisions.
		if !actor.Role.Elevated() {
			return o, apperr.Forbidden(fmt.Sprintf("order %s: %s -> %s requires an elevated role", o.ID, o.Status, to))
		}
	}

	if o.Status == models.OrderPending && to == models.OrderInProgress {
		t := now.UTC()
		o.AcceptedAt = &t
	}
	o.Status = to
	o.UpdatedAt = now.UTC()
	return o, nil
}
