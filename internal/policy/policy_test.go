package policy_test

import (
	"testing"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/policy"

	"github.com/stretchr/testify/assert"
)

func TestElevatedRolesAlwaysAllowed(t *testing.T) {
	pol := policy.New()

	admin := models.Actor{ID: "admin1", Role: models.RoleAdmin}
	staff := models.Actor{ID: "staff1", Role: models.RoleStaff}

	actions := []policy.Action{
		policy.ActionListAllOrders,
		policy.ActionViewOrder,
		policy.ActionCreateOrder,
		policy.ActionUpdateOrderStatus,
		policy.ActionMutateOrderLines,
		policy.ActionManageCatalog,
		policy.ActionManageInventory,
		policy.ActionCreateReservation,
		policy.ActionMutateReservation,
	}

	for _, action := range actions {
		assert.NoError(t, pol.Authorize(admin, action, policy.Owned("someone-else")))
		assert.NoError(t, pol.Authorize(staff, action, policy.Class()))
	}
}

func TestOwnerMayActOnOwnRecords(t *testing.T) {
	pol := policy.New()
	user := models.Actor{ID: "user1", Role: models.RoleUser}

	assert.NoError(t, pol.Authorize(user, policy.ActionViewOrder, policy.Owned("user1")))
	assert.NoError(t, pol.Authorize(user, policy.ActionListOrdersByUser, policy.Owned("user1")))
	assert.NoError(t, pol.Authorize(user, policy.ActionMutateOrderLines, policy.Owned("user1")))
	assert.NoError(t, pol.Authorize(user, policy.ActionCreateOrder, policy.Owned("user1")))
}

func TestUserDeniedOnForeignRecords(t *testing.T) {
	pol := policy.New()
	user := models.Actor{ID: "user1", Role: models.RoleUser}

	err := pol.Authorize(user, policy.ActionViewOrder, policy.Owned("user2"))
	assert.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = pol.Authorize(user, policy.ActionListOrdersByUser, policy.Owned("user2"))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestUserDeniedOnElevatedOnlyActions(t *testing.T) {
	pol := policy.New()
	user := models.Actor{ID: "user1", Role: models.RoleUser}

	for _, action := range []policy.Action{
		policy.ActionListAllOrders,
		policy.ActionManageCatalog,
		policy.ActionManageInventory,
	} {
		err := pol.Authorize(user, action, policy.Class())
		assert.Error(t, err)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	}
}

func TestDenialIsAlwaysForbiddenKind(t *testing.T) {
	pol := policy.New()

	// Every denial must map to 403, never to a 500.
	err := pol.Authorize(models.Actor{}, policy.ActionViewOrder, policy.Owned("user1"))
	assert.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, 403, apperr.HTTPStatus(err))

	err = pol.Authorize(models.Actor{ID: "u", Role: models.RoleUser}, policy.Action("unknown.action"), policy.Class())
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}
