package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/order/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{(*models.Order)(nil), (*models.OrderLine)(nil)} {
		_, err = bunDB.NewCreateTable().Model(model).Exec(context.Background())
		if err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedOrder(t *testing.T, orderDB *db.DB) models.Order {
	t.Helper()
	o := models.Order{
		ID:            uuid.NewString(),
		UserID:        "user1",
		Status:        models.OrderPending,
		Type:          models.OrderPickup,
		PaymentMethod: models.PayCash,
		SumPrice:      22.75,
		Version:       1,
		CreatedAt:     time.Now().UTC(),
	}
	lines := []models.OrderLine{
		{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			FoodID:    "food1",
			Price:     9.75,
			Quantity:  2,
			Status:    models.LinePending,
			CreatedAt: time.Now().UTC(),
		},
		{
			ID:        uuid.NewString(),
			OrderID:   o.ID,
			FoodID:    "food2",
			Price:     3.25,
			Quantity:  1,
			Status:    models.LinePending,
			CreatedAt: time.Now().UTC(),
		},
	}

	err := orderDB.CreateOrder(o, lines)
	assert.NoError(t, err)
	o.Lines = lines
	return o
}

func TestCreateAndGetOrder(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	o := seedOrder(t, orderDB)

	got, err := orderDB.GetOrderByID(o.ID)
	assert.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, models.OrderPending, got.Status)
	assert.Len(t, got.Lines, 2)
	assert.InDelta(t, 22.75, got.SumPrice, 1e-9)

	_, err = orderDB.GetOrderByID("missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListOrdersByUser(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedOrder(t, orderDB)
	seedOrder(t, orderDB)

	list, err := orderDB.ListOrdersByUser("user1")
	assert.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = orderDB.ListOrdersByUser("someone-else")
	assert.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateOrderStatusVersionGuard(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	o := seedOrder(t, orderDB)
	now := time.Now().UTC()
	o.Status = models.OrderInProgress
	o.AcceptedAt = &now

	err := orderDB.UpdateOrderStatus(o)
	assert.NoError(t, err)

	got, err := orderDB.GetOrderByID(o.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderInProgress, got.Status)
	assert.NotNil(t, got.AcceptedAt)
	assert.Equal(t, int64(2), got.Version)

	// A writer still holding the old version must get a conflict.
	stale := o
	stale.Status = models.OrderCompleted
	err = orderDB.UpdateOrderStatus(stale)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// And a missing order is NotFound, not Conflict.
	ghost := o
	ghost.ID = "missing"
	err = orderDB.UpdateOrderStatus(ghost)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestInsertLineRecomputesSum(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	o := seedOrder(t, orderDB)

	line := models.OrderLine{
		ID:        uuid.NewString(),
		OrderID:   o.ID,
		FoodID:    "food1",
		Price:     9.75,
		Quantity:  1,
		Status:    models.LinePending,
		CreatedAt: time.Now().UTC(),
	}
	updated, err := orderDB.InsertLine(line, o.Version)
	assert.NoError(t, err)
	assert.Len(t, updated.Lines, 3)
	assert.InDelta(t, 32.50, updated.SumPrice, 1e-9)
	assert.Equal(t, int64(2), updated.Version)

	// Stale version: the insert and the recompute roll back together.
	another := line
	another.ID = uuid.NewString()
	_, err = orderDB.InsertLine(another, o.Version)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	got, err := orderDB.GetOrderByID(o.ID)
	assert.NoError(t, err)
	assert.Len(t, got.Lines, 3)
	assert.InDelta(t, 32.50, got.SumPrice, 1e-9)
}

func TestCancelledLineDropsOutOfSum(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	o := seedOrder(t, orderDB)

	cancelled := o.Lines[0]
	cancelled.Status = models.LineCancelled
	cancelled.UpdatedAt = time.Now().UTC()

	updated, err := orderDB.UpdateLine(cancelled, o.Version)
	assert.NoError(t, err)
	assert.InDelta(t, 3.25, updated.SumPrice, 1e-9)

	// The cancelled row stays on the order for history.
	assert.Len(t, updated.Lines, 2)
}

func TestUpdateMissingLine(t *testing.T) {
	orderDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	o := seedOrder(t, orderDB)

	ghost := models.OrderLine{
		ID:      "no-such-line",
		OrderID: o.ID,
		Status:  models.LineCancelled,
	}
	_, err := orderDB.UpdateLine(ghost, o.Version)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
