package reservation_test

import (
	"fmt"
	"testing"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/policy"
	"ms-restaurant/internal/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	staff = models.Actor{ID: "staff1", Role: models.RoleStaff}
	owner = models.Actor{ID: "user1", Role: models.RoleUser}
	other = models.Actor{ID: "user2", Role: models.RoleUser}
)

// Mock implementations for testing

type MockReservationDB struct {
	reservations map[string]*models.Reservation
	createErr    error
}

func NewMockReservationDB() *MockReservationDB {
	return &MockReservationDB{reservations: make(map[string]*models.Reservation)}
}

func (m *MockReservationDB) GetReservationByID(id string) (*models.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return nil, apperr.NotFound(fmt.Sprintf("reservation %s not found", id))
	}
	cp := *res
	return &cp, nil
}

func (m *MockReservationDB) ListReservationsByUser(userID string) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, res := range m.reservations {
		if res.UserID == userID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *MockReservationDB) CreateReservation(res models.Reservation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.reservations[res.ID] = &res
	return nil
}

func (m *MockReservationDB) UpdateStatusGuard(id string, from, to models.ReservationStatus) error {
	res, ok := m.reservations[id]
	if !ok {
		return apperr.NotFound(fmt.Sprintf("reservation %s not found", id))
	}
	if res.Status != from {
		return apperr.Conflict(fmt.Sprintf("reservation %s moved to %s concurrently", id, res.Status))
	}
	res.Status = to
	return nil
}

type MockLock struct {
	holds map[string]string
}

func NewMockLock() *MockLock {
	return &MockLock{holds: make(map[string]string)}
}

func lockKey(tableID string, slot time.Time) string {
	return tableID + "@" + slot.UTC().Truncate(time.Hour).Format(time.RFC3339)
}

func (m *MockLock) HoldTable(tableID string, slot time.Time, reservationID string) (bool, error) {
	key := lockKey(tableID, slot)
	if _, held := m.holds[key]; held {
		return false, nil
	}
	m.holds[key] = reservationID
	return true, nil
}

func (m *MockLock) ReleaseTable(tableID string, slot time.Time, reservationID string) error {
	key := lockKey(tableID, slot)
	if m.holds[key] == reservationID {
		delete(m.holds, key)
	}
	return nil
}

type MockTables struct {
	tables map[string]bool
}

func (m *MockTables) Exists(tableID string) (bool, error) {
	return m.tables[tableID], nil
}

type MockPublisher struct {
	published int
}

func (m *MockPublisher) PublishReservationChanged(models.Reservation) error {
	m.published++
	return nil
}

func newTestService() (*reservation.Service, *MockReservationDB, *MockLock, *MockPublisher) {
	db := NewMockReservationDB()
	lock := NewMockLock()
	pub := &MockPublisher{}
	tables := &MockTables{tables: map[string]bool{"table-1": true, "table-2": true}}
	svc := reservation.NewService(db, lock, tables, pub, policy.New(), logger.NewLogger())
	return svc, db, lock, pub
}

func futureSlot() time.Time {
	return time.Now().Add(24 * time.Hour).Truncate(time.Hour)
}

func TestCreateReservation(t *testing.T) {
	svc, _, _, pub := newTestService()

	res, err := svc.Create(owner, models.CreateReservationCommand{
		TableID:         "table-1",
		AppointmentTime: futureSlot(),
	})
	require.NoError(t, err)
	assert.Equal(t, "user1", res.UserID)
	assert.Equal(t, models.ReservationPending, res.Status)
	assert.Equal(t, 1, pub.published)
}

func TestCreateReservationValidation(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(owner, models.CreateReservationCommand{AppointmentTime: futureSlot()})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err), "missing table")

	_, err = svc.Create(owner, models.CreateReservationCommand{
		TableID:         "table-1",
		AppointmentTime: time.Now().Add(-time.Hour),
	})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err), "slot in the past")

	_, err = svc.Create(owner, models.CreateReservationCommand{
		TableID:         "no-such-table",
		AppointmentTime: futureSlot(),
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCreateReservationDoubleBookingConflicts(t *testing.T) {
	svc, _, _, _ := newTestService()
	slot := futureSlot()

	_, err := svc.Create(owner, models.CreateReservationCommand{TableID: "table-1", AppointmentTime: slot})
	require.NoError(t, err)

	_, err = svc.Create(other, models.CreateReservationCommand{TableID: "table-1", AppointmentTime: slot})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// A different table at the same slot is fine.
	_, err = svc.Create(other, models.CreateReservationCommand{TableID: "table-2", AppointmentTime: slot})
	assert.NoError(t, err)
}

func TestCreateReleasesHoldWhenWriteFails(t *testing.T) {
	svc, db, lock, _ := newTestService()
	slot := futureSlot()

	db.createErr = apperr.Internal("insert reservation", nil)
	_, err := svc.Create(owner, models.CreateReservationCommand{TableID: "table-1", AppointmentTime: slot})
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Empty(t, lock.holds, "failed write must roll the hold back")

	db.createErr = nil
	_, err = svc.Create(other, models.CreateReservationCommand{TableID: "table-1", AppointmentTime: slot})
	assert.NoError(t, err)
}

func TestConfirmRequiresElevatedRole(t *testing.T) {
	svc, _, _, _ := newTestService()

	res, err := svc.Create(owner, models.CreateReservationCommand{TableID: "table-1", AppointmentTime: futureSlot()})
	require.NoError(t, err)

	_, err = svc.Confirm(owner, res.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	confirmed, err := svc.Confirm(staff, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationConfirmed, confirmed.Status)

	// Confirming twice is an invalid transition, not a silent success.
	_, err = svc.Confirm(staff, res.ID)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestCancelOwnerAndStranger(t *testing.T) {
	svc, _, lock, _ := newTestService()

	res, err := svc.Create(owner, models.CreateReservationCommand{TableID: "table-1", AppointmentTime: futureSlot()})
	require.NoError(t, err)

	_, err = svc.Cancel(other, res.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	cancelled, err := svc.Cancel(owner, res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReservationCancelled, cancelled.Status)
	assert.Empty(t, lock.holds, "cancelling frees the table slot")

	// A terminal reservation rejects further cancels.
	_, err = svc.Cancel(owner, res.ID)
	assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
}

func TestListByUser(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(owner, models.CreateReservationCommand{TableID: "table-1", AppointmentTime: futureSlot()})
	require.NoError(t, err)

	list, err := svc.ListByUser(owner, "user1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListByUser(other, "user1")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	list, err = svc.ListByUser(staff, "user1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
