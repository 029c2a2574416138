package reservation

import (
	"fmt"
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/policy"

	"github.com/google/uuid"
)

type DBLayer interface {
	GetReservationByID(id string) (*models.Reservation, error)
	ListReservationsByUser(userID string) ([]models.Reservation, error)
	CreateReservation(res models.Reservation) error
	UpdateStatusGuard(id string, from, to models.ReservationStatus) error
}

// TableLock is the redis hold that keeps two users from booking the same
// table slot at once.
type TableLock interface {
	HoldTable(tableID string, slot time.Time, reservationID string) (bool, error)
	ReleaseTable(tableID string, slot time.Time, reservationID string) error
}

type TableDirectory interface {
	Exists(tableID string) (bool, error)
}

type Publisher interface {
	PublishReservationChanged(res models.Reservation) error
}

type Service struct {
	DB     DBLayer
	Lock   TableLock
	Tables TableDirectory
	Kafka  Publisher
	Policy *policy.Policy
	Log    *logger.Logger
}

func NewService(db DBLayer, lock TableLock, tables TableDirectory, kafka Publisher, pol *policy.Policy, log *logger.Logger) *Service {
	return &Service{DB: db, Lock: lock, Tables: tables, Kafka: kafka, Policy: pol, Log: log}
}

// Create books a table slot for the acting user. The redis hold is taken
// before the row is written and released again if the write fails.
func (s *Service) Create(actor models.Actor, cmd models.CreateReservationCommand) (*models.Reservation, error) {
	if err := s.Policy.Authorize(actor, policy.ActionCreateReservation, policy.Owned(actor.ID)); err != nil {
		return nil, err
	}
	if cmd.TableID == "" {
		return nil, apperr.InvalidArgument("table_id is required")
	}
	if cmd.AppointmentTime.Before(time.Now()) {
		return nil, apperr.InvalidArgument("appointment_time must be in the future")
	}

	exists, err := s.Tables.Exists(cmd.TableID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound(fmt.Sprintf("table %s not found", cmd.TableID))
	}

	res := models.Reservation{
		ID:              uuid.NewString(),
		UserID:          actor.ID,
		TableID:         cmd.TableID,
		AppointmentTime: cmd.AppointmentTime.UTC(),
		Status:          models.ReservationPending,
		CreatedAt:       time.Now().UTC(),
	}

	ok, err := s.Lock.HoldTable(res.TableID, res.AppointmentTime, res.ID)
	if err != nil {
		return nil, apperr.Internal("table hold", err)
	}
	if !ok {
		return nil, apperr.Conflict(fmt.Sprintf("table %s is already being booked for that slot", res.TableID))
	}

	if err := s.DB.CreateReservation(res); err != nil {
		// Roll the hold back so the slot frees up immediately.
		_ = s.Lock.ReleaseTable(res.TableID, res.AppointmentTime, res.ID)
		return nil, err
	}

	if err := s.Kafka.PublishReservationChanged(res); err != nil {
		s.Log.LogKafka("PUBLISH", "reservation_changed", fmt.Sprintf("failed for reservation %s: %v", res.ID, err))
	}
	s.Log.LogReservation("CREATE", res.ID, fmt.Sprintf("user=%s table=%s at=%s", res.UserID, res.TableID, res.AppointmentTime))
	return &res, nil
}

func (s *Service) Get(actor models.Actor, id string) (*models.Reservation, error) {
	res, err := s.DB.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Authorize(actor, policy.ActionMutateReservation, policy.Owned(res.UserID)); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) ListByUser(actor models.Actor, targetUserID string) ([]models.Reservation, error) {
	if err := s.Policy.Authorize(actor, policy.ActionMutateReservation, policy.Owned(targetUserID)); err != nil {
		return nil, err
	}
	return s.DB.ListReservationsByUser(targetUserID)
}

// Confirm is a staff decision: PENDING → CONFIRMED.
func (s *Service) Confirm(actor models.Actor, id string) (*models.Reservation, error) {
	if !actor.Role.Elevated() {
		return nil, apperr.Forbidden("confirming a reservation requires an elevated role")
	}
	return s.moveStatus(actor, id, models.ReservationPending, models.ReservationConfirmed)
}

// Cancel is allowed for the owner or staff, from any non-terminal status.
func (s *Service) Cancel(actor models.Actor, id string) (*models.Reservation, error) {
	res, err := s.DB.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.Policy.Authorize(actor, policy.ActionMutateReservation, policy.Owned(res.UserID)); err != nil {
		return nil, err
	}
	if res.Status.Terminal() {
		return nil, apperr.InvalidTransition(fmt.Sprintf("reservation %s is %s and accepts no further transitions", id, res.Status))
	}
	if err := s.DB.UpdateStatusGuard(id, res.Status, models.ReservationCancelled); err != nil {
		return nil, err
	}
	res.Status = models.ReservationCancelled

	// Free the slot for someone else.
	if err := s.Lock.ReleaseTable(res.TableID, res.AppointmentTime, res.ID); err != nil {
		s.Log.LogReservation("CANCEL", res.ID, fmt.Sprintf("failed to release table hold: %v", err))
	}
	if err := s.Kafka.PublishReservationChanged(*res); err != nil {
		s.Log.LogKafka("PUBLISH", "reservation_changed", fmt.Sprintf("failed for reservation %s: %v", res.ID, err))
	}
	return res, nil
}

func (s *Service) moveStatus(actor models.Actor, id string, from, to models.ReservationStatus) (*models.Reservation, error) {
	res, err := s.DB.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	if res.Status.Terminal() {
		return nil, apperr.InvalidTransition(fmt.Sprintf("reservation %s is %s and accepts no further transitions", id, res.Status))
	}
	if res.Status != from {
		return nil, apperr.InvalidTransition(fmt.Sprintf("reservation %s: %s -> %s is not a legal transition", id, res.Status, to))
	}
	if err := s.DB.UpdateStatusGuard(id, from, to); err != nil {
		return nil, err
	}
	res.Status = to

	if err := s.Kafka.PublishReservationChanged(*res); err != nil {
		s.Log.LogKafka("PUBLISH", "reservation_changed", fmt.Sprintf("failed for reservation %s: %v", res.ID, err))
	}
	s.Log.LogReservation("STATUS", res.ID, fmt.Sprintf("-> %s by %s", to, actor.ID))
	return res, nil
}
