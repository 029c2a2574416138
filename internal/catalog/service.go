package catalog

import (
	"time"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/models"
	"ms-restaurant/internal/policy"

	"github.com/google/uuid"
)

// Service guards catalog writes behind the policy; reads are open to any
// authenticated caller. The order service snapshots from GetFood at
// line-add time.
type Service struct {
	DB     *DB
	Policy *policy.Policy
}

func NewService(db *DB, pol *policy.Policy) *Service {
	return &Service{DB: db, Policy: pol}
}

func (s *Service) GetFood(foodID string) (*models.Food, error) {
	return s.DB.GetFood(foodID)
}

func (s *Service) ListFoods() ([]models.Food, error) {
	return s.DB.ListFoods()
}

func (s *Service) CreateFood(actor models.Actor, cmd models.UpsertFoodCommand) (*models.Food, error) {
	if err := s.Policy.Authorize(actor, policy.ActionManageCatalog, policy.Class()); err != nil {
		return nil, err
	}
	if err := validateFood(cmd); err != nil {
		return nil, err
	}
	f := models.Food{
		ID:          uuid.NewString(),
		Name:        cmd.Name,
		Description: cmd.Description,
		Price:       cmd.Price,
		Available:   cmd.Available,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.DB.InsertFood(f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Service) UpdateFood(actor models.Actor, foodID string, cmd models.UpsertFoodCommand) (*models.Food, error) {
	if err := s.Policy.Authorize(actor, policy.ActionManageCatalog, policy.Class()); err != nil {
		return nil, err
	}
	if err := validateFood(cmd); err != nil {
		return nil, err
	}
	f, err := s.DB.GetFood(foodID)
	if err != nil {
		return nil, err
	}
	f.Name = cmd.Name
	f.Description = cmd.Description
	f.Price = cmd.Price
	f.Available = cmd.Available
	f.UpdatedAt = time.Now().UTC()
	if err := s.DB.UpdateFood(*f); err != nil {
		return nil, err
	}
	return f, nil
}

func validateFood(cmd models.UpsertFoodCommand) error {
	if cmd.Name == "" {
		return apperr.InvalidArgument("food name is required")
	}
	if cmd.Price < 0 {
		return apperr.InvalidArgument("food price must not be negative")
	}
	return nil
}
