package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/adapters/persistence/repositories"
	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/pkg/bloodtype"

	"gorm.io/gorm"
)

// InventoryService handles hospital blood stock business logic
type InventoryService struct {
	inventoryRepo repositories.InventoryRepository
	feed          *ChangeFeed
}

// NewInventoryService creates a new inventory service
func NewInventoryService(inventoryRepo repositories.InventoryRepository, feed *ChangeFeed) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		feed:          feed,
	}
}

// AdjustInput represents a relative stock adjustment
type AdjustInput struct {
	BloodType string `json:"blood_type" validate:"required"`
	Delta     int    `json:"delta" validate:"required"`
}

// SetInput represents an absolute stock correction
type SetInput struct {
	BloodType string `json:"blood_type" validate:"required"`
	Units     int    `json:"units"`
}

// Adjust applies a signed delta to the hospital's stock of one blood type.
// The entry is created at zero on first touch. The delta is applied as one
// atomic conditional update: if it would drive the count negative, nothing
// changes and ErrInsufficientStock is returned.
func (s *InventoryService) Adjust(ctx context.Context, hospitalID uint, input *AdjustInput) (*models.HospitalInventory, error) {
	if !bloodtype.IsValid(input.BloodType) {
		return nil, domain.ErrInvalidBloodType
	}

	if err := s.inventoryRepo.EnsureEntry(ctx, hospitalID, input.BloodType); err != nil {
		return nil, err
	}

	applied, err := s.inventoryRepo.AdjustUnits(ctx, hospitalID, input.BloodType, input.Delta)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: cannot remove %d units of %s", domain.ErrInsufficientStock, -input.Delta, input.BloodType)
	}

	entry, err := s.inventoryRepo.Get(ctx, hospitalID, input.BloodType)
	if err != nil {
		return nil, err
	}

	s.feed.Publish(CollectionInventory, entry.ID, "updated")

	return entry, nil
}

// Set overwrites the hospital's stock of one blood type with an absolute
// count. Used for stocktake corrections; negative counts are rejected.
func (s *InventoryService) Set(ctx context.Context, hospitalID uint, input *SetInput) (*models.HospitalInventory, error) {
	if !bloodtype.IsValid(input.BloodType) {
		return nil, domain.ErrInvalidBloodType
	}
	if input.Units < 0 {
		return nil, domain.ErrNegativeUnits
	}

	if err := s.inventoryRepo.SetUnits(ctx, hospitalID, input.BloodType, input.Units); err != nil {
		return nil, err
	}

	entry, err := s.inventoryRepo.Get(ctx, hospitalID, input.BloodType)
	if err != nil {
		return nil, err
	}

	s.feed.Publish(CollectionInventory, entry.ID, "updated")

	return entry, nil
}

// Get returns the stock entry for one blood type at one hospital
func (s *InventoryService) Get(ctx context.Context, hospitalID uint, bloodType string) (*models.HospitalInventory, error) {
	if !bloodtype.IsValid(bloodType) {
		return nil, domain.ErrInvalidBloodType
	}

	entry, err := s.inventoryRepo.Get(ctx, hospitalID, bloodType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, err
	}
	return entry, nil
}

// ListForHospital returns every stock entry the hospital has touched,
// ordered by blood type
func (s *InventoryService) ListForHospital(ctx context.Context, hospitalID uint) ([]*models.HospitalInventory, error) {
	entries, err := s.inventoryRepo.ListByHospital(ctx, hospitalID)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return bloodtype.SortOrder(entries[i].BloodType) < bloodtype.SortOrder(entries[j].BloodType)
	})

	return entries, nil
}
