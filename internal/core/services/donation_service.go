package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/adapters/persistence/repositories"
	"lifelink-api/internal/core/domain"

	"gorm.io/gorm"
)

// DonationService handles scheduled donation business logic
type DonationService struct {
	donationRepo repositories.DonationRepository
	requestRepo  repositories.RequestRepository
	feed         *ChangeFeed
}

// NewDonationService creates a new donation service
func NewDonationService(
	donationRepo repositories.DonationRepository,
	requestRepo repositories.RequestRepository,
	feed *ChangeFeed,
) *DonationService {
	return &DonationService{
		donationRepo: donationRepo,
		requestRepo:  requestRepo,
		feed:         feed,
	}
}

// ScheduleInput represents schedule donation input
type ScheduleInput struct {
	ScheduledDate string `json:"scheduled_date" validate:"required"` // YYYY-MM-DD
	RequestID     *uint  `json:"request_id,omitempty"`
}

// Schedule books a donation appointment for the donor. Dates compare at day
// granularity in local time: today is accepted, yesterday is not.
func (s *DonationService) Schedule(ctx context.Context, donorID uint, input *ScheduleInput) (*models.ScheduledDonation, error) {
	date, err := time.ParseInLocation("2006-01-02", input.ScheduledDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled_date must be YYYY-MM-DD", domain.ErrValidation)
	}

	today := truncateToDate(time.Now())
	if date.Before(today) {
		return nil, domain.ErrPastDate
	}

	if input.RequestID != nil {
		if _, err := s.requestRepo.GetByID(ctx, *input.RequestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrRequestNotFound
			}
			return nil, err
		}
	}

	donation := &models.ScheduledDonation{
		DonorID:       donorID,
		RequestID:     input.RequestID,
		ScheduledDate: date,
		Status:        string(domain.DonationScheduled),
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, err
	}

	s.feed.Publish(CollectionDonations, donation.ID, "created")

	return donation, nil
}

// ListUpcoming returns the donor's scheduled donations, soonest first.
// Cancelled and completed appointments are excluded.
func (s *DonationService) ListUpcoming(ctx context.Context, donorID uint) ([]*models.ScheduledDonation, error) {
	return s.donationRepo.ListUpcoming(ctx, donorID)
}

// Complete marks a scheduled donation as done. Only the owning donor may
// complete it.
func (s *DonationService) Complete(ctx context.Context, id, donorID uint) (*models.ScheduledDonation, error) {
	return s.close(ctx, id, donorID, domain.DonationCompleted)
}

// Cancel withdraws a scheduled donation. Only the owning donor may cancel it.
func (s *DonationService) Cancel(ctx context.Context, id, donorID uint) (*models.ScheduledDonation, error) {
	return s.close(ctx, id, donorID, domain.DonationCancelled)
}

func (s *DonationService) close(ctx context.Context, id, donorID uint, to domain.DonationStatus) (*models.ScheduledDonation, error) {
	donation, err := s.donationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDonationNotFound
		}
		return nil, err
	}

	if donation.DonorID != donorID {
		return nil, domain.ErrForbidden
	}

	moved, err := s.donationRepo.UpdateStatus(ctx, id, string(domain.DonationScheduled), string(to))
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: donation %d is no longer scheduled", domain.ErrInvalidTransition, id)
	}

	s.feed.Publish(CollectionDonations, id, "updated")

	return s.donationRepo.GetByID(ctx, id)
}
