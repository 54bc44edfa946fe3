package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/adapters/persistence/repositories"
	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/pkg/bloodtype"

	"gorm.io/gorm"
)

// RequestService handles blood request lifecycle business logic
type RequestService struct {
	requestRepo  repositories.RequestRepository
	userRepo     repositories.UserRepository
	donationRepo repositories.DonationRepository
	notify       *NotificationService
	feed         *ChangeFeed
}

// NewRequestService creates a new request service
func NewRequestService(
	requestRepo repositories.RequestRepository,
	userRepo repositories.UserRepository,
	donationRepo repositories.DonationRepository,
	notify *NotificationService,
	feed *ChangeFeed,
) *RequestService {
	return &RequestService{
		requestRepo:  requestRepo,
		userRepo:     userRepo,
		donationRepo: donationRepo,
		notify:       notify,
		feed:         feed,
	}
}

// CreateRequestInput represents create blood request input
type CreateRequestInput struct {
	BloodType  string `json:"blood_type" validate:"required"`
	Kind       string `json:"kind,omitempty"`
	Notes      string `json:"notes,omitempty"`
	ValidUntil string `json:"valid_until,omitempty"` // YYYY-MM-DD
}

// AcceptRequestInput represents a donor committing to a request
type AcceptRequestInput struct {
	ScheduledDate string `json:"scheduled_date,omitempty"` // YYYY-MM-DD
}

// Create creates a new pending blood request for the patient
func (s *RequestService) Create(ctx context.Context, patientID uint, input *CreateRequestInput) (*models.BloodRequest, error) {
	if !bloodtype.IsValid(input.BloodType) {
		return nil, domain.ErrInvalidBloodType
	}

	kind := input.Kind
	if kind == "" {
		kind = string(domain.KindNormal)
	}
	if !domain.IsValidKind(kind) {
		return nil, domain.ErrInvalidKind
	}

	var validUntil *time.Time
	if input.ValidUntil != "" {
		parsed, err := time.ParseInLocation("2006-01-02", input.ValidUntil, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: valid_until must be YYYY-MM-DD", domain.ErrValidation)
		}
		today := truncateToDate(time.Now())
		if parsed.Before(today) {
			return nil, domain.ErrPastDate
		}
		validUntil = &parsed
	}

	patient, err := s.userRepo.GetByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	request := &models.BloodRequest{
		PatientID:  patientID,
		BloodType:  input.BloodType,
		Kind:       kind,
		Status:     string(domain.StatusPending),
		Notes:      input.Notes,
		ValidUntil: validUntil,
	}

	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.recordEvent(ctx, request.ID, "", string(domain.StatusPending), "request created", patientID)
	s.feed.Publish(CollectionRequests, request.ID, "created")

	go s.notify.NotifyNewRequest(request, patient.FullName)

	request.Patient = patient
	return request, nil
}

// GetByID returns a single request with patient and donor loaded
func (s *RequestService) GetByID(ctx context.Context, id uint) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return request, nil
}

// ListForPatient returns all of the patient's own requests, newest first
func (s *RequestService) ListForPatient(ctx context.Context, patientID uint) ([]*models.BloodRequest, error) {
	return s.requestRepo.ListByPatient(ctx, patientID)
}

// ListForDonor returns open requests matching the donor's blood group.
// A donor without a recorded blood group sees every open request.
func (s *RequestService) ListForDonor(ctx context.Context, donorID uint) ([]*models.BloodRequest, error) {
	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return s.requestRepo.ListMatching(ctx, donor.BloodGroup)
}

// ListAll returns every request across all patients, paginated
func (s *RequestService) ListAll(ctx context.Context, offset, limit int) ([]*models.BloodRequest, int64, error) {
	return s.requestRepo.List(ctx, offset, limit)
}

// Accept moves a pending request to accepted and records the donor. The
// status check and the write are one conditional update, so two donors racing
// on the same request resolve to exactly one winner; the loser gets
// ErrInvalidTransition and the stored row is untouched.
func (s *RequestService) Accept(ctx context.Context, id, donorID uint, input *AcceptRequestInput) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	if !domain.CanTransition(domain.RequestStatus(request.Status), domain.StatusAccepted) {
		return nil, fmt.Errorf("%w: cannot accept request in status %s", domain.ErrInvalidTransition, request.Status)
	}

	if input == nil || input.ScheduledDate == "" {
		return nil, fmt.Errorf("%w: scheduled_date is required", domain.ErrValidation)
	}
	scheduledDate, err := time.ParseInLocation("2006-01-02", input.ScheduledDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduled_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if scheduledDate.Before(truncateToDate(time.Now())) {
		return nil, domain.ErrPastDate
	}

	donor, err := s.userRepo.GetByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"donor_id":       donorID,
		"scheduled_date": &scheduledDate,
	}

	moved, err := s.requestRepo.Transition(ctx, id, string(domain.StatusPending), string(domain.StatusAccepted), updates)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: request %d is no longer pending", domain.ErrInvalidTransition, id)
	}

	s.recordEvent(ctx, id, string(domain.StatusPending), string(domain.StatusAccepted), "accepted by donor", donorID)
	s.feed.Publish(CollectionRequests, id, "updated")

	// Book the donation slot after the transition commits. If this write
	// fails the accept stands; the donor can schedule again from the
	// donations endpoint.
	donation := &models.ScheduledDonation{
		DonorID:       donorID,
		RequestID:     &id,
		ScheduledDate: scheduledDate,
		Status:        string(domain.DonationScheduled),
	}
	if err := s.donationRepo.Create(ctx, donation); err != nil {
		log.Printf("⚠️ Failed to book donation for request %d: %v", id, err)
	} else {
		s.feed.Publish(CollectionDonations, donation.ID, "created")
	}

	updated, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go s.notify.NotifyRequestAccepted(updated, donor.FullName)

	return updated, nil
}

// Complete moves an accepted request to completed. Only the committed donor,
// the patient, or staff may complete; the handler enforces who calls this.
func (s *RequestService) Complete(ctx context.Context, id, performedBy uint) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	if !domain.CanTransition(domain.RequestStatus(request.Status), domain.StatusCompleted) {
		return nil, fmt.Errorf("%w: cannot complete request in status %s", domain.ErrInvalidTransition, request.Status)
	}

	moved, err := s.requestRepo.Transition(ctx, id, string(domain.StatusAccepted), string(domain.StatusCompleted), nil)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: request %d is no longer accepted", domain.ErrInvalidTransition, id)
	}

	s.recordEvent(ctx, id, string(domain.StatusAccepted), string(domain.StatusCompleted), "donation completed", performedBy)
	s.feed.Publish(CollectionRequests, id, "updated")

	updated, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go s.notify.NotifyRequestCompleted(updated)

	return updated, nil
}

// Cancel moves a pending or accepted request to cancelled. Completed and
// cancelled requests stay as they are.
func (s *RequestService) Cancel(ctx context.Context, id, performedBy uint, reason string) (*models.BloodRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	from := domain.RequestStatus(request.Status)
	if !domain.CanTransition(from, domain.StatusCancelled) {
		return nil, fmt.Errorf("%w: cannot cancel request in status %s", domain.ErrInvalidTransition, request.Status)
	}

	moved, err := s.requestRepo.Transition(ctx, id, string(from), string(domain.StatusCancelled), nil)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, fmt.Errorf("%w: request %d already moved from %s", domain.ErrInvalidTransition, id, from)
	}

	note := "cancelled"
	if reason != "" {
		note = "cancelled: " + reason
	}
	s.recordEvent(ctx, id, string(from), string(domain.StatusCancelled), note, performedBy)
	s.feed.Publish(CollectionRequests, id, "updated")

	return s.requestRepo.GetByID(ctx, id)
}

// History returns the transition audit trail for a request, oldest first
func (s *RequestService) History(ctx context.Context, id uint) ([]*models.RequestEvent, error) {
	if _, err := s.requestRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return s.requestRepo.ListEvents(ctx, id)
}

// recordEvent appends a row to the audit trail. Best effort: a failed audit
// write is logged, not surfaced, because the transition already committed.
func (s *RequestService) recordEvent(ctx context.Context, requestID uint, from, to, note string, performedBy uint) {
	event := &models.RequestEvent{
		RequestID:   requestID,
		FromStatus:  from,
		ToStatus:    to,
		Note:        note,
		PerformedBy: performedBy,
	}
	if err := s.requestRepo.CreateEvent(ctx, event); err != nil {
		log.Printf("⚠️ Failed to record event for request %d: %v", requestID, err)
	}
}

// truncateToDate drops the time-of-day component in local time
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
