package repositories

import (
	"context"
	"time"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/core/domain"

	"gorm.io/gorm"
)

// requestRepository implements RequestRepository interface
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new blood request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create creates a new blood request
func (r *requestRepository) Create(ctx context.Context, request *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a blood request by ID with relations
func (r *requestRepository) GetByID(ctx context.Context, id uint) (*models.BloodRequest, error) {
	var request models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Donor").
		First(&request, id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByPatient gets a patient's requests, newest first
func (r *requestRepository) ListByPatient(ctx context.Context, patientID uint) ([]*models.BloodRequest, error) {
	var requests []*models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListMatching gets open requests matching a donor's blood group, newest first.
// "Open" means pending or accepted, mirroring what a donor's board shows.
func (r *requestRepository) ListMatching(ctx context.Context, bloodType string) ([]*models.BloodRequest, error) {
	var requests []*models.BloodRequest
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("blood_type = ? AND status IN ?", bloodType,
			[]string{string(domain.StatusPending), string(domain.StatusAccepted)}).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// List lists all requests with pagination, newest first
func (r *requestRepository) List(ctx context.Context, offset, limit int) ([]*models.BloodRequest, int64, error) {
	var requests []*models.BloodRequest
	var total int64

	r.db.WithContext(ctx).Model(&models.BloodRequest{}).Count(&total)

	err := r.db.WithContext(ctx).
		Preload("Patient").
		Preload("Donor").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&requests).Error

	return requests, total, err
}

// Transition moves a request from one status to another as a single
// conditional update. The WHERE clause carries the expected current status,
// so a concurrent transition on the same row makes this a no-op and the
// caller sees rowsAffected == 0 instead of a silently overwritten state.
func (r *requestRepository) Transition(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (bool, error) {
	values := map[string]interface{}{"status": to}
	for k, v := range updates {
		values[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)

	return res.RowsAffected > 0, res.Error
}

// ExpirePending cancels pending requests whose validity deadline has passed
func (r *requestRepository) ExpirePending(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("status = ? AND valid_until IS NOT NULL AND valid_until < ?",
			string(domain.StatusPending), before).
		Update("status", string(domain.StatusCancelled))
	return res.RowsAffected, res.Error
}

// CreateEvent appends a lifecycle audit row
func (r *requestRepository) CreateEvent(ctx context.Context, event *models.RequestEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListEvents gets the audit history for a request, oldest first
func (r *requestRepository) ListEvents(ctx context.Context, requestID uint) ([]*models.RequestEvent, error) {
	var events []*models.RequestEvent
	err := r.db.WithContext(ctx).
		Preload("Performer").
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&events).Error
	return events, err
}
