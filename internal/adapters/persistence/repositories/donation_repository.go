package repositories

import (
	"context"
	"time"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/core/domain"

	"gorm.io/gorm"
)

// donationRepository implements DonationRepository interface
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new scheduled donation repository
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

// Create creates a new scheduled donation
func (r *donationRepository) Create(ctx context.Context, donation *models.ScheduledDonation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

// GetByID gets a scheduled donation by ID
func (r *donationRepository) GetByID(ctx context.Context, id uint) (*models.ScheduledDonation, error) {
	var donation models.ScheduledDonation
	err := r.db.WithContext(ctx).
		Preload("Request").
		First(&donation, id).Error
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

// ListUpcoming gets a donor's scheduled donations, soonest first
func (r *donationRepository) ListUpcoming(ctx context.Context, donorID uint) ([]*models.ScheduledDonation, error) {
	var donations []*models.ScheduledDonation
	err := r.db.WithContext(ctx).
		Where("donor_id = ? AND status = ?", donorID, string(domain.DonationScheduled)).
		Order("scheduled_date ASC").
		Find(&donations).Error
	return donations, err
}

// ListByDate gets all donations scheduled for a given day
func (r *donationRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.ScheduledDonation, error) {
	var donations []*models.ScheduledDonation
	err := r.db.WithContext(ctx).
		Preload("Donor").
		Where("scheduled_date = ? AND status = ?", date.Format("2006-01-02"), string(domain.DonationScheduled)).
		Find(&donations).Error
	return donations, err
}

// UpdateStatus moves a donation between statuses with a conditional update
func (r *donationRepository) UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.ScheduledDonation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}
