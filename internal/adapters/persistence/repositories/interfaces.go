package repositories

import (
	"context"
	"time"

	"lifelink-api/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	SearchDonors(ctx context.Context, bloodGroup, query string, limit int) ([]*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// RequestRepository defines blood request repository interface.
// Transition is the only mutation path for status changes: it performs a
// conditional update keyed on the expected current status and reports whether
// the row was actually moved, so callers can distinguish a lost race from
// success without ever overwriting a concurrent transition.
type RequestRepository interface {
	Create(ctx context.Context, request *models.BloodRequest) error
	GetByID(ctx context.Context, id uint) (*models.BloodRequest, error)
	ListByPatient(ctx context.Context, patientID uint) ([]*models.BloodRequest, error)
	ListMatching(ctx context.Context, bloodType string) ([]*models.BloodRequest, error)
	List(ctx context.Context, offset, limit int) ([]*models.BloodRequest, int64, error)
	Transition(ctx context.Context, id uint, from, to string, updates map[string]interface{}) (bool, error)
	ExpirePending(ctx context.Context, before time.Time) (int64, error)
	CreateEvent(ctx context.Context, event *models.RequestEvent) error
	ListEvents(ctx context.Context, requestID uint) ([]*models.RequestEvent, error)
}

// InventoryRepository defines hospital inventory repository interface.
// AdjustUnits must apply the delta as a single atomic relative update that
// refuses to drive the count negative; concurrent deltas on one
// (hospital, blood type) key serialize in the store.
type InventoryRepository interface {
	EnsureEntry(ctx context.Context, hospitalID uint, bloodType string) error
	AdjustUnits(ctx context.Context, hospitalID uint, bloodType string, delta int) (bool, error)
	SetUnits(ctx context.Context, hospitalID uint, bloodType string, units int) error
	Get(ctx context.Context, hospitalID uint, bloodType string) (*models.HospitalInventory, error)
	ListByHospital(ctx context.Context, hospitalID uint) ([]*models.HospitalInventory, error)
}

// DonationRepository defines scheduled donation repository interface
type DonationRepository interface {
	Create(ctx context.Context, donation *models.ScheduledDonation) error
	GetByID(ctx context.Context, id uint) (*models.ScheduledDonation, error)
	ListUpcoming(ctx context.Context, donorID uint) ([]*models.ScheduledDonation, error)
	ListByDate(ctx context.Context, date time.Time) ([]*models.ScheduledDonation, error)
	UpdateStatus(ctx context.Context, id uint, from, to string) (bool, error)
}

// MessageRepository defines message repository interface
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	Conversation(ctx context.Context, userID, partnerID uint) ([]*models.Message, error)
	MarkRead(ctx context.Context, userID, partnerID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}
