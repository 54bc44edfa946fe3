package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/adapters/persistence/repositories"
	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/pkg/bloodtype"
	"lifelink-api/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrWrongPassword = errors.New("current password is incorrect")
)

// UserService handles user profile and admin business logic
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// UpdateProfileInput represents update profile input
type UpdateProfileInput struct {
	FullName     string `json:"full_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	BloodGroup   string `json:"blood_group,omitempty"`
	HospitalName string `json:"hospital_name,omitempty"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// GetProfile returns the user's own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates the user's own profile fields. Username, email and
// role are immutable here.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.User, error) {
	if input.BloodGroup != "" && !bloodtype.IsValid(input.BloodGroup) {
		return nil, domain.ErrInvalidBloodType
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if input.FullName != "" {
		user.FullName = input.FullName
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.BloodGroup != "" {
		user.BloodGroup = input.BloodGroup
	}
	if input.HospitalName != "" && user.Role == string(domain.RoleHospital) {
		user.HospitalName = input.HospitalName
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword changes the user's password and revokes all sessions
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if !password.Verify(input.CurrentPassword, user.Password) {
		return ErrWrongPassword
	}
	if !password.Validate(input.NewPassword) {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, password.MinLength)
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Password change invalidates every open session
	if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, userID); err != nil {
		log.Printf("⚠️ Failed to revoke sessions for user %d: %v", userID, err)
	}

	log.Printf("✅ Password changed for user ID: %d", userID)
	return nil
}

// GetByID returns a user by ID (admin)
func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// List returns users with pagination (admin)
func (s *UserService) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, offset, limit)
}

// SetActive activates or deactivates a user account (admin)
func (s *UserService) SetActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = active
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if !active {
		if err := s.refreshTokenRepo.RevokeAllByUserID(ctx, id); err != nil {
			log.Printf("⚠️ Failed to revoke sessions for user %d: %v", id, err)
		}
	}

	return user, nil
}

// Delete soft-deletes a user account (admin)
func (s *UserService) Delete(ctx context.Context, id uint) error {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}
	return s.userRepo.Delete(ctx, id)
}

// SearchDonors finds active donors, optionally filtered by blood group and a
// free-text query against name or phone
func (s *UserService) SearchDonors(ctx context.Context, bloodGroup, query string, limit int) ([]*models.User, error) {
	if bloodGroup != "" && !bloodtype.IsValid(bloodGroup) {
		return nil, domain.ErrInvalidBloodType
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.userRepo.SearchDonors(ctx, bloodGroup, query, limit)
}
