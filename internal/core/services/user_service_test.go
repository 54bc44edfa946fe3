package services

import (
	"context"
	"testing"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/pkg/password"

	"github.com/stretchr/testify/assert"
)

func TestUserUpdateProfile(t *testing.T) {
	donor := testDonor()
	userRepo := userRepoWith(donor)
	userRepo.UpdateFn = func(ctx context.Context, user *models.User) error { return nil }
	svc := NewUserService(userRepo, &mockRefreshTokenRepo{})

	updated, err := svc.UpdateProfile(context.Background(), 2, &UpdateProfileInput{
		FullName:   "Bob Donor",
		Phone:      "0812345678",
		BloodGroup: "O-",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Bob Donor", updated.FullName)
	assert.Equal(t, "0812345678", updated.Phone)
	assert.Equal(t, "O-", updated.BloodGroup)
}

func TestUserUpdateProfileInvalidBloodGroup(t *testing.T) {
	svc := NewUserService(userRepoWith(testDonor()), &mockRefreshTokenRepo{})

	_, err := svc.UpdateProfile(context.Background(), 2, &UpdateProfileInput{BloodGroup: "Q+"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUserUpdateProfileHospitalNameOnlyForHospitals(t *testing.T) {
	donor := testDonor()
	userRepo := userRepoWith(donor)
	userRepo.UpdateFn = func(ctx context.Context, user *models.User) error { return nil }
	svc := NewUserService(userRepo, &mockRefreshTokenRepo{})

	updated, err := svc.UpdateProfile(context.Background(), 2, &UpdateProfileInput{HospitalName: "General"})
	assert.NoError(t, err)
	assert.Empty(t, updated.HospitalName)
}

func TestUserChangePassword(t *testing.T) {
	hashed, err := password.Hash("old-password")
	assert.NoError(t, err)

	user := &models.User{ID: 1, Username: "alice", Password: hashed}
	userRepo := userRepoWith(user)
	userRepo.UpdateFn = func(ctx context.Context, u *models.User) error { return nil }
	tokenRepo := &mockRefreshTokenRepo{}
	svc := NewUserService(userRepo, tokenRepo)
	ctx := context.Background()

	err = svc.ChangePassword(ctx, 1, &ChangePasswordInput{
		CurrentPassword: "wrong",
		NewPassword:     "new-password",
	})
	assert.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(ctx, 1, &ChangePasswordInput{
		CurrentPassword: "old-password",
		NewPassword:     "new-password",
	})
	assert.NoError(t, err)
	assert.True(t, password.Verify("new-password", user.Password))
	// All sessions revoked after a password change
	assert.EqualValues(t, 1, tokenRepo.revokeAllCalls)
}

func TestUserSetActiveRevokesSessions(t *testing.T) {
	user := &models.User{ID: 1, Username: "alice", IsActive: true}
	userRepo := userRepoWith(user)
	userRepo.UpdateFn = func(ctx context.Context, u *models.User) error { return nil }
	tokenRepo := &mockRefreshTokenRepo{}
	svc := NewUserService(userRepo, tokenRepo)

	updated, err := svc.SetActive(context.Background(), 1, false)
	assert.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.EqualValues(t, 1, tokenRepo.revokeAllCalls)
}

func TestUserSearchDonorsValidation(t *testing.T) {
	userRepo := userRepoWith()
	userRepo.SearchDonorsFn = func(ctx context.Context, bloodGroup, query string, limit int) ([]*models.User, error) {
		assert.Equal(t, 20, limit)
		return []*models.User{testDonor()}, nil
	}
	svc := NewUserService(userRepo, &mockRefreshTokenRepo{})
	ctx := context.Background()

	_, err := svc.SearchDonors(ctx, "Q-", "", 10)
	assert.ErrorIs(t, err, domain.ErrValidation)

	// Out-of-range limit falls back to the default
	donors, err := svc.SearchDonors(ctx, "A+", "bob", 0)
	assert.NoError(t, err)
	assert.Len(t, donors, 1)
}
