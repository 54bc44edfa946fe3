package services

import (
	"context"
	"testing"

	"lifelink-api/internal/adapters/persistence/models"
	"lifelink-api/internal/config"
	"lifelink-api/internal/core/domain"
	"lifelink-api/internal/pkg/password"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func testAuthConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  15,
			RefreshTokenDays: 7,
		},
	}
}

func registerInput() *RegisterInput {
	return &RegisterInput{
		Username:   "alice",
		Email:      "alice@example.com",
		Password:   "correct-horse",
		Role:       "PATIENT",
		FullName:   "Alice P",
		BloodGroup: "A+",
	}
}

func newAuthServiceForTest(userRepo *mockUserRepo) (*AuthService, *mockRefreshTokenRepo) {
	tokenRepo := &mockRefreshTokenRepo{}
	return NewAuthService(userRepo, tokenRepo, testAuthConfig()), tokenRepo
}

func TestAuthRegister(t *testing.T) {
	var created *models.User
	userRepo := &mockUserRepo{
		ExistsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return false, nil },
		ExistsByEmailFn:    func(ctx context.Context, email string) (bool, error) { return false, nil },
		CreateFn: func(ctx context.Context, user *models.User) error {
			user.ID = 1
			created = user
			return nil
		},
	}
	svc, _ := newAuthServiceForTest(userRepo)

	resp, err := svc.Register(context.Background(), registerInput())
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "PATIENT", resp.User.Role)
	assert.True(t, created.IsActive)
	// Stored password must be hashed, not plaintext
	assert.NotEqual(t, "correct-horse", created.Password)
	assert.True(t, password.Verify("correct-horse", created.Password))
}

func TestAuthRegisterRejectsAdminRole(t *testing.T) {
	svc, _ := newAuthServiceForTest(&mockUserRepo{})

	input := registerInput()
	input.Role = "ADMIN"
	_, err := svc.Register(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthRegisterValidation(t *testing.T) {
	svc, _ := newAuthServiceForTest(&mockUserRepo{})
	ctx := context.Background()

	input := registerInput()
	input.BloodGroup = "Z+"
	_, err := svc.Register(ctx, input)
	assert.ErrorIs(t, err, domain.ErrValidation)

	input = registerInput()
	input.Role = "HOSPITAL"
	input.HospitalName = ""
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, domain.ErrValidation)

	input = registerInput()
	input.Password = "short"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthRegisterDuplicateUsername(t *testing.T) {
	userRepo := &mockUserRepo{
		ExistsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return true, nil },
	}
	svc, _ := newAuthServiceForTest(userRepo)

	_, err := svc.Register(context.Background(), registerInput())
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthLogin(t *testing.T) {
	hashed, err := password.Hash("correct-horse")
	assert.NoError(t, err)

	userRepo := &mockUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			if username != "alice" {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.User{ID: 1, Username: "alice", Password: hashed, Role: "PATIENT", IsActive: true}, nil
		},
	}
	svc, _ := newAuthServiceForTest(userRepo)
	ctx := context.Background()

	resp, err := svc.Login(ctx, &LoginInput{Username: "alice", Password: "correct-horse"})
	assert.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(ctx, &LoginInput{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginInput{Username: "nobody", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthLoginInactiveUser(t *testing.T) {
	hashed, err := password.Hash("correct-horse")
	assert.NoError(t, err)

	userRepo := &mockUserRepo{
		GetByUsernameFn: func(ctx context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: "alice", Password: hashed, IsActive: false}, nil
		},
	}
	svc, _ := newAuthServiceForTest(userRepo)

	_, err = svc.Login(context.Background(), &LoginInput{Username: "alice", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthValidateAccessToken(t *testing.T) {
	userRepo := &mockUserRepo{
		ExistsByUsernameFn: func(ctx context.Context, username string) (bool, error) { return false, nil },
		ExistsByEmailFn:    func(ctx context.Context, email string) (bool, error) { return false, nil },
		CreateFn: func(ctx context.Context, user *models.User) error {
			user.ID = 1
			return nil
		},
	}
	svc, _ := newAuthServiceForTest(userRepo)

	resp, err := svc.Register(context.Background(), registerInput())
	assert.NoError(t, err)

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "PATIENT", claims.Role)

	_, err = svc.ValidateAccessToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthLogoutAllRevokesSessions(t *testing.T) {
	svc, tokenRepo := newAuthServiceForTest(&mockUserRepo{})

	err := svc.LogoutAll(context.Background(), 1)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, tokenRepo.revokeAllCalls)
}
