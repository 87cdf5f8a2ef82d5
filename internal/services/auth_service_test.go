package services

import (
	"errors"
	"testing"

	"wagyu_backend/internal/email"
	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gorm.io/gorm"
)

// Stubs embed the interface so only the methods Register touches need
// implementations.

type stubUserRepo struct {
	repositories.UserRepository
}

func (stubUserRepo) Create(db *gorm.DB, user *models.User) error {
	user.ID = "user-stub-id"
	return nil
}

func (stubUserRepo) CreateRefreshToken(db *gorm.DB, token *models.RefreshToken) error {
	return nil
}

type failingSubscriptionRepo struct {
	repositories.SubscriptionRepository
}

func (failingSubscriptionRepo) Create(db *gorm.DB, sub *models.Subscription) error {
	return errors.New("subscriptions table unavailable")
}

type nopEmailProvider struct {
	email.Provider
}

func (nopEmailProvider) SendVerification(to, token string) error { return nil }

func TestRegister_TrialFailureDoesNotBlockSignup(t *testing.T) {
	svc := NewAuthService(stubUserRepo{}, failingSubscriptionRepo{}, nil, nopEmailProvider{})

	resp, err := svc.Register(nil, &dto.RegisterRequest{
		Email:       "swallow@test.wagyu.app",
		Password:    "long-enough-password",
		DisplayName: "Swallow Test",
	})

	// The subscription insert failed, but the account and tokens came back.
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "swallow@test.wagyu.app", resp.User.Email)
}
