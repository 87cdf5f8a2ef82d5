package helpers

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"wagyu_backend/internal/auth"
	"wagyu_backend/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UniqueEmail returns an email no other test will have used. Tests isolate
// themselves through unique users rather than table truncation, so they can
// run in parallel against the shared server.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s_%d@test.wagyu.app", prefix, time.Now().UnixNano())
}

// CreateUser inserts a user, hashing PasswordHash if it holds a raw
// password. Defaults to an active, verified account.
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) {
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.DefaultCost)
		require.NoError(t, err, "failed to hash fixture password")
		user.PasswordHash = string(hashed)
	}

	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	user.IsVerified = true

	require.NoError(t, db.Create(user).Error, "failed to create fixture user %s", user.Email)
}

// CreateTrader creates an active trader and mints an access token for it.
// Tokens are minted directly so fixture setup does not eat into the login
// endpoint's rate limit.
func CreateTrader(t *testing.T, db *gorm.DB) (string, *models.User) {
	user := &models.User{
		Email:        UniqueEmail("trader"),
		PasswordHash: "fixture-password-123",
		DisplayName:  "Test Trader",
		Role:         models.UserRoleTrader,
	}
	CreateUser(t, db, user)

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err, "failed to mint token")

	return token, user
}

// CreateAdmin creates an admin account with a token.
func CreateAdmin(t *testing.T, db *gorm.DB) (string, *models.User) {
	user := &models.User{
		Email:        UniqueEmail("admin"),
		PasswordHash: "fixture-password-123",
		DisplayName:  "Test Admin",
		Role:         models.UserRoleAdmin,
	}
	CreateUser(t, db, user)

	token, err := auth.GenerateToken(user.ID, string(user.Role))
	require.NoError(t, err, "failed to mint token")

	return token, user
}

// GrantSubscription attaches a subscription in the given state. Trial
// subscriptions get a 14-day window, everything else a 30-day paid period.
func GrantSubscription(t *testing.T, db *gorm.DB, userID string, status models.SubscriptionStatus, level models.AccessLevel) *models.Subscription {
	now := time.Now()
	sub := &models.Subscription{
		UserID:      userID,
		Status:      status,
		AccessLevel: level,
	}

	switch status {
	case models.SubscriptionStatusTrial:
		trialEnd := now.AddDate(0, 0, 14)
		sub.TrialStartDate = &now
		sub.TrialEndDate = &trialEnd
	default:
		periodEnd := now.AddDate(0, 0, 30)
		sub.CurrentPeriodStart = &now
		sub.CurrentPeriodEnd = &periodEnd
	}

	require.NoError(t, db.Create(sub).Error, "failed to create fixture subscription")
	return sub
}

// CreateAffiliateAccount creates an approved application plus the affiliate
// record carrying the referral code.
func CreateAffiliateAccount(t *testing.T, db *gorm.DB, user *models.User, code string) *models.Affiliate {
	now := time.Now()
	application := &models.AffiliateApplication{
		UserID:        user.ID,
		FullName:      user.DisplayName,
		ContactEmail:  user.Email,
		PromotionPlan: "Weekly trade recap videos with a signup link in the description.",
		Status:        models.ApplicationStatusApproved,
		ReviewedAt:    &now,
	}
	require.NoError(t, db.Create(application).Error, "failed to create fixture application")

	affiliate := &models.Affiliate{
		UserID:        user.ID,
		ApplicationID: application.ID,
		ReferralCode:  code,
	}
	require.NoError(t, db.Create(affiliate).Error, "failed to create fixture affiliate")

	return affiliate
}
