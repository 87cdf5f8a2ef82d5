package services

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"wagyu_backend/internal/auth"
	"wagyu_backend/internal/config"
	"wagyu_backend/internal/email"
	"wagyu_backend/internal/logger"
	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/internal/services/dto"
	"wagyu_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	VerifyEmail(db *gorm.DB, token string) error
	RequestPasswordReset(db *gorm.DB, emailAddr string) error
	ResetPassword(db *gorm.DB, token, newPassword string) error
	GetProfile(db *gorm.DB, userID string) (*dto.UserDTO, error)
}

type AuthServiceImpl struct {
	userRepo         repositories.UserRepository
	subscriptionRepo repositories.SubscriptionRepository
	affiliateRepo    repositories.AffiliateRepository
	emailProvider    email.Provider
}

func NewAuthService(
	userRepo repositories.UserRepository,
	subscriptionRepo repositories.SubscriptionRepository,
	affiliateRepo repositories.AffiliateRepository,
	emailProvider email.Provider,
) AuthService {
	return &AuthServiceImpl{
		userRepo:         userRepo,
		subscriptionRepo: subscriptionRepo,
		affiliateRepo:    affiliateRepo,
		emailProvider:    emailProvider,
	}
}

// Register creates the account, starts the trial and, when a referral code
// was supplied, links the new user to the affiliate. Referral and email
// failures never fail the signup.
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:             strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash:      hash,
		DisplayName:       req.DisplayName,
		Role:              models.UserRoleTrader,
		Status:            models.UserStatusPending,
		VerificationToken: generateRandomToken(),
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	// A failed trial insert never blocks signup; the expiry worker and the
	// access checks treat a missing subscription as no access.
	if err := s.startTrial(db, user.ID); err != nil {
		logger.Warn("trial subscription creation failed", "user_id", user.ID, "error", err.Error())
	}

	if code := strings.TrimSpace(req.ReferralCode); code != "" {
		s.captureReferral(db, user.ID, code)
	}

	s.sendVerificationEmail(user.Email, user.VerificationToken)

	return s.issueTokens(db, user)
}

func (s *AuthServiceImpl) startTrial(db *gorm.DB, userID string) error {
	now := time.Now()
	trialEnd := now.AddDate(0, 0, config.GetConfig().Billing.TrialDays)

	sub := &models.Subscription{
		UserID:         userID,
		Status:         models.SubscriptionStatusTrial,
		AccessLevel:    models.AccessLevelFull,
		TrialStartDate: &now,
		TrialEndDate:   &trialEnd,
	}
	return s.subscriptionRepo.Create(db, sub)
}

// captureReferral links the signup to the affiliate. A bad code or a user
// already referred is logged and ignored.
func (s *AuthServiceImpl) captureReferral(db *gorm.DB, userID, code string) {
	code = strings.ToUpper(code)

	affiliate, err := s.affiliateRepo.FindAffiliateByCode(db, code)
	if err != nil {
		logger.Warn("referral code not matched", "code", code, "user_id", userID)
		return
	}

	referral := &models.Referral{
		AffiliateID:    affiliate.ID,
		ReferredUserID: userID,
		ReferralCode:   code,
	}
	if err := s.affiliateRepo.CreateReferral(db, referral); err != nil {
		logger.Warn("referral capture failed", "code", code, "user_id", userID, "error", err.Error())
		return
	}

	if err := db.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
		Update("referral_count", gorm.Expr("referral_count + 1")).Error; err != nil {
		logger.Warn("referral count update failed", "affiliate_id", affiliate.ID, "error", err.Error())
	}
}

func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	return s.issueTokens(db, user)
}

// RefreshToken rotates the refresh token: the presented token is deleted and
// a fresh pair is issued.
func (s *AuthServiceImpl) RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	stored, err := s.userRepo.FindRefreshToken(db, refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(db, refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.userRepo.DeleteRefreshToken(db, refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(db, user)
}

func (s *AuthServiceImpl) Logout(db *gorm.DB, refreshToken string) error {
	if err := s.userRepo.DeleteRefreshToken(db, refreshToken); err != nil {
		if apperrors.Is(err, repositories.ErrTokenNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) VerifyEmail(db *gorm.DB, token string) error {
	user, err := s.userRepo.FindByVerificationToken(db, token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	if err := s.userRepo.VerifyUser(db, user.ID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// RequestPasswordReset always reports success to the caller so the endpoint
// cannot be used to probe which emails exist.
func (s *AuthServiceImpl) RequestPasswordReset(db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil
		}
		return apperrors.InternalError(err)
	}

	exp := time.Now().Add(time.Hour)
	user.ResetToken = generateRandomToken()
	user.ResetTokenExp = &exp

	if err := s.userRepo.Update(db, user); err != nil {
		return apperrors.InternalError(err)
	}

	go func(to, token string) {
		if err := s.emailProvider.SendPasswordReset(to, token); err != nil {
			logger.WithError(err).Warn("password reset email failed", "email", to)
		}
	}(user.Email, user.ResetToken)

	return nil
}

func (s *AuthServiceImpl) ResetPassword(db *gorm.DB, token, newPassword string) error {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	user, err := s.userRepo.FindByResetToken(db, token)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	if user.ResetTokenExp == nil || time.Now().After(*user.ResetTokenExp) {
		return apperrors.ErrInvalidToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	user.PasswordHash = hash
	user.ResetToken = ""
	user.ResetTokenExp = nil

	if err := s.userRepo.Update(db, user); err != nil {
		return apperrors.InternalError(err)
	}

	// All sessions are revoked after a password change.
	if err := s.userRepo.DeleteUserRefreshTokens(db, user.ID); err != nil {
		logger.WithError(err).Warn("refresh token revocation failed", "user_id", user.ID)
	}
	return nil
}

func (s *AuthServiceImpl) GetProfile(db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	userDTO := dto.ToUserDTO(user)
	return &userDTO, nil
}

func (s *AuthServiceImpl) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh := &models.RefreshToken{
		UserID:    user.ID,
		Token:     generateRandomToken(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := s.userRepo.CreateRefreshToken(db, refresh); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Token,
		User:         dto.ToUserDTO(user),
	}, nil
}

func (s *AuthServiceImpl) sendVerificationEmail(to, token string) {
	go func() {
		if err := s.emailProvider.SendVerification(to, token); err != nil {
			logger.WithError(err).Warn("verification email failed", "email", to)
		}
	}()
}

func generateRandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}
