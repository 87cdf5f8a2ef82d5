package services

import (
	"crypto/rand"
	"fmt"
	"time"

	"wagyu_backend/internal/config"
	"wagyu_backend/internal/email"
	"wagyu_backend/internal/logger"
	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/internal/services/dto"
	"wagyu_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Referral codes are generated from this alphabet. 0/O and 1/I are kept out
// so codes survive being read aloud.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeGenerationAttempts = 5

type AffiliateService interface {
	Apply(db *gorm.DB, userID string, req *dto.ApplyAffiliateRequest) (*dto.ApplicationResponse, error)
	MyApplications(db *gorm.DB, userID string) ([]dto.ApplicationResponse, error)
	ListApplications(db *gorm.DB, status string, limit, offset int) ([]dto.ApplicationResponse, error)
	Review(db *gorm.DB, adminID, applicationID string, req *dto.ReviewApplicationRequest) (*dto.ApplicationResponse, error)

	Dashboard(db *gorm.DB, userID string) (*dto.AffiliateDashboard, error)
	MyReferrals(db *gorm.DB, userID string, limit, offset int) ([]dto.ReferralResponse, error)
	MyCommissions(db *gorm.DB, userID string, limit, offset int) ([]dto.CommissionResponse, error)
	MarkPaid(db *gorm.DB, affiliateUserID string) (int64, error)

	// RecordCommission credits the referring affiliate for a payment, if the
	// paying user was referred. Returns nil when no referral exists.
	RecordCommission(db *gorm.DB, payment *models.PaymentTransaction) error
}

type AffiliateServiceImpl struct {
	affiliateRepo repositories.AffiliateRepository
	userRepo      repositories.UserRepository
	emailProvider email.Provider
}

func NewAffiliateService(
	affiliateRepo repositories.AffiliateRepository,
	userRepo repositories.UserRepository,
	emailProvider email.Provider,
) AffiliateService {
	return &AffiliateServiceImpl{
		affiliateRepo: affiliateRepo,
		userRepo:      userRepo,
		emailProvider: emailProvider,
	}
}

// CalculateCommission applies the rate table to a payment amount. Trial
// events carry a zero rate and earn nothing; everything else is floored at
// the configured minimum payout.
func CalculateCommission(amount float64, paymentType models.PaymentType) (commission, rate float64) {
	cfg := config.GetConfig()
	switch paymentType {
	case models.PaymentTypeSubscription:
		rate = cfg.Affiliate.SubscriptionRate
	case models.PaymentTypeOneTime:
		rate = cfg.Affiliate.OneTimeRate
	default:
		return 0, 0
	}
	if rate == 0 {
		return 0, 0
	}

	commission = amount * rate
	if commission < cfg.Affiliate.MinimumPayout {
		commission = cfg.Affiliate.MinimumPayout
	}
	return commission, rate
}

func (s *AffiliateServiceImpl) Apply(db *gorm.DB, userID string, req *dto.ApplyAffiliateRequest) (*dto.ApplicationResponse, error) {
	if _, err := s.affiliateRepo.FindAffiliateByUserID(db, userID); err == nil {
		return nil, apperrors.ErrAlreadyAffiliate
	}
	if _, err := s.affiliateRepo.FindPendingApplicationByUser(db, userID); err == nil {
		return nil, apperrors.ErrApplicationPending
	}

	app := &models.AffiliateApplication{
		UserID:        userID,
		FullName:      req.FullName,
		ContactEmail:  req.ContactEmail,
		SocialLinks:   req.SocialLinks,
		PromotionPlan: req.PromotionPlan,
		Status:        models.ApplicationStatusPending,
	}
	if err := s.affiliateRepo.CreateApplication(db, app); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

func (s *AffiliateServiceImpl) MyApplications(db *gorm.DB, userID string) ([]dto.ApplicationResponse, error) {
	apps, err := s.affiliateRepo.FindApplicationsByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toApplicationResponses(apps), nil
}

func (s *AffiliateServiceImpl) ListApplications(db *gorm.DB, status string, limit, offset int) ([]dto.ApplicationResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	apps, err := s.affiliateRepo.FindApplicationsByStatus(db, models.ApplicationStatus(status), limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toApplicationResponses(apps), nil
}

// Review approves or denies an application. Approval creates the Affiliate
// row with a fresh referral code.
func (s *AffiliateServiceImpl) Review(db *gorm.DB, adminID, applicationID string, req *dto.ReviewApplicationRequest) (*dto.ApplicationResponse, error) {
	app, err := s.affiliateRepo.FindApplicationByID(db, applicationID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if app.Status != models.ApplicationStatusPending {
		return nil, apperrors.ErrApplicationAlreadyReviewed
	}

	now := time.Now()
	app.ReviewedBy = adminID
	app.ReviewedAt = &now
	app.ReviewNote = req.Note

	var referralCode string
	err = db.Transaction(func(tx *gorm.DB) error {
		if req.Approve {
			app.Status = models.ApplicationStatusApproved

			code, err := s.generateReferralCode(tx)
			if err != nil {
				return err
			}
			referralCode = code

			affiliate := &models.Affiliate{
				UserID:        app.UserID,
				ApplicationID: app.ID,
				ReferralCode:  code,
			}
			if err := s.affiliateRepo.CreateAffiliate(tx, affiliate); err != nil {
				return err
			}
		} else {
			app.Status = models.ApplicationStatusDenied
		}
		return s.affiliateRepo.UpdateApplication(tx, app)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyReviewOutcome(app, referralCode)

	resp := dto.ToApplicationResponse(app)
	return &resp, nil
}

func (s *AffiliateServiceImpl) notifyReviewOutcome(app *models.AffiliateApplication, referralCode string) {
	go func() {
		var err error
		if app.Status == models.ApplicationStatusApproved {
			err = s.emailProvider.SendAffiliateApproved(app.ContactEmail, referralCode)
		} else {
			err = s.emailProvider.SendAffiliateDenied(app.ContactEmail, app.ReviewNote)
		}
		if err != nil {
			logger.WithError(err).Warn("affiliate review email failed", "application_id", app.ID)
		}
	}()
}

func (s *AffiliateServiceImpl) generateReferralCode(db *gorm.DB) (string, error) {
	length := config.GetConfig().Affiliate.CodeLength
	for attempt := 0; attempt < codeGenerationAttempts; attempt++ {
		code, err := randomCode(length)
		if err != nil {
			return "", err
		}
		exists, err := s.affiliateRepo.CodeExists(db, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique referral code")
}

func randomCode(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

func (s *AffiliateServiceImpl) Dashboard(db *gorm.DB, userID string) (*dto.AffiliateDashboard, error) {
	affiliate, err := s.affiliateRepo.FindAffiliateByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAffiliateNotFound) {
			return nil, apperrors.ErrNotAnAffiliate
		}
		return nil, apperrors.InternalError(err)
	}

	count, err := s.affiliateRepo.CountReferrals(db, affiliate.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AffiliateDashboard{
		ReferralCode:    affiliate.ReferralCode,
		ReferralCount:   count,
		TotalEarnings:   affiliate.TotalEarnings,
		PendingEarnings: affiliate.PendingEarnings,
		PaidEarnings:    affiliate.PaidEarnings,
	}, nil
}

func (s *AffiliateServiceImpl) MyReferrals(db *gorm.DB, userID string, limit, offset int) ([]dto.ReferralResponse, error) {
	affiliate, err := s.affiliateRepo.FindAffiliateByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAffiliateNotFound) {
			return nil, apperrors.ErrNotAnAffiliate
		}
		return nil, apperrors.InternalError(err)
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	referrals, err := s.affiliateRepo.FindReferralsByAffiliate(db, affiliate.ID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.ReferralResponse, 0, len(referrals))
	for i := range referrals {
		result = append(result, dto.ToReferralResponse(&referrals[i]))
	}
	return result, nil
}

func (s *AffiliateServiceImpl) MyCommissions(db *gorm.DB, userID string, limit, offset int) ([]dto.CommissionResponse, error) {
	affiliate, err := s.affiliateRepo.FindAffiliateByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAffiliateNotFound) {
			return nil, apperrors.ErrNotAnAffiliate
		}
		return nil, apperrors.InternalError(err)
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	commissions, err := s.affiliateRepo.FindCommissionsByAffiliate(db, affiliate.ID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.CommissionResponse, 0, len(commissions))
	for i := range commissions {
		result = append(result, dto.ToCommissionResponse(&commissions[i]))
	}
	return result, nil
}

// MarkPaid settles all pending commissions of one affiliate (admin payout).
func (s *AffiliateServiceImpl) MarkPaid(db *gorm.DB, affiliateUserID string) (int64, error) {
	affiliate, err := s.affiliateRepo.FindAffiliateByUserID(db, affiliateUserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrAffiliateNotFound) {
			return 0, apperrors.ErrNotAnAffiliate
		}
		return 0, apperrors.InternalError(err)
	}

	var settled int64
	err = db.Transaction(func(tx *gorm.DB) error {
		// Settle exactly what is being flipped. A commission credited after
		// the affiliate row was read must stay pending.
		amount, err := s.affiliateRepo.PendingCommissionTotal(tx, affiliate.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		count, err := s.affiliateRepo.MarkCommissionsPaid(tx, affiliate.ID, now)
		if err != nil {
			return err
		}
		settled = count
		if count > 0 {
			return s.affiliateRepo.SettleEarnings(tx, affiliate.ID, amount)
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return settled, nil
}

func (s *AffiliateServiceImpl) RecordCommission(db *gorm.DB, payment *models.PaymentTransaction) error {
	referral, err := s.affiliateRepo.FindReferralByReferredUser(db, payment.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReferralNotFound) {
			return nil
		}
		return err
	}

	amount, rate := CalculateCommission(payment.Amount, payment.Type)
	if amount == 0 {
		return nil
	}

	commission := &models.Commission{
		AffiliateID:   referral.AffiliateID,
		ReferralID:    referral.ID,
		PaymentID:     payment.ID,
		Amount:        amount,
		Rate:          rate,
		PaymentAmount: payment.Amount,
		PaymentType:   payment.Type,
		Status:        models.CommissionStatusPending,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := s.affiliateRepo.CreateCommission(tx, commission); err != nil {
			if apperrors.Is(err, repositories.ErrDuplicateCommission) {
				return nil
			}
			return err
		}
		return s.affiliateRepo.AddEarnings(tx, referral.AffiliateID, amount)
	})
}

func toApplicationResponses(apps []models.AffiliateApplication) []dto.ApplicationResponse {
	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, dto.ToApplicationResponse(&apps[i]))
	}
	return result
}
