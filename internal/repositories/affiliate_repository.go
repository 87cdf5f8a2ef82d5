package repositories

import (
	"errors"
	"time"

	"wagyu_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("affiliate application not found")
	ErrAffiliateNotFound   = errors.New("affiliate not found")
	ErrReferralNotFound    = errors.New("referral not found")
	ErrCommissionNotFound  = errors.New("commission not found")
	ErrReferralExists      = errors.New("user already referred")
	ErrDuplicateCommission = errors.New("commission already recorded for payment")
)

type AffiliateRepository interface {
	// Application operations
	CreateApplication(db *gorm.DB, app *models.AffiliateApplication) error
	FindApplicationByID(db *gorm.DB, id string) (*models.AffiliateApplication, error)
	FindApplicationsByUser(db *gorm.DB, userID string) ([]models.AffiliateApplication, error)
	FindPendingApplicationByUser(db *gorm.DB, userID string) (*models.AffiliateApplication, error)
	FindApplicationsByStatus(db *gorm.DB, status models.ApplicationStatus, limit, offset int) ([]models.AffiliateApplication, error)
	UpdateApplication(db *gorm.DB, app *models.AffiliateApplication) error

	// Affiliate operations
	CreateAffiliate(db *gorm.DB, affiliate *models.Affiliate) error
	FindAffiliateByUserID(db *gorm.DB, userID string) (*models.Affiliate, error)
	FindAffiliateByCode(db *gorm.DB, code string) (*models.Affiliate, error)
	CodeExists(db *gorm.DB, code string) (bool, error)

	// Referral operations
	CreateReferral(db *gorm.DB, referral *models.Referral) error
	FindReferralByReferredUser(db *gorm.DB, userID string) (*models.Referral, error)
	FindReferralsByAffiliate(db *gorm.DB, affiliateID string, limit, offset int) ([]models.Referral, error)
	CountReferrals(db *gorm.DB, affiliateID string) (int64, error)

	// Commission operations
	CreateCommission(db *gorm.DB, commission *models.Commission) error
	FindCommissionByPaymentID(db *gorm.DB, paymentID string) (*models.Commission, error)
	FindCommissionsByAffiliate(db *gorm.DB, affiliateID string, limit, offset int) ([]models.Commission, error)
	MarkCommissionsPaid(db *gorm.DB, affiliateID string, paidAt time.Time) (int64, error)
	PendingCommissionTotal(db *gorm.DB, affiliateID string) (float64, error)
	AddEarnings(db *gorm.DB, affiliateID string, amount float64) error
	SettleEarnings(db *gorm.DB, affiliateID string, amount float64) error
}

type AffiliateRepositoryImpl struct{}

func NewAffiliateRepository() AffiliateRepository {
	return &AffiliateRepositoryImpl{}
}

// Application operations

func (r *AffiliateRepositoryImpl) CreateApplication(db *gorm.DB, app *models.AffiliateApplication) error {
	return db.Create(app).Error
}

func (r *AffiliateRepositoryImpl) FindApplicationByID(db *gorm.DB, id string) (*models.AffiliateApplication, error) {
	var app models.AffiliateApplication
	err := db.First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *AffiliateRepositoryImpl) FindApplicationsByUser(db *gorm.DB, userID string) ([]models.AffiliateApplication, error) {
	var apps []models.AffiliateApplication
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&apps).Error
	return apps, err
}

func (r *AffiliateRepositoryImpl) FindPendingApplicationByUser(db *gorm.DB, userID string) (*models.AffiliateApplication, error) {
	var app models.AffiliateApplication
	err := db.First(&app, "user_id = ? AND status = ?", userID, models.ApplicationStatusPending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *AffiliateRepositoryImpl) FindApplicationsByStatus(db *gorm.DB, status models.ApplicationStatus, limit, offset int) ([]models.AffiliateApplication, error) {
	var apps []models.AffiliateApplication
	query := db.Order("created_at ASC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&apps).Error
	return apps, err
}

func (r *AffiliateRepositoryImpl) UpdateApplication(db *gorm.DB, app *models.AffiliateApplication) error {
	result := db.Model(app).Updates(map[string]interface{}{
		"status":      app.Status,
		"reviewed_by": app.ReviewedBy,
		"reviewed_at": app.ReviewedAt,
		"review_note": app.ReviewNote,
		"updated_at":  time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// Affiliate operations

func (r *AffiliateRepositoryImpl) CreateAffiliate(db *gorm.DB, affiliate *models.Affiliate) error {
	return db.Create(affiliate).Error
}

func (r *AffiliateRepositoryImpl) FindAffiliateByUserID(db *gorm.DB, userID string) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	err := db.First(&affiliate, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}
	return &affiliate, nil
}

func (r *AffiliateRepositoryImpl) FindAffiliateByCode(db *gorm.DB, code string) (*models.Affiliate, error) {
	var affiliate models.Affiliate
	err := db.First(&affiliate, "referral_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}
	return &affiliate, nil
}

func (r *AffiliateRepositoryImpl) CodeExists(db *gorm.DB, code string) (bool, error) {
	var count int64
	err := db.Model(&models.Affiliate{}).Where("referral_code = ?", code).Count(&count).Error
	return count > 0, err
}

// Referral operations

func (r *AffiliateRepositoryImpl) CreateReferral(db *gorm.DB, referral *models.Referral) error {
	err := db.Create(referral).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrReferralExists
	}
	return err
}

func (r *AffiliateRepositoryImpl) FindReferralByReferredUser(db *gorm.DB, userID string) (*models.Referral, error) {
	var referral models.Referral
	err := db.First(&referral, "referred_user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferralNotFound
		}
		return nil, err
	}
	return &referral, nil
}

func (r *AffiliateRepositoryImpl) FindReferralsByAffiliate(db *gorm.DB, affiliateID string, limit, offset int) ([]models.Referral, error) {
	var referrals []models.Referral
	err := db.Where("affiliate_id = ?", affiliateID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&referrals).Error
	return referrals, err
}

func (r *AffiliateRepositoryImpl) CountReferrals(db *gorm.DB, affiliateID string) (int64, error) {
	var count int64
	err := db.Model(&models.Referral{}).Where("affiliate_id = ?", affiliateID).Count(&count).Error
	return count, err
}

// Commission operations

func (r *AffiliateRepositoryImpl) CreateCommission(db *gorm.DB, commission *models.Commission) error {
	err := db.Create(commission).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateCommission
	}
	return err
}

func (r *AffiliateRepositoryImpl) FindCommissionByPaymentID(db *gorm.DB, paymentID string) (*models.Commission, error) {
	var commission models.Commission
	err := db.First(&commission, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionNotFound
		}
		return nil, err
	}
	return &commission, nil
}

func (r *AffiliateRepositoryImpl) FindCommissionsByAffiliate(db *gorm.DB, affiliateID string, limit, offset int) ([]models.Commission, error) {
	var commissions []models.Commission
	err := db.Where("affiliate_id = ?", affiliateID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&commissions).Error
	return commissions, err
}

func (r *AffiliateRepositoryImpl) MarkCommissionsPaid(db *gorm.DB, affiliateID string, paidAt time.Time) (int64, error) {
	result := db.Model(&models.Commission{}).
		Where("affiliate_id = ? AND status = ?", affiliateID, models.CommissionStatusPending).
		Updates(map[string]interface{}{
			"status":     models.CommissionStatusPaid,
			"paid_at":    paidAt,
			"updated_at": paidAt,
		})
	return result.RowsAffected, result.Error
}

// PendingCommissionTotal sums the affiliate's unpaid commissions.
func (r *AffiliateRepositoryImpl) PendingCommissionTotal(db *gorm.DB, affiliateID string) (float64, error) {
	var total float64
	err := db.Model(&models.Commission{}).
		Where("affiliate_id = ? AND status = ?", affiliateID, models.CommissionStatusPending).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// AddEarnings credits a new pending commission onto the affiliate counters.
func (r *AffiliateRepositoryImpl) AddEarnings(db *gorm.DB, affiliateID string, amount float64) error {
	return db.Model(&models.Affiliate{}).Where("id = ?", affiliateID).
		Updates(map[string]interface{}{
			"total_earnings":   gorm.Expr("total_earnings + ?", amount),
			"pending_earnings": gorm.Expr("pending_earnings + ?", amount),
			"updated_at":       time.Now(),
		}).Error
}

// SettleEarnings moves a paid-out amount from pending to paid.
func (r *AffiliateRepositoryImpl) SettleEarnings(db *gorm.DB, affiliateID string, amount float64) error {
	return db.Model(&models.Affiliate{}).Where("id = ?", affiliateID).
		Updates(map[string]interface{}{
			"pending_earnings": gorm.Expr("pending_earnings - ?", amount),
			"paid_earnings":    gorm.Expr("paid_earnings + ?", amount),
			"updated_at":       time.Now(),
		}).Error
}
