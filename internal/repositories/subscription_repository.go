package repositories

import (
	"errors"
	"time"

	"wagyu_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrDuplicateEvent       = errors.New("payment event already processed")
)

type SubscriptionRepository interface {
	// Plan operations
	FindActivePlans(db *gorm.DB) ([]models.SubscriptionPlan, error)
	FindPlanByID(db *gorm.DB, planID string) (*models.SubscriptionPlan, error)
	CreatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error
	UpdatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error
	DeletePlan(db *gorm.DB, planID string) error

	// Subscription operations
	Create(db *gorm.DB, sub *models.Subscription) error
	FindByUserID(db *gorm.DB, userID string) (*models.Subscription, error)
	FindByProviderCustomerID(db *gorm.DB, customerID string) (*models.Subscription, error)
	Update(db *gorm.DB, sub *models.Subscription) error
	ExpireTrials(db *gorm.DB, now time.Time) (int64, error)
	ExpireLapsed(db *gorm.DB, now time.Time) (int64, error)

	// Payment operations
	CreatePayment(db *gorm.DB, payment *models.PaymentTransaction) error
	FindPaymentByEventID(db *gorm.DB, eventID string) (*models.PaymentTransaction, error)
	FindPaymentsByUser(db *gorm.DB, userID string, limit, offset int) ([]models.PaymentTransaction, error)
}

type SubscriptionRepositoryImpl struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &SubscriptionRepositoryImpl{}
}

// Plan operations

func (r *SubscriptionRepositoryImpl) FindActivePlans(db *gorm.DB) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	err := db.Where("is_active = ?", true).Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepositoryImpl) FindPlanByID(db *gorm.DB, planID string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := db.First(&plan, "id = ?", planID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) CreatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error {
	return db.Create(plan).Error
}

func (r *SubscriptionRepositoryImpl) UpdatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error {
	result := db.Model(plan).Updates(map[string]interface{}{
		"name":         plan.Name,
		"price":        plan.Price,
		"currency":     plan.Currency,
		"duration":     plan.Duration,
		"features":     plan.Features,
		"access_level": plan.AccessLevel,
		"is_active":    plan.IsActive,
		"updated_at":   time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) DeletePlan(db *gorm.DB, planID string) error {
	result := db.Where("id = ?", planID).Delete(&models.SubscriptionPlan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Subscription operations

func (r *SubscriptionRepositoryImpl) Create(db *gorm.DB, sub *models.Subscription) error {
	return db.Create(sub).Error
}

func (r *SubscriptionRepositoryImpl) FindByUserID(db *gorm.DB, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.Preload("Plan").First(&sub, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindByProviderCustomerID(db *gorm.DB, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.First(&sub, "provider_customer_id = ?", customerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) Update(db *gorm.DB, sub *models.Subscription) error {
	result := db.Model(sub).Updates(map[string]interface{}{
		"plan_id":                  sub.PlanID,
		"status":                   sub.Status,
		"access_level":             sub.AccessLevel,
		"trial_start_date":         sub.TrialStartDate,
		"trial_end_date":           sub.TrialEndDate,
		"current_period_start":     sub.CurrentPeriodStart,
		"current_period_end":       sub.CurrentPeriodEnd,
		"cancel_at_period_end":     sub.CancelAtPeriodEnd,
		"cancelled_at":             sub.CancelledAt,
		"provider_customer_id":     sub.ProviderCustomerID,
		"provider_subscription_id": sub.ProviderSubscriptionID,
		"updated_at":               time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}

// ExpireTrials flips trials past their end date to expired/none.
func (r *SubscriptionRepositoryImpl) ExpireTrials(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Subscription{}).
		Where("status = ? AND trial_end_date < ?", models.SubscriptionStatusTrial, now).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusExpired,
			"access_level": models.AccessLevelNone,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

// ExpireLapsed flips active subscriptions whose paid period ended without a
// renewal event.
func (r *SubscriptionRepositoryImpl) ExpireLapsed(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.Subscription{}).
		Where("status IN ? AND current_period_end < ?",
			[]models.SubscriptionStatus{models.SubscriptionStatusActive, models.SubscriptionStatusCanceled}, now).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusExpired,
			"access_level": models.AccessLevelNone,
			"updated_at":   now,
		})
	return result.RowsAffected, result.Error
}

// Payment operations

func (r *SubscriptionRepositoryImpl) CreatePayment(db *gorm.DB, payment *models.PaymentTransaction) error {
	err := db.Create(payment).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEvent
	}
	return err
}

func (r *SubscriptionRepositoryImpl) FindPaymentByEventID(db *gorm.DB, eventID string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := db.First(&payment, "event_id = ?", eventID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *SubscriptionRepositoryImpl) FindPaymentsByUser(db *gorm.DB, userID string, limit, offset int) ([]models.PaymentTransaction, error) {
	var payments []models.PaymentTransaction
	err := db.Where("user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&payments).Error
	return payments, err
}
