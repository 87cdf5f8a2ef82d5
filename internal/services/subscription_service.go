package services

import (
	"encoding/json"
	"time"

	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/internal/services/dto"
	"wagyu_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type SubscriptionService interface {
	ListPlans(db *gorm.DB) ([]dto.PlanResponse, error)
	CreatePlan(db *gorm.DB, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	UpdatePlan(db *gorm.DB, planID string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	DeletePlan(db *gorm.DB, planID string) error

	GetSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error)
	CancelSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error)
	GetPaymentHistory(db *gorm.DB, userID string, limit, offset int) ([]dto.PaymentResponse, error)

	// AccessLevel resolves what the user may currently see.
	AccessLevel(db *gorm.DB, userID string) (models.AccessLevel, error)
}

type SubscriptionServiceImpl struct {
	subscriptionRepo repositories.SubscriptionRepository
}

func NewSubscriptionService(subscriptionRepo repositories.SubscriptionRepository) SubscriptionService {
	return &SubscriptionServiceImpl{subscriptionRepo: subscriptionRepo}
}

func (s *SubscriptionServiceImpl) ListPlans(db *gorm.DB) ([]dto.PlanResponse, error) {
	plans, err := s.subscriptionRepo.FindActivePlans(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.PlanResponse, 0, len(plans))
	for i := range plans {
		result = append(result, *dto.ToPlanResponse(&plans[i]))
	}
	return result, nil
}

func (s *SubscriptionServiceImpl) CreatePlan(db *gorm.DB, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	features, err := json.Marshal(req.Features)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	plan := &models.SubscriptionPlan{
		Name:        req.Name,
		Price:       req.Price,
		Currency:    req.Currency,
		Duration:    req.Duration,
		Features:    features,
		AccessLevel: models.AccessLevelFull,
		IsActive:    true,
	}
	if plan.Currency == "" {
		plan.Currency = "USD"
	}
	if req.AccessLevel != "" {
		plan.AccessLevel = models.AccessLevel(req.AccessLevel)
	}

	if err := s.subscriptionRepo.CreatePlan(db, plan); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.ToPlanResponse(plan), nil
}

func (s *SubscriptionServiceImpl) UpdatePlan(db *gorm.DB, planID string, req *dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	plan, err := s.subscriptionRepo.FindPlanByID(db, planID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.Duration != nil {
		plan.Duration = *req.Duration
	}
	if req.Features != nil {
		features, err := json.Marshal(req.Features)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		plan.Features = features
	}
	if req.AccessLevel != nil {
		plan.AccessLevel = models.AccessLevel(*req.AccessLevel)
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.subscriptionRepo.UpdatePlan(db, plan); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.ToPlanResponse(plan), nil
}

func (s *SubscriptionServiceImpl) DeletePlan(db *gorm.DB, planID string) error {
	if err := s.subscriptionRepo.DeletePlan(db, planID); err != nil {
		if apperrors.Is(err, repositories.ErrPlanNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *SubscriptionServiceImpl) GetSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.ToSubscriptionResponse(sub), nil
}

// CancelSubscription marks the subscription to lapse at the end of the paid
// period. Access is kept until then.
func (s *SubscriptionServiceImpl) CancelSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if sub.Status == models.SubscriptionStatusCanceled || sub.CancelAtPeriodEnd {
		return nil, apperrors.ErrSubscriptionCancelled
	}
	if sub.Status != models.SubscriptionStatusActive {
		return nil, apperrors.ErrInvalidStatus("subscription", "Only active subscriptions can be cancelled")
	}

	now := time.Now()
	sub.Status = models.SubscriptionStatusCanceled
	sub.CancelAtPeriodEnd = true
	sub.CancelledAt = &now

	if err := s.subscriptionRepo.Update(db, sub); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.ToSubscriptionResponse(sub), nil
}

func (s *SubscriptionServiceImpl) GetPaymentHistory(db *gorm.DB, userID string, limit, offset int) ([]dto.PaymentResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	payments, err := s.subscriptionRepo.FindPaymentsByUser(db, userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, dto.ToPaymentResponse(&payments[i]))
	}
	return result, nil
}

func (s *SubscriptionServiceImpl) AccessLevel(db *gorm.DB, userID string) (models.AccessLevel, error) {
	sub, err := s.subscriptionRepo.FindByUserID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return models.AccessLevelNone, nil
		}
		return models.AccessLevelNone, apperrors.InternalError(err)
	}

	now := time.Now()
	switch sub.Status {
	case models.SubscriptionStatusTrial:
		if sub.TrialEndDate != nil && now.After(*sub.TrialEndDate) {
			return models.AccessLevelNone, nil
		}
		return sub.AccessLevel, nil
	case models.SubscriptionStatusActive, models.SubscriptionStatusCanceled:
		// Cancelled keeps access until the paid period lapses.
		if sub.CurrentPeriodEnd != nil && now.After(*sub.CurrentPeriodEnd) {
			return models.AccessLevelNone, nil
		}
		return sub.AccessLevel, nil
	default:
		return models.AccessLevelNone, nil
	}
}
