package dto

import (
	"encoding/json"
	"time"

	"wagyu_backend/internal/models"
)

type PlanResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Price       float64            `json:"price"`
	Currency    string             `json:"currency"`
	Duration    string             `json:"duration"`
	Features    []string           `json:"features"`
	AccessLevel models.AccessLevel `json:"access_level"`
}

type CreatePlanRequest struct {
	Name        string   `json:"name" binding:"required"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Currency    string   `json:"currency"`
	Duration    string   `json:"duration" binding:"required,oneof=monthly yearly"`
	Features    []string `json:"features"`
	AccessLevel string   `json:"access_level" binding:"omitempty,is-access-level"`
}

type UpdatePlanRequest struct {
	Name        *string  `json:"name,omitempty"`
	Price       *float64 `json:"price,omitempty" binding:"omitempty,gt=0"`
	Duration    *string  `json:"duration,omitempty" binding:"omitempty,oneof=monthly yearly"`
	Features    []string `json:"features,omitempty"`
	AccessLevel *string  `json:"access_level,omitempty" binding:"omitempty,is-access-level"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// SubscriptionResponse is the user-facing view of their subscription.
type SubscriptionResponse struct {
	ID                 string                    `json:"id"`
	Status             models.SubscriptionStatus `json:"status"`
	AccessLevel        models.AccessLevel        `json:"access_level"`
	Plan               *PlanResponse             `json:"plan,omitempty"`
	TrialEndDate       *time.Time                `json:"trial_end_date,omitempty"`
	CurrentPeriodStart *time.Time                `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time                `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool                      `json:"cancel_at_period_end"`
}

type PaymentResponse struct {
	ID        string               `json:"id"`
	Amount    float64              `json:"amount"`
	Currency  string               `json:"currency"`
	Type      models.PaymentType   `json:"type"`
	Status    models.PaymentStatus `json:"status"`
	PaidAt    *time.Time           `json:"paid_at,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

func ToPlanResponse(plan *models.SubscriptionPlan) *PlanResponse {
	if plan == nil {
		return nil
	}
	var features []string
	if len(plan.Features) > 0 {
		_ = json.Unmarshal(plan.Features, &features)
	}
	return &PlanResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Price:       plan.Price,
		Currency:    plan.Currency,
		Duration:    plan.Duration,
		Features:    features,
		AccessLevel: plan.AccessLevel,
	}
}

func ToSubscriptionResponse(sub *models.Subscription) *SubscriptionResponse {
	if sub == nil {
		return nil
	}
	return &SubscriptionResponse{
		ID:                 sub.ID,
		Status:             sub.Status,
		AccessLevel:        sub.AccessLevel,
		Plan:               ToPlanResponse(sub.Plan),
		TrialEndDate:       sub.TrialEndDate,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
}

func ToPaymentResponse(p *models.PaymentTransaction) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Type:      p.Type,
		Status:    p.Status,
		PaidAt:    p.PaidAt,
		CreatedAt: p.CreatedAt,
	}
}
