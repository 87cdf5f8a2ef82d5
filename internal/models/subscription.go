package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionPlan struct {
	BaseModel
	Name     string         `gorm:"not null" json:"name"`
	Price    float64        `gorm:"not null" json:"price"`
	Currency string         `gorm:"default:'USD'" json:"currency"`
	Duration string         `gorm:"not null" json:"duration"` // "monthly", "yearly"
	Features datatypes.JSON `gorm:"type:jsonb" json:"features"`
	// AccessLevel granted while a subscription on this plan is active.
	AccessLevel AccessLevel `gorm:"type:varchar(20);default:'full_access'" json:"access_level"`
	IsActive    bool        `gorm:"default:true" json:"is_active"`
}

// Subscription is the one-per-user billing record. Every user gets one at
// signup with a 14-day trial; webhook events drive it from there.
type Subscription struct {
	BaseModel
	UserID      string             `gorm:"not null;uniqueIndex" json:"user_id"`
	PlanID      *string            `gorm:"index" json:"plan_id,omitempty"`
	Status      SubscriptionStatus `gorm:"type:varchar(20);default:'trial'" json:"status"`
	AccessLevel AccessLevel        `gorm:"type:varchar(20);default:'full_access'" json:"access_level"`

	TrialStartDate *time.Time `json:"trial_start_date,omitempty"`
	TrialEndDate   *time.Time `json:"trial_end_date,omitempty"`

	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`

	// External payment provider references.
	ProviderCustomerID     string `gorm:"index" json:"-"`
	ProviderSubscriptionID string `gorm:"index" json:"-"`

	// Relations
	Plan *SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// PaymentTransaction records one provider payment event. EventID makes
// webhook processing idempotent: redelivered events hit the unique index.
type PaymentTransaction struct {
	BaseModel
	UserID         string        `gorm:"not null;index" json:"user_id"`
	SubscriptionID string        `gorm:"index" json:"subscription_id"`
	Amount         float64       `json:"amount"`
	Currency       string        `gorm:"default:'USD'" json:"currency"`
	Type           PaymentType   `gorm:"type:varchar(20)" json:"type"`
	Status         PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	EventID        string        `gorm:"uniqueIndex" json:"event_id"`
	EventType      string        `json:"event_type"`
	PaidAt         *time.Time    `json:"paid_at,omitempty"`
}
