package dto

import (
	"time"

	"wagyu_backend/internal/models"
)

type ApplyAffiliateRequest struct {
	FullName      string `json:"full_name" binding:"required,min=2,max=120"`
	ContactEmail  string `json:"contact_email" binding:"required,email"`
	SocialLinks   string `json:"social_links"`
	PromotionPlan string `json:"promotion_plan" binding:"required,min=20"`
}

type ReviewApplicationRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

type ApplicationResponse struct {
	ID            string                   `json:"id"`
	FullName      string                   `json:"full_name"`
	ContactEmail  string                   `json:"contact_email"`
	SocialLinks   string                   `json:"social_links,omitempty"`
	PromotionPlan string                   `json:"promotion_plan"`
	Status        models.ApplicationStatus `json:"status"`
	ReviewNote    string                   `json:"review_note,omitempty"`
	ReviewedAt    *time.Time               `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

// AffiliateDashboard is the stats panel an affiliate sees.
type AffiliateDashboard struct {
	ReferralCode    string  `json:"referral_code"`
	ReferralCount   int64   `json:"referral_count"`
	TotalEarnings   float64 `json:"total_earnings"`
	PendingEarnings float64 `json:"pending_earnings"`
	PaidEarnings    float64 `json:"paid_earnings"`
}

type ReferralResponse struct {
	ID             string    `json:"id"`
	ReferredUserID string    `json:"referred_user_id"`
	CreatedAt      time.Time `json:"created_at"`
}

type CommissionResponse struct {
	ID            string                  `json:"id"`
	Amount        float64                 `json:"amount"`
	Rate          float64                 `json:"rate"`
	PaymentAmount float64                 `json:"payment_amount"`
	PaymentType   models.PaymentType      `json:"payment_type"`
	Status        models.CommissionStatus `json:"status"`
	PaidAt        *time.Time              `json:"paid_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
}

func ToApplicationResponse(app *models.AffiliateApplication) ApplicationResponse {
	return ApplicationResponse{
		ID:            app.ID,
		FullName:      app.FullName,
		ContactEmail:  app.ContactEmail,
		SocialLinks:   app.SocialLinks,
		PromotionPlan: app.PromotionPlan,
		Status:        app.Status,
		ReviewNote:    app.ReviewNote,
		ReviewedAt:    app.ReviewedAt,
		CreatedAt:     app.CreatedAt,
	}
}

func ToCommissionResponse(c *models.Commission) CommissionResponse {
	return CommissionResponse{
		ID:            c.ID,
		Amount:        c.Amount,
		Rate:          c.Rate,
		PaymentAmount: c.PaymentAmount,
		PaymentType:   c.PaymentType,
		Status:        c.Status,
		PaidAt:        c.PaidAt,
		CreatedAt:     c.CreatedAt,
	}
}

func ToReferralResponse(r *models.Referral) ReferralResponse {
	return ReferralResponse{
		ID:             r.ID,
		ReferredUserID: r.ReferredUserID,
		CreatedAt:      r.CreatedAt,
	}
}
