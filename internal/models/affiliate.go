package models

import "time"

// AffiliateApplication is the admin-reviewed request to join the program.
type AffiliateApplication struct {
	BaseModel
	UserID        string            `gorm:"not null;index" json:"user_id"`
	FullName      string            `gorm:"not null" json:"full_name"`
	ContactEmail  string            `gorm:"not null" json:"contact_email"`
	SocialLinks   string            `json:"social_links"`
	PromotionPlan string            `gorm:"type:text" json:"promotion_plan"`
	Status        ApplicationStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	ReviewedBy    string            `json:"-"`
	ReviewedAt    *time.Time        `json:"reviewed_at,omitempty"`
	ReviewNote    string            `json:"review_note,omitempty"`
}

// Affiliate is created once per approved application.
type Affiliate struct {
	BaseModel
	UserID          string  `gorm:"not null;uniqueIndex" json:"user_id"`
	ApplicationID   string  `gorm:"not null" json:"-"`
	ReferralCode    string  `gorm:"not null;uniqueIndex" json:"referral_code"`
	TotalEarnings   float64 `gorm:"default:0" json:"total_earnings"`
	PendingEarnings float64 `gorm:"default:0" json:"pending_earnings"`
	PaidEarnings    float64 `gorm:"default:0" json:"paid_earnings"`
	ReferralCount   int     `gorm:"default:0" json:"referral_count"`

	// Relations
	Referrals   []Referral   `gorm:"foreignKey:AffiliateID" json:"-"`
	Commissions []Commission `gorm:"foreignKey:AffiliateID" json:"-"`
}

// Referral links a referred user to an affiliate. The unique index on
// ReferredUserID is what makes referral capture idempotent: the first code
// wins and later signup attempts with a different code are ignored.
type Referral struct {
	BaseModel
	AffiliateID    string `gorm:"not null;index" json:"affiliate_id"`
	ReferredUserID string `gorm:"not null;uniqueIndex" json:"referred_user_id"`
	ReferralCode   string `gorm:"not null" json:"referral_code"`
}

// Commission is one credit owed to an affiliate for a qualifying payment.
type Commission struct {
	BaseModel
	AffiliateID   string           `gorm:"not null;index" json:"affiliate_id"`
	ReferralID    string           `gorm:"not null;index" json:"referral_id"`
	PaymentID     string           `gorm:"uniqueIndex" json:"payment_id"` // PaymentTransaction ID
	Amount        float64          `gorm:"not null" json:"amount"`
	Rate          float64          `gorm:"not null" json:"rate"`
	PaymentAmount float64          `gorm:"not null" json:"payment_amount"`
	PaymentType   PaymentType      `gorm:"type:varchar(20)" json:"payment_type"`
	Status        CommissionStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaidAt        *time.Time       `json:"paid_at,omitempty"`
}
