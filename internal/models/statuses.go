package models

type UserStatus string
type UserRole string
type SubscriptionStatus string
type AccessLevel string
type PaymentStatus string
type ApplicationStatus string
type CommissionStatus string
type PaymentType string
type TradeSide string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleTrader UserRole = "trader"
	UserRoleAdmin  UserRole = "admin"

	SubscriptionStatusTrial    SubscriptionStatus = "trial"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusPending  SubscriptionStatus = "pending"

	AccessLevelFull          AccessLevel = "full_access"
	AccessLevelDashboardOnly AccessLevel = "dashboard_only"
	AccessLevelNone          AccessLevel = "none"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusDenied   ApplicationStatus = "denied"

	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"

	// PaymentType tags a provider event for the commission rate table.
	PaymentTypeSubscription PaymentType = "subscription"
	PaymentTypeOneTime      PaymentType = "one_time"
	PaymentTypeTrial        PaymentType = "trial"

	TradeSideLong  TradeSide = "long"
	TradeSideShort TradeSide = "short"
)
