package services

import (
	"wagyu_backend/internal/email"
	"wagyu_backend/internal/repositories"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	AuthService         AuthService
	SubscriptionService SubscriptionService
	BillingService      BillingService
	AffiliateService    AffiliateService
	TradeService        TradeService
	EmailProvider       email.Provider
}

// NewServiceContainer wires repositories into services. Repositories are
// stateless; every call receives the request-scoped *gorm.DB.
func NewServiceContainer(emailProvider email.Provider) *ServiceContainer {
	userRepo := repositories.NewUserRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()
	affiliateRepo := repositories.NewAffiliateRepository()
	tradeRepo := repositories.NewTradeRepository()

	affiliateService := NewAffiliateService(affiliateRepo, userRepo, emailProvider)

	return &ServiceContainer{
		AuthService:         NewAuthService(userRepo, subscriptionRepo, affiliateRepo, emailProvider),
		SubscriptionService: NewSubscriptionService(subscriptionRepo),
		BillingService:      NewBillingService(subscriptionRepo, userRepo, affiliateService),
		AffiliateService:    affiliateService,
		TradeService:        NewTradeService(tradeRepo),
		EmailProvider:       emailProvider,
	}
}
