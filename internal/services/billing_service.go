package services

import (
	"time"

	"wagyu_backend/internal/billing"
	"wagyu_backend/internal/config"
	"wagyu_backend/internal/logger"
	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// BillingService turns verified provider webhook events into subscription
// state and commission records.
type BillingService interface {
	ProcessWebhook(db *gorm.DB, payload []byte, signatureHeader string) error
}

type BillingServiceImpl struct {
	subscriptionRepo repositories.SubscriptionRepository
	userRepo         repositories.UserRepository
	affiliateService AffiliateService
}

func NewBillingService(
	subscriptionRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	affiliateService AffiliateService,
) BillingService {
	return &BillingServiceImpl{
		subscriptionRepo: subscriptionRepo,
		userRepo:         userRepo,
		affiliateService: affiliateService,
	}
}

// ProcessWebhook verifies the signature, decodes the event and dispatches.
// Signature and shape errors surface to the caller; failures inside event
// handling are logged so the provider does not retry forever.
func (s *BillingServiceImpl) ProcessWebhook(db *gorm.DB, payload []byte, signatureHeader string) error {
	cfg := config.GetConfig()
	tolerance := time.Duration(cfg.Billing.ToleranceSeconds) * time.Second

	if err := billing.VerifySignature(payload, signatureHeader, cfg.Billing.WebhookSecret, tolerance, time.Now()); err != nil {
		return apperrors.ErrInvalidWebhookSignature.WithError(err)
	}

	event, err := billing.ParseEvent(payload)
	if err != nil {
		return apperrors.NewBadRequestError("Malformed webhook payload").WithError(err)
	}

	start := time.Now()
	var handlerErr error
	switch event.Type {
	case billing.EventSubscriptionCreated:
		handlerErr = s.handleSubscriptionCreated(db, event)
	case billing.EventInvoicePaid:
		handlerErr = s.handlePayment(db, event, models.PaymentTypeSubscription)
	case billing.EventPaymentSucceeded:
		handlerErr = s.handlePayment(db, event, models.PaymentTypeOneTime)
	case billing.EventCheckoutCompleted:
		if event.Data.Object.Mode == "payment" {
			handlerErr = s.handlePayment(db, event, models.PaymentTypeOneTime)
		} else {
			handlerErr = s.handlePayment(db, event, models.PaymentTypeSubscription)
		}
	default:
		logger.Debug("ignoring webhook event", "type", event.Type, "event_id", event.ID)
	}
	logger.WebhookLog(event.Type, event.ID, time.Since(start), handlerErr)

	return nil
}

// handleSubscriptionCreated links the provider identifiers onto the user's
// subscription. Activation waits for the first payment event.
func (s *BillingServiceImpl) handleSubscriptionCreated(db *gorm.DB, event *billing.Event) error {
	sub, err := s.resolveSubscription(db, event)
	if err != nil {
		return err
	}

	obj := event.Data.Object
	sub.ProviderCustomerID = obj.CustomerID
	if obj.ID != "" {
		sub.ProviderSubscriptionID = obj.ID
	}
	if sub.Status == models.SubscriptionStatusExpired {
		sub.Status = models.SubscriptionStatusPending
	}
	applyPeriod(sub, obj)

	return s.subscriptionRepo.Update(db, sub)
}

// handlePayment records the transaction, activates the subscription for
// subscription payments and credits the referring affiliate. The unique
// event ID makes redeliveries no-ops.
func (s *BillingServiceImpl) handlePayment(db *gorm.DB, event *billing.Event, paymentType models.PaymentType) error {
	sub, err := s.resolveSubscription(db, event)
	if err != nil {
		return err
	}

	amount := event.AmountDollars()
	if amount < 0 {
		return apperrors.ErrInvalidPaymentAmount
	}

	now := time.Now()
	payment := &models.PaymentTransaction{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		Amount:         amount,
		Currency:       currencyOrDefault(event.Data.Object.Currency),
		Type:           paymentType,
		Status:         models.PaymentStatusPaid,
		EventID:        event.ID,
		EventType:      event.Type,
		PaidAt:         &now,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := s.subscriptionRepo.CreatePayment(tx, payment); err != nil {
			if apperrors.Is(err, repositories.ErrDuplicateEvent) {
				logger.Debug("duplicate webhook event", "event_id", event.ID)
				return nil
			}
			return err
		}

		obj := event.Data.Object
		switch paymentType {
		case models.PaymentTypeSubscription:
			sub.Status = models.SubscriptionStatusActive
			sub.AccessLevel = models.AccessLevelFull
			sub.CancelAtPeriodEnd = false
			sub.CancelledAt = nil
			if obj.CustomerID != "" {
				sub.ProviderCustomerID = obj.CustomerID
			}
			if obj.SubscriptionID != "" {
				sub.ProviderSubscriptionID = obj.SubscriptionID
			}
			applyPeriod(sub, obj)
			if sub.CurrentPeriodStart == nil {
				sub.CurrentPeriodStart = &now
			}
			if sub.CurrentPeriodEnd == nil {
				end := s.periodEndFor(tx, sub, now)
				sub.CurrentPeriodEnd = &end
			}
			if planID := obj.Metadata["plan_id"]; planID != "" {
				sub.PlanID = &planID
			}
		case models.PaymentTypeOneTime:
			// A one-time purchase unlocks the dashboard when the user has no
			// running subscription.
			if sub.Status != models.SubscriptionStatusActive {
				sub.AccessLevel = models.AccessLevelDashboardOnly
			}
		}

		if err := s.subscriptionRepo.Update(tx, sub); err != nil {
			return err
		}

		return s.affiliateService.RecordCommission(tx, payment)
	})
}

// resolveSubscription finds the subscription the event refers to, preferring
// the user_id stashed in metadata at checkout over the provider customer ID.
func (s *BillingServiceImpl) resolveSubscription(db *gorm.DB, event *billing.Event) (*models.Subscription, error) {
	obj := event.Data.Object

	if userID := obj.Metadata["user_id"]; userID != "" {
		sub, err := s.subscriptionRepo.FindByUserID(db, userID)
		if err == nil {
			return sub, nil
		}
		if !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, err
		}
	}

	if obj.CustomerID != "" {
		sub, err := s.subscriptionRepo.FindByProviderCustomerID(db, obj.CustomerID)
		if err == nil {
			return sub, nil
		}
		if !apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, err
		}
	}

	return nil, apperrors.ErrNotFound(repositories.ErrSubscriptionNotFound).
		WithDetails(map[string]string{"event_id": event.ID})
}

func (s *BillingServiceImpl) periodEndFor(db *gorm.DB, sub *models.Subscription, start time.Time) time.Time {
	if sub.PlanID != nil {
		if plan, err := s.subscriptionRepo.FindPlanByID(db, *sub.PlanID); err == nil && plan.Duration == "yearly" {
			return start.AddDate(1, 0, 0)
		}
	}
	return start.AddDate(0, 1, 0)
}

func applyPeriod(sub *models.Subscription, obj billing.EventObject) {
	if obj.PeriodStart > 0 {
		start := time.Unix(obj.PeriodStart, 0)
		sub.CurrentPeriodStart = &start
	}
	if obj.PeriodEnd > 0 {
		end := time.Unix(obj.PeriodEnd, 0)
		sub.CurrentPeriodEnd = &end
	}
	if obj.TrialEnd > 0 {
		trialEnd := time.Unix(obj.TrialEnd, 0)
		sub.TrialEndDate = &trialEnd
	}
}

func currencyOrDefault(currency string) string {
	if currency == "" {
		return "USD"
	}
	return currency
}
