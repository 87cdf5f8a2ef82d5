package validator

import (
	"log"

	"wagyu_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules installs the domain status rules.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-subscription-status", validateSubscriptionStatus)
	mustRegister("is-access-level", validateAccessLevel)
	mustRegister("is-application-status", validateApplicationStatus)
	mustRegister("is-commission-status", validateCommissionStatus)
	mustRegister("is-trade-side", validateTradeSide)
	mustRegister("is-broker", validateBroker)
}

// Empty values pass through: 'required' owns presence checks.

func validateSubscriptionStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.SubscriptionStatus(value) {
	case models.SubscriptionStatusTrial, models.SubscriptionStatusActive,
		models.SubscriptionStatusCanceled, models.SubscriptionStatusExpired,
		models.SubscriptionStatusPending:
		return true
	default:
		return false
	}
}

func validateAccessLevel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.AccessLevel(value) {
	case models.AccessLevelFull, models.AccessLevelDashboardOnly, models.AccessLevelNone:
		return true
	default:
		return false
	}
}

func validateApplicationStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.ApplicationStatus(value) {
	case models.ApplicationStatusPending, models.ApplicationStatusApproved, models.ApplicationStatusDenied:
		return true
	default:
		return false
	}
}

func validateCommissionStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.CommissionStatus(value) {
	case models.CommissionStatusPending, models.CommissionStatusPaid, models.CommissionStatusCancelled:
		return true
	default:
		return false
	}
}

func validateTradeSide(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.TradeSide(value) {
	case models.TradeSideLong, models.TradeSideShort:
		return true
	default:
		return false
	}
}

func validateBroker(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch value {
	case "tradovate", "ninjatrader":
		return true
	default:
		return false
	}
}
