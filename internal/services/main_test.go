package services

import (
	"os"
	"testing"

	"wagyu_backend/internal/config"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{}
	config.AppConfig.JWT.Secret = "unit-test-secret"
	config.AppConfig.JWT.TTL = 60
	config.AppConfig.Billing.TrialDays = 14
	config.AppConfig.Affiliate.SubscriptionRate = 0.30
	config.AppConfig.Affiliate.OneTimeRate = 0.20
	config.AppConfig.Affiliate.MinimumPayout = 1.00
	config.AppConfig.Affiliate.CodeLength = 8

	os.Exit(m.Run())
}
