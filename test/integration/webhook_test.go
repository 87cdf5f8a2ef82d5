package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"wagyu_backend/internal/billing"
	"wagyu_backend/internal/models"
	"wagyu_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// webhookEvent builds a signed provider event payload. Amounts are cents.
func webhookEvent(t *testing.T, eventType, userID string, cents int64, extra map[string]interface{}) ([]byte, string) {
	object := map[string]interface{}{
		"customer": "cus_test_" + userID[:8],
		"currency": "usd",
		"metadata": map[string]string{"user_id": userID},
	}
	switch eventType {
	case billing.EventInvoicePaid:
		object["amount_paid"] = cents
	case billing.EventPaymentSucceeded:
		object["amount"] = cents
	case billing.EventCheckoutCompleted:
		object["amount_total"] = cents
	}
	for k, v := range extra {
		object[k] = v
	}

	payload, err := json.Marshal(map[string]interface{}{
		"id":      fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type":    eventType,
		"created": time.Now().Unix(),
		"data":    map[string]interface{}{"object": object},
	})
	require.NoError(t, err)

	signature := billing.SignatureHeader(payload, time.Now().Unix(), webhookTestSecret)
	return payload, signature
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	payload := []byte(`{"id": "evt_forged", "type": "invoice.payment_succeeded"}`)
	signature := billing.SignatureHeader(payload, time.Now().Unix(), "wrong-secret")

	res, bodyStr := ts.SendWebhook(t, payload, signature)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, bodyStr, "signature")
}

func TestWebhook_RejectsStaleTimestamp(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	payload := []byte(`{"id": "evt_stale", "type": "invoice.payment_succeeded"}`)
	stale := time.Now().Add(-time.Hour).Unix()
	signature := billing.SignatureHeader(payload, stale, webhookTestSecret)

	res, _ := ts.SendWebhook(t, payload, signature)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestWebhook_InvoicePaidActivatesSubscription(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	payload, signature := webhookEvent(t, billing.EventInvoicePaid, user.ID, 4900, nil)
	res, bodyStr := ts.SendWebhook(t, payload, signature)

	assert.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)
	assert.Contains(t, bodyStr, "received")

	var sub models.Subscription
	require.NoError(t, ts.DB.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, models.AccessLevelFull, sub.AccessLevel)
	require.NotNil(t, sub.CurrentPeriodEnd)
	assert.True(t, sub.CurrentPeriodEnd.After(time.Now()))

	var payment models.PaymentTransaction
	require.NoError(t, ts.DB.Where("user_id = ?", user.ID).First(&payment).Error)
	assert.InDelta(t, 49.0, payment.Amount, 1e-9)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
}

func TestWebhook_RedeliveryIsIdempotent(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	payload, signature := webhookEvent(t, billing.EventInvoicePaid, user.ID, 4900, nil)

	res, _ := ts.SendWebhook(t, payload, signature)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// The provider redelivers the exact same event.
	res, _ = ts.SendWebhook(t, payload, signature)
	assert.Equal(t, http.StatusOK, res.StatusCode)

	var count int64
	require.NoError(t, ts.DB.Model(&models.PaymentTransaction{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "redelivery must not create a second payment")
}

func TestWebhook_OneTimePaymentGrantsDashboard(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusExpired, models.AccessLevelNone)

	payload, signature := webhookEvent(t, billing.EventPaymentSucceeded, user.ID, 9900, nil)
	res, _ := ts.SendWebhook(t, payload, signature)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var sub models.Subscription
	require.NoError(t, ts.DB.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, models.AccessLevelDashboardOnly, sub.AccessLevel)
}

func TestWebhook_CommissionForReferredUser(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	// An affiliate refers a user who then pays for a subscription.
	_, partner := helpers.CreateTrader(t, ts.DB)
	affiliate := helpers.CreateAffiliateAccount(t, ts.DB, partner, "COMMTEST")

	_, referred := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, referred.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)
	require.NoError(t, ts.DB.Create(&models.Referral{
		AffiliateID:    affiliate.ID,
		ReferredUserID: referred.ID,
		ReferralCode:   affiliate.ReferralCode,
	}).Error)

	payload, signature := webhookEvent(t, billing.EventInvoicePaid, referred.ID, 10000, nil)
	res, _ := ts.SendWebhook(t, payload, signature)
	require.Equal(t, http.StatusOK, res.StatusCode)

	// $100 at the 30% subscription rate.
	var commission models.Commission
	require.NoError(t, ts.DB.Where("affiliate_id = ?", affiliate.ID).First(&commission).Error)
	assert.InDelta(t, 30.0, commission.Amount, 1e-9)
	assert.InDelta(t, 0.30, commission.Rate, 1e-9)
	assert.Equal(t, models.CommissionStatusPending, commission.Status)

	var updated models.Affiliate
	require.NoError(t, ts.DB.First(&updated, "id = ?", affiliate.ID).Error)
	assert.InDelta(t, 30.0, updated.PendingEarnings, 1e-9)
	assert.InDelta(t, 30.0, updated.TotalEarnings, 1e-9)
}
