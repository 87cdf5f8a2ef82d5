package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffiliate_ApplyAndApprove(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	adminToken, _ := helpers.CreateAdmin(t, ts.DB)

	applyBody := map[string]interface{}{
		"full_name":      "Aspiring Partner",
		"contact_email":  user.Email,
		"social_links":   "https://youtube.com/@aspiring",
		"promotion_plan": "Weekly trade recap videos with a signup link in the description.",
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/affiliate/apply", token, applyBody)
	require.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)

	// Applying again while the first application is open is rejected.
	res, bodyStr = ts.SendRequest(t, http.MethodPost, "/api/v1/affiliate/apply", token, applyBody)
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, bodyStr, "pending")

	var application models.AffiliateApplication
	require.NoError(t, ts.DB.Where("user_id = ?", user.ID).First(&application).Error)

	res, bodyStr = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/affiliate/applications/"+application.ID+"/review", adminToken, map[string]interface{}{
		"approve": true,
		"note":    "Solid reach, welcome aboard.",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	// Approval creates the affiliate account with a referral code.
	res, bodyStr = ts.SendRequest(t, http.MethodGet, "/api/v1/affiliate/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	var dashboard struct {
		ReferralCode string `json:"referral_code"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &dashboard))
	assert.Len(t, dashboard.ReferralCode, 8)

	// Reviewing the same application twice is an error.
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/admin/affiliate/applications/"+application.ID+"/review", adminToken, map[string]interface{}{
		"approve": false,
	})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestAffiliate_ReviewRequiresAdmin(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, _ := helpers.CreateTrader(t, ts.DB)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/affiliate/applications/some-id/review", token, map[string]interface{}{
		"approve": true,
	})

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestAffiliate_DashboardRequiresAffiliate(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, _ := helpers.CreateTrader(t, ts.DB)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/affiliate/dashboard", token, nil)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestRegister_CapturesReferralCode(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, partner := helpers.CreateTrader(t, ts.DB)
	affiliate := helpers.CreateAffiliateAccount(t, ts.DB, partner, "SIGNUP42")

	email := helpers.UniqueEmail("referred")
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":         email,
		"password":      "referred-password-123",
		"display_name":  "Referred Trader",
		"referral_code": "signup42", // codes are case-insensitive
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)

	var user models.User
	require.NoError(t, ts.DB.Where("email = ?", email).First(&user).Error)

	var referral models.Referral
	require.NoError(t, ts.DB.Where("referred_user_id = ?", user.ID).First(&referral).Error)
	assert.Equal(t, affiliate.ID, referral.AffiliateID)
	assert.Equal(t, "SIGNUP42", referral.ReferralCode)

	var updated models.Affiliate
	require.NoError(t, ts.DB.First(&updated, "id = ?", affiliate.ID).Error)
	assert.Equal(t, 1, updated.ReferralCount)
}

func TestReferral_FirstCodeWins(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, firstPartner := helpers.CreateTrader(t, ts.DB)
	firstAffiliate := helpers.CreateAffiliateAccount(t, ts.DB, firstPartner, "FIRST111")
	_, secondPartner := helpers.CreateTrader(t, ts.DB)
	secondAffiliate := helpers.CreateAffiliateAccount(t, ts.DB, secondPartner, "SECOND22")

	_, referred := helpers.CreateTrader(t, ts.DB)

	repo := repositories.NewAffiliateRepository()
	require.NoError(t, repo.CreateReferral(ts.DB, &models.Referral{
		AffiliateID:    firstAffiliate.ID,
		ReferredUserID: referred.ID,
		ReferralCode:   firstAffiliate.ReferralCode,
	}))

	// A later capture with a different code must not replace the first one.
	err := repo.CreateReferral(ts.DB, &models.Referral{
		AffiliateID:    secondAffiliate.ID,
		ReferredUserID: referred.ID,
		ReferralCode:   secondAffiliate.ReferralCode,
	})
	require.ErrorIs(t, err, repositories.ErrReferralExists)

	var referral models.Referral
	require.NoError(t, ts.DB.Where("referred_user_id = ?", referred.ID).First(&referral).Error)
	assert.Equal(t, firstAffiliate.ID, referral.AffiliateID)
	assert.Equal(t, "FIRST111", referral.ReferralCode)
}

func TestAffiliate_Payout(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, partner := helpers.CreateTrader(t, ts.DB)
	affiliate := helpers.CreateAffiliateAccount(t, ts.DB, partner, "PAYOUT99")
	adminToken, _ := helpers.CreateAdmin(t, ts.DB)

	_, referred := helpers.CreateTrader(t, ts.DB)
	referral := models.Referral{
		AffiliateID:    affiliate.ID,
		ReferredUserID: referred.ID,
		ReferralCode:   affiliate.ReferralCode,
	}
	require.NoError(t, ts.DB.Create(&referral).Error)

	require.NoError(t, ts.DB.Create(&models.Commission{
		AffiliateID:   affiliate.ID,
		ReferralID:    referral.ID,
		PaymentID:     "pay_" + helpers.UniqueEmail("payout"),
		Amount:        30,
		Rate:          0.30,
		PaymentAmount: 100,
		PaymentType:   models.PaymentTypeSubscription,
		Status:        models.CommissionStatusPending,
	}).Error)
	require.NoError(t, ts.DB.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
		Updates(map[string]interface{}{"total_earnings": 30, "pending_earnings": 30}).Error)

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/affiliate/payouts/"+partner.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)
	assert.Contains(t, bodyStr, "settled_commissions")

	var commission models.Commission
	require.NoError(t, ts.DB.Where("affiliate_id = ?", affiliate.ID).First(&commission).Error)
	assert.Equal(t, models.CommissionStatusPaid, commission.Status)
	assert.NotNil(t, commission.PaidAt)

	var updated models.Affiliate
	require.NoError(t, ts.DB.First(&updated, "id = ?", affiliate.ID).Error)
	assert.Zero(t, updated.PendingEarnings)
	assert.InDelta(t, 30.0, updated.PaidEarnings, 1e-9)
}

func TestAffiliate_PayoutSettlesOnlyFlippedCommissions(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, partner := helpers.CreateTrader(t, ts.DB)
	affiliate := helpers.CreateAffiliateAccount(t, ts.DB, partner, "DRIFT777")
	adminToken, _ := helpers.CreateAdmin(t, ts.DB)

	_, referred := helpers.CreateTrader(t, ts.DB)
	referral := models.Referral{
		AffiliateID:    affiliate.ID,
		ReferredUserID: referred.ID,
		ReferralCode:   affiliate.ReferralCode,
	}
	require.NoError(t, ts.DB.Create(&referral).Error)

	require.NoError(t, ts.DB.Create(&models.Commission{
		AffiliateID:   affiliate.ID,
		ReferralID:    referral.ID,
		PaymentID:     "pay_" + helpers.UniqueEmail("drift"),
		Amount:        30,
		Rate:          0.30,
		PaymentAmount: 100,
		PaymentType:   models.PaymentTypeSubscription,
		Status:        models.CommissionStatusPending,
	}).Error)

	// The affiliate row already carries earnings from a commission credited
	// through a path that has no pending commission row yet. The payout must
	// move only what it flips, not everything pending on the row.
	require.NoError(t, ts.DB.Model(&models.Affiliate{}).Where("id = ?", affiliate.ID).
		Updates(map[string]interface{}{"total_earnings": 50, "pending_earnings": 50}).Error)

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/affiliate/payouts/"+partner.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	var updated models.Affiliate
	require.NoError(t, ts.DB.First(&updated, "id = ?", affiliate.ID).Error)
	assert.InDelta(t, 20.0, updated.PendingEarnings, 1e-9)
	assert.InDelta(t, 30.0, updated.PaidEarnings, 1e-9)
}
