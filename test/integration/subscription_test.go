package integration_test

import (
	"net/http"
	"testing"

	"wagyu_backend/internal/models"
	"wagyu_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListPlans_Public(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	createMonthlyPlan(t, ts.DB)

	// No token: the pricing page loads plans before login.
	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/plans", "", nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, "Pro Monthly")
}

func TestGetSubscription_Trial(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/subscription", token, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, "trial")
	assert.Contains(t, bodyStr, "full_access")
}

func TestCancelSubscription(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	sub := helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusActive, models.AccessLevelFull)

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/subscription/cancel", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	// Access is kept until the paid period runs out.
	var updated models.Subscription
	require.NoError(t, ts.DB.First(&updated, "id = ?", sub.ID).Error)
	assert.Equal(t, models.SubscriptionStatusCanceled, updated.Status)
	assert.True(t, updated.CancelAtPeriodEnd)
	assert.Equal(t, models.AccessLevelFull, updated.AccessLevel)

	// Cancelling twice is an error.
	res, bodyStr = ts.SendRequest(t, http.MethodPost, "/api/v1/subscription/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, bodyStr, "already cancelled")
}

func TestCancelSubscription_TrialRejected(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/subscription/cancel", token, nil)

	assert.Equal(t, http.StatusConflict, res.StatusCode)
}

func TestAdminPlans_ForbiddenForTrader(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, _ := helpers.CreateTrader(t, ts.DB)

	body := map[string]interface{}{
		"name":     "Sneaky Plan",
		"price":    1,
		"duration": "monthly",
	}
	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/plans", token, body)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}

func TestAdminCreateAndUpdatePlan(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	adminToken, _ := helpers.CreateAdmin(t, ts.DB)

	body := map[string]interface{}{
		"name":         "Pro Yearly",
		"price":        490,
		"currency":     "USD",
		"duration":     "yearly",
		"access_level": "full_access",
		"features":     []string{"journal", "analytics"},
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/plans", adminToken, body)
	require.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)

	var plan models.SubscriptionPlan
	require.NoError(t, ts.DB.Where("name = ?", "Pro Yearly").First(&plan).Error)
	assert.Equal(t, 490.0, plan.Price)

	newPrice := 390
	res, bodyStr = ts.SendRequest(t, http.MethodPatch, "/api/v1/admin/plans/"+plan.ID, adminToken, map[string]interface{}{
		"price": newPrice,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	require.NoError(t, ts.DB.First(&plan, "id = ?", plan.ID).Error)
	assert.Equal(t, 390.0, plan.Price)
}
