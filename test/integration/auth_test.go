package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"wagyu_backend/internal/models"
	"wagyu_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_StartsTrial(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	email := helpers.UniqueEmail("register")
	body := map[string]interface{}{
		"email":        email,
		"password":     "long-enough-password",
		"display_name": "New Trader",
	}

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", body)

	assert.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)
	assert.Contains(t, bodyStr, "access_token")
	assert.Contains(t, bodyStr, "refresh_token")

	// Registration must open a trial with full journal access.
	var user models.User
	require.NoError(t, ts.DB.Where("email = ?", email).First(&user).Error)

	var sub models.Subscription
	require.NoError(t, ts.DB.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status)
	assert.Equal(t, models.AccessLevelFull, sub.AccessLevel)
	require.NotNil(t, sub.TrialEndDate)
	assert.True(t, sub.TrialEndDate.After(sub.CreatedAt))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	email := helpers.UniqueEmail("duplicate")
	helpers.CreateUser(t, ts.DB, &models.User{
		Email:        email,
		PasswordHash: "existing-password",
		DisplayName:  "First User",
		Role:         models.UserRoleTrader,
	})

	body := map[string]interface{}{
		"email":        email,
		"password":     "another-password-123",
		"display_name": "Second User",
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", body)

	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, bodyStr, "Email already in use")
}

func TestRegister_WeakPassword(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	body := map[string]interface{}{
		"email":        helpers.UniqueEmail("weak"),
		"password":     "short",
		"display_name": "Weak Password",
	}
	res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", body)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	email := helpers.UniqueEmail("login")
	helpers.CreateUser(t, ts.DB, &models.User{
		Email:        email,
		PasswordHash: "correct-password",
		DisplayName:  "Login User",
		Role:         models.UserRoleTrader,
	})

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "correct-password",
	})

	assert.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)
	assert.Contains(t, bodyStr, "access_token")
	assert.Contains(t, bodyStr, email)
}

func TestLogin_BadPassword(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	email := helpers.UniqueEmail("badpass")
	helpers.CreateUser(t, ts.DB, &models.User{
		Email:        email,
		PasswordHash: "correct-password",
		DisplayName:  "Bad Password",
		Role:         models.UserRoleTrader,
	})

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "WRONG-password",
	})

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, bodyStr, "Invalid email or password")
}

func TestRefreshToken_Rotation(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	email := helpers.UniqueEmail("refresh")
	helpers.CreateUser(t, ts.DB, &models.User{
		Email:        email,
		PasswordHash: "rotation-password",
		DisplayName:  "Refresh User",
		Role:         models.UserRoleTrader,
	})

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "rotation-password",
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	var loginResp struct {
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &loginResp))
	require.NotEmpty(t, loginResp.RefreshToken)

	// First refresh succeeds and issues a new pair.
	res, bodyStr = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": loginResp.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)
	assert.Contains(t, bodyStr, "access_token")

	// The presented token was rotated out; replaying it must fail.
	res, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{
		"refresh_token": loginResp.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestGetProfile(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)

	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/me", token, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, user.Email)
}

func TestGetProfile_Unauthenticated(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/me", "", nil)

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
