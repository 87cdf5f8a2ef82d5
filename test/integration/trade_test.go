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

const tradovateCSV = `symbol,qty,buyPrice,sellPrice,boughtTimestamp,soldTimestamp
NQM4,2,19500.25,19510.25,01/02/2024 09:30:00,01/02/2024 09:45:00
ESM4,1,5500.00,5495.50,01/02/2024 10:00:00,01/02/2024 10:20:00
NQM4,not-a-number,19500,19501,01/02/2024 11:00:00,01/02/2024 11:05:00
`

func TestImportCSV_Tradovate(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	res, bodyStr := ts.SendCSVImport(t, token, "tradovate", "performance.csv", tradovateCSV)
	require.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)

	var result struct {
		BatchID      string `json:"batch_id"`
		RowCount     int    `json:"row_count"`
		ImportedRows int    `json:"imported_rows"`
		SkippedRows  int    `json:"skipped_rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &result))
	assert.Equal(t, 3, result.RowCount)
	assert.Equal(t, 2, result.ImportedRows)
	assert.Equal(t, 1, result.SkippedRows, "the bad quantity row must be skipped, not abort the import")
	assert.NotEmpty(t, result.BatchID)

	// NQ carries a 20x contract multiplier: 10 points * 2 contracts * 20.
	var nqTrade models.Trade
	require.NoError(t, ts.DB.Where("user_id = ? AND symbol = ?", user.ID, "NQM4").First(&nqTrade).Error)
	assert.Equal(t, models.TradeSideLong, nqTrade.Side)
	assert.InDelta(t, 400.0, nqTrade.PnL, 1e-9)
	assert.InDelta(t, 20.0, nqTrade.Multiplier, 1e-9)
	assert.Equal(t, int64(900), nqTrade.DurationSeconds)
}

func TestImportCSV_UnsupportedBroker(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	res, bodyStr := ts.SendCSVImport(t, token, "robinhood", "trades.csv", tradovateCSV)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, bodyStr, "Unsupported broker")
}

func TestListTrades_FilterBySymbol(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	res, bodyStr := ts.SendCSVImport(t, token, "tradovate", "performance.csv", tradovateCSV)
	require.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)

	res, bodyStr = ts.SendRequest(t, http.MethodGet, "/api/v1/trades?symbol=ESM4", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var list struct {
		Trades []struct {
			Symbol string `json:"symbol"`
		} `json:"trades"`
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &list))
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, "ESM4", list.Trades[0].Symbol)
}

func TestAnalytics(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	res, bodyStr := ts.SendCSVImport(t, token, "tradovate", "performance.csv", tradovateCSV)
	require.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)

	res, bodyStr = ts.SendRequest(t, http.MethodGet, "/api/v1/trades/analytics", token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	var analytics struct {
		TotalTrades int64   `json:"total_trades"`
		WinRate     float64 `json:"win_rate"`
		TotalPnL    float64 `json:"total_pnl"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &analytics))
	assert.Equal(t, int64(2), analytics.TotalTrades)
	assert.InDelta(t, 0.5, analytics.WinRate, 1e-9)
	// NQ long +400, ES long -4.5 points * 50 = -225.
	assert.InDelta(t, 175.0, analytics.TotalPnL, 1e-9)
}

func TestTrades_RequireSubscription(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, _ := helpers.CreateTrader(t, ts.DB)

	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/trades", token, nil)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, bodyStr, "subscription")
}

func TestTrades_DashboardOnlyBlockedFromJournal(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusActive, models.AccessLevelDashboardOnly)

	// The journal is off limits.
	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/trades", token, nil)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, bodyStr, "dashboard")

	// The dashboard endpoint still works.
	res, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/trades/analytics/dashboard", token, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestDeleteBatch_RemovesTrades(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	token, user := helpers.CreateTrader(t, ts.DB)
	helpers.GrantSubscription(t, ts.DB, user.ID, models.SubscriptionStatusTrial, models.AccessLevelFull)

	res, bodyStr := ts.SendCSVImport(t, token, "tradovate", "performance.csv", tradovateCSV)
	require.Equal(t, http.StatusCreated, res.StatusCode, "response: %s", bodyStr)

	var result struct {
		BatchID string `json:"batch_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &result))

	res, bodyStr = ts.SendRequest(t, http.MethodDelete, "/api/v1/trades/batches/"+result.BatchID, token, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, "response: %s", bodyStr)

	var count int64
	require.NoError(t, ts.DB.Model(&models.Trade{}).Where("batch_id = ?", result.BatchID).Count(&count).Error)
	assert.Zero(t, count)
}
