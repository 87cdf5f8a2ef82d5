package services

import (
	"testing"

	"wagyu_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestBuildAnalytics(t *testing.T) {
	agg := &repositories.TradeAggregates{
		TotalTrades:  10,
		WinningCount: 6,
		LosingCount:  4,
		TotalPnL:     800,
		GrossProfit:  1200,
		GrossLoss:    -400,
		TotalFees:    42.50,
		LargestWin:   500,
		LargestLoss:  -150,
		AvgDuration:  360,
	}

	resp := buildAnalytics(agg)

	assert.InDelta(t, 0.6, resp.WinRate, 1e-9)
	assert.InDelta(t, 3.0, resp.ProfitFactor, 1e-9)
	assert.InDelta(t, 200.0, resp.AvgWin, 1e-9)
	assert.InDelta(t, -100.0, resp.AvgLoss, 1e-9)
	assert.Equal(t, int64(10), resp.TotalTrades)
	assert.InDelta(t, 800.0, resp.TotalPnL, 1e-9)
}

func TestBuildAnalytics_NoLosses(t *testing.T) {
	agg := &repositories.TradeAggregates{
		TotalTrades:  3,
		WinningCount: 3,
		GrossProfit:  300,
		TotalPnL:     300,
	}

	resp := buildAnalytics(agg)

	assert.InDelta(t, 1.0, resp.WinRate, 1e-9)
	// No loss side: the profit factor degenerates to gross profit.
	assert.InDelta(t, 300.0, resp.ProfitFactor, 1e-9)
	assert.Zero(t, resp.AvgLoss)
}

func TestBuildAnalytics_Empty(t *testing.T) {
	resp := buildAnalytics(&repositories.TradeAggregates{})

	assert.Zero(t, resp.WinRate)
	assert.Zero(t, resp.ProfitFactor)
	assert.Zero(t, resp.TotalTrades)
}
