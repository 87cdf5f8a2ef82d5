package dto

import (
	"time"

	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
)

type TradeResponse struct {
	ID              string           `json:"id"`
	Symbol          string           `json:"symbol"`
	Side            models.TradeSide `json:"side"`
	Quantity        float64          `json:"quantity"`
	EntryPrice      float64          `json:"entry_price"`
	ExitPrice       float64          `json:"exit_price"`
	EntryTime       time.Time        `json:"entry_time"`
	ExitTime        time.Time        `json:"exit_time"`
	Fees            float64          `json:"fees"`
	PnL             float64          `json:"pnl"`
	DurationSeconds int64            `json:"duration_seconds"`
	Broker          string           `json:"broker"`
	BatchID         string           `json:"batch_id,omitempty"`
}

type TradeListResponse struct {
	Trades []TradeResponse `json:"trades"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

// ImportResult reports the outcome of one CSV upload.
type ImportResult struct {
	BatchID      string        `json:"batch_id"`
	RowCount     int           `json:"row_count"`
	ImportedRows int           `json:"imported_rows"`
	SkippedRows  int           `json:"skipped_rows"`
	Errors       []ImportError `json:"errors,omitempty"`
}

type ImportError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportBatchResponse struct {
	ID           string    `json:"id"`
	Broker       string    `json:"broker"`
	FileName     string    `json:"file_name"`
	RowCount     int       `json:"row_count"`
	ImportedRows int       `json:"imported_rows"`
	SkippedRows  int       `json:"skipped_rows"`
	CreatedAt    time.Time `json:"created_at"`
}

// AnalyticsResponse is the dashboard stats block.
type AnalyticsResponse struct {
	TotalTrades  int64   `json:"total_trades"`
	WinningCount int64   `json:"winning_count"`
	LosingCount  int64   `json:"losing_count"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	TotalPnL     float64 `json:"total_pnl"`
	GrossProfit  float64 `json:"gross_profit"`
	GrossLoss    float64 `json:"gross_loss"`
	TotalFees    float64 `json:"total_fees"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
	AvgDuration  float64 `json:"avg_duration_seconds"`
}

type DashboardResponse struct {
	Stats    AnalyticsResponse          `json:"stats"`
	DailyPnL []repositories.DailyPnL    `json:"daily_pnl"`
	Symbols  []repositories.SymbolStats `json:"symbols"`
	Recent   []TradeResponse            `json:"recent_trades"`
}

func ToTradeResponse(t *models.Trade) TradeResponse {
	return TradeResponse{
		ID:              t.ID,
		Symbol:          t.Symbol,
		Side:            t.Side,
		Quantity:        t.Quantity,
		EntryPrice:      t.EntryPrice,
		ExitPrice:       t.ExitPrice,
		EntryTime:       t.EntryTime,
		ExitTime:        t.ExitTime,
		Fees:            t.Fees,
		PnL:             t.PnL,
		DurationSeconds: t.DurationSeconds,
		Broker:          t.Broker,
		BatchID:         t.BatchID,
	}
}

func ToImportBatchResponse(b *models.ImportBatch) ImportBatchResponse {
	return ImportBatchResponse{
		ID:           b.ID,
		Broker:       b.Broker,
		FileName:     b.FileName,
		RowCount:     b.RowCount,
		ImportedRows: b.ImportedRows,
		SkippedRows:  b.SkippedRows,
		CreatedAt:    b.CreatedAt,
	}
}
