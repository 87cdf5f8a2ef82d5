package models

import "time"

// Trade is one imported broker fill pair (entry + exit).
type Trade struct {
	BaseModel
	UserID   string    `gorm:"not null;index" json:"user_id"`
	BatchID  string    `gorm:"index" json:"batch_id"` // import batch
	Broker   string    `gorm:"type:varchar(30)" json:"broker"`
	Symbol   string    `gorm:"not null;index" json:"symbol"`
	Side     TradeSide `gorm:"type:varchar(10);not null" json:"side"`
	Quantity float64   `gorm:"not null" json:"quantity"`

	EntryPrice float64   `gorm:"not null" json:"entry_price"`
	ExitPrice  float64   `gorm:"not null" json:"exit_price"`
	EntryTime  time.Time `gorm:"index" json:"entry_time"`
	ExitTime   time.Time `json:"exit_time"`

	Fees float64 `gorm:"default:0" json:"fees"`

	// PnL is computed at import time: (exit-entry)*qty*multiplier*sign - fees.
	PnL             float64 `gorm:"column:pnl" json:"pnl"`
	Multiplier      float64 `gorm:"default:1" json:"multiplier"`
	DurationSeconds int64   `json:"duration_seconds"`
}

// ImportBatch groups the trades of one CSV upload and keeps the per-row
// error report around for the UI.
type ImportBatch struct {
	BaseModel
	UserID       string `gorm:"not null;index" json:"user_id"`
	Broker       string `gorm:"type:varchar(30)" json:"broker"`
	FileName     string `json:"file_name"`
	RowCount     int    `json:"row_count"`
	ImportedRows int    `json:"imported_rows"`
	SkippedRows  int    `json:"skipped_rows"`
	Errors       string `gorm:"type:text" json:"errors,omitempty"`
}
