package repositories

import (
	"errors"
	"time"

	"wagyu_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrTradeNotFound = errors.New("trade not found")
	ErrBatchNotFound = errors.New("import batch not found")
)

// TradeFilter narrows trade queries. Zero values mean no constraint.
type TradeFilter struct {
	Symbol string
	Side   models.TradeSide
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// TradeAggregates holds the raw sums the analytics service turns into
// win rate, profit factor and averages.
type TradeAggregates struct {
	TotalTrades  int64
	WinningCount int64
	LosingCount  int64
	TotalPnL     float64
	GrossProfit  float64
	GrossLoss    float64
	TotalFees    float64
	LargestWin   float64
	LargestLoss  float64
	AvgDuration  float64
}

// DailyPnL is one calendar-day bucket for the equity curve.
type DailyPnL struct {
	Day        time.Time `json:"day"`
	TradeCount int64     `json:"trade_count"`
	PnL        float64   `json:"pnl"`
}

// SymbolStats is a per-symbol breakdown row.
type SymbolStats struct {
	Symbol       string  `json:"symbol"`
	TradeCount   int64   `json:"trade_count"`
	WinningCount int64   `json:"winning_count"`
	PnL          float64 `json:"pnl"`
}

type TradeRepository interface {
	CreateBatch(db *gorm.DB, batch *models.ImportBatch) error
	UpdateBatch(db *gorm.DB, batch *models.ImportBatch) error
	FindBatchByID(db *gorm.DB, userID, batchID string) (*models.ImportBatch, error)
	FindBatchesByUser(db *gorm.DB, userID string, limit, offset int) ([]models.ImportBatch, error)

	CreateTrades(db *gorm.DB, trades []models.Trade) error
	FindByID(db *gorm.DB, userID, tradeID string) (*models.Trade, error)
	FindByUser(db *gorm.DB, userID string, filter TradeFilter) ([]models.Trade, error)
	CountByUser(db *gorm.DB, userID string, filter TradeFilter) (int64, error)
	Delete(db *gorm.DB, userID, tradeID string) error
	DeleteBatch(db *gorm.DB, userID, batchID string) (int64, error)

	Aggregates(db *gorm.DB, userID string, filter TradeFilter) (*TradeAggregates, error)
	DailyPnL(db *gorm.DB, userID string, filter TradeFilter) ([]DailyPnL, error)
	SymbolStats(db *gorm.DB, userID string, filter TradeFilter) ([]SymbolStats, error)
}

type TradeRepositoryImpl struct{}

func NewTradeRepository() TradeRepository {
	return &TradeRepositoryImpl{}
}

// Batch operations

func (r *TradeRepositoryImpl) CreateBatch(db *gorm.DB, batch *models.ImportBatch) error {
	return db.Create(batch).Error
}

func (r *TradeRepositoryImpl) UpdateBatch(db *gorm.DB, batch *models.ImportBatch) error {
	result := db.Model(batch).Updates(map[string]interface{}{
		"row_count":     batch.RowCount,
		"imported_rows": batch.ImportedRows,
		"skipped_rows":  batch.SkippedRows,
		"errors":        batch.Errors,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBatchNotFound
	}
	return nil
}

func (r *TradeRepositoryImpl) FindBatchByID(db *gorm.DB, userID, batchID string) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := db.First(&batch, "id = ? AND user_id = ?", batchID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return &batch, nil
}

func (r *TradeRepositoryImpl) FindBatchesByUser(db *gorm.DB, userID string, limit, offset int) ([]models.ImportBatch, error) {
	var batches []models.ImportBatch
	err := db.Where("user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&batches).Error
	return batches, err
}

// Trade operations

func (r *TradeRepositoryImpl) CreateTrades(db *gorm.DB, trades []models.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	return db.CreateInBatches(trades, 200).Error
}

func (r *TradeRepositoryImpl) FindByID(db *gorm.DB, userID, tradeID string) (*models.Trade, error) {
	var trade models.Trade
	err := db.First(&trade, "id = ? AND user_id = ?", tradeID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTradeNotFound
		}
		return nil, err
	}
	return &trade, nil
}

func applyTradeFilter(query *gorm.DB, filter TradeFilter) *gorm.DB {
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.Side != "" {
		query = query.Where("side = ?", filter.Side)
	}
	if filter.From != nil {
		query = query.Where("entry_time >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("entry_time < ?", *filter.To)
	}
	return query
}

func (r *TradeRepositoryImpl) FindByUser(db *gorm.DB, userID string, filter TradeFilter) ([]models.Trade, error) {
	var trades []models.Trade
	query := applyTradeFilter(db.Where("user_id = ?", userID), filter).
		Order("entry_time DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := query.Find(&trades).Error
	return trades, err
}

func (r *TradeRepositoryImpl) CountByUser(db *gorm.DB, userID string, filter TradeFilter) (int64, error) {
	var count int64
	err := applyTradeFilter(db.Model(&models.Trade{}).Where("user_id = ?", userID), filter).
		Count(&count).Error
	return count, err
}

func (r *TradeRepositoryImpl) Delete(db *gorm.DB, userID, tradeID string) error {
	result := db.Where("id = ? AND user_id = ?", tradeID, userID).Delete(&models.Trade{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTradeNotFound
	}
	return nil
}

// DeleteBatch removes a batch and all its trades.
func (r *TradeRepositoryImpl) DeleteBatch(db *gorm.DB, userID, batchID string) (int64, error) {
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("batch_id = ? AND user_id = ?", batchID, userID).Delete(&models.Trade{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected

		batchResult := tx.Where("id = ? AND user_id = ?", batchID, userID).Delete(&models.ImportBatch{})
		if batchResult.Error != nil {
			return batchResult.Error
		}
		if batchResult.RowsAffected == 0 {
			return ErrBatchNotFound
		}
		return nil
	})
	return deleted, err
}

// Analytics

func (r *TradeRepositoryImpl) Aggregates(db *gorm.DB, userID string, filter TradeFilter) (*TradeAggregates, error) {
	var agg TradeAggregates
	err := applyTradeFilter(db.Model(&models.Trade{}).Where("user_id = ?", userID), filter).
		Select(`COUNT(*) AS total_trades,
			COUNT(*) FILTER (WHERE pnl > 0) AS winning_count,
			COUNT(*) FILTER (WHERE pnl < 0) AS losing_count,
			COALESCE(SUM(pnl), 0) AS total_pn_l,
			COALESCE(SUM(pnl) FILTER (WHERE pnl > 0), 0) AS gross_profit,
			COALESCE(SUM(pnl) FILTER (WHERE pnl < 0), 0) AS gross_loss,
			COALESCE(SUM(fees), 0) AS total_fees,
			COALESCE(MAX(pnl), 0) AS largest_win,
			COALESCE(MIN(pnl), 0) AS largest_loss,
			COALESCE(AVG(duration_seconds), 0) AS avg_duration`).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *TradeRepositoryImpl) DailyPnL(db *gorm.DB, userID string, filter TradeFilter) ([]DailyPnL, error) {
	var rows []DailyPnL
	err := applyTradeFilter(db.Model(&models.Trade{}).Where("user_id = ?", userID), filter).
		Select(`DATE_TRUNC('day', entry_time) AS day,
			COUNT(*) AS trade_count,
			COALESCE(SUM(pnl), 0) AS pn_l`).
		Group("DATE_TRUNC('day', entry_time)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *TradeRepositoryImpl) SymbolStats(db *gorm.DB, userID string, filter TradeFilter) ([]SymbolStats, error) {
	var rows []SymbolStats
	err := applyTradeFilter(db.Model(&models.Trade{}).Where("user_id = ?", userID), filter).
		Select(`symbol,
			COUNT(*) AS trade_count,
			COUNT(*) FILTER (WHERE pnl > 0) AS winning_count,
			COALESCE(SUM(pnl), 0) AS pn_l`).
		Group("symbol").
		Order("pn_l DESC").
		Scan(&rows).Error
	return rows, err
}
