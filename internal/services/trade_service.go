package services

import (
	"encoding/json"
	"io"
	"strings"
	"time"

	"wagyu_backend/internal/importer"
	"wagyu_backend/internal/models"
	"wagyu_backend/internal/pnl"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/internal/services/dto"
	"wagyu_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const recentTradesLimit = 10

type TradeService interface {
	ImportCSV(db *gorm.DB, userID, broker, fileName string, file io.Reader, timezone string) (*dto.ImportResult, error)
	ListTrades(db *gorm.DB, userID string, filter repositories.TradeFilter) (*dto.TradeListResponse, error)
	GetTrade(db *gorm.DB, userID, tradeID string) (*dto.TradeResponse, error)
	DeleteTrade(db *gorm.DB, userID, tradeID string) error
	ListBatches(db *gorm.DB, userID string, limit, offset int) ([]dto.ImportBatchResponse, error)
	DeleteBatch(db *gorm.DB, userID, batchID string) (int64, error)

	Analytics(db *gorm.DB, userID string, filter repositories.TradeFilter) (*dto.AnalyticsResponse, error)
	Dashboard(db *gorm.DB, userID string, filter repositories.TradeFilter) (*dto.DashboardResponse, error)
}

type TradeServiceImpl struct {
	tradeRepo repositories.TradeRepository
}

func NewTradeService(tradeRepo repositories.TradeRepository) TradeService {
	return &TradeServiceImpl{tradeRepo: tradeRepo}
}

// ImportCSV parses the upload, computes PnL per row and stores the batch.
// Bad rows are skipped and reported back, never imported partially within a
// batch: either the batch lands with its good rows or nothing does.
func (s *TradeServiceImpl) ImportCSV(db *gorm.DB, userID, broker, fileName string, file io.Reader, timezone string) (*dto.ImportResult, error) {
	loc := time.UTC
	if timezone != "" {
		parsed, err := time.LoadLocation(timezone)
		if err != nil {
			return nil, apperrors.NewBadRequestError("Unknown timezone: " + timezone)
		}
		loc = parsed
	}

	parsed, rowErrors, err := importer.Parse(broker, file, loc)
	if err != nil {
		if strings.Contains(err.Error(), "unsupported broker") {
			return nil, apperrors.ErrUnsupportedBroker
		}
		return nil, apperrors.NewBadRequestError(err.Error())
	}
	if len(parsed) == 0 && len(rowErrors) == 0 {
		return nil, apperrors.ErrEmptyImport
	}

	batch := &models.ImportBatch{
		UserID:       userID,
		Broker:       strings.ToLower(broker),
		FileName:     fileName,
		RowCount:     len(parsed) + len(rowErrors),
		ImportedRows: len(parsed),
		SkippedRows:  len(rowErrors),
	}
	if len(rowErrors) > 0 {
		if encoded, err := json.Marshal(rowErrors); err == nil {
			batch.Errors = string(encoded)
		}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := s.tradeRepo.CreateBatch(tx, batch); err != nil {
			return err
		}

		trades := make([]models.Trade, 0, len(parsed))
		for _, p := range parsed {
			multiplier := pnl.Multiplier(p.Symbol)
			trades = append(trades, models.Trade{
				UserID:          userID,
				BatchID:         batch.ID,
				Broker:          batch.Broker,
				Symbol:          p.Symbol,
				Side:            p.Side,
				Quantity:        p.Quantity,
				EntryPrice:      p.EntryPrice,
				ExitPrice:       p.ExitPrice,
				EntryTime:       p.EntryTime,
				ExitTime:        p.ExitTime,
				Fees:            p.Fees,
				Multiplier:      multiplier,
				PnL:             pnl.Compute(p.Side, p.EntryPrice, p.ExitPrice, p.Quantity, multiplier, p.Fees),
				DurationSeconds: int64(pnl.Duration(p.EntryTime, p.ExitTime).Seconds()),
			})
		}
		return s.tradeRepo.CreateTrades(tx, trades)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := &dto.ImportResult{
		BatchID:      batch.ID,
		RowCount:     batch.RowCount,
		ImportedRows: batch.ImportedRows,
		SkippedRows:  batch.SkippedRows,
	}
	for _, re := range rowErrors {
		result.Errors = append(result.Errors, dto.ImportError{Line: re.Line, Reason: re.Reason})
	}
	return result, nil
}

func (s *TradeServiceImpl) ListTrades(db *gorm.DB, userID string, filter repositories.TradeFilter) (*dto.TradeListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	trades, err := s.tradeRepo.FindByUser(db, userID, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	total, err := s.tradeRepo.CountByUser(db, userID, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.TradeListResponse{
		Trades: make([]dto.TradeResponse, 0, len(trades)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i := range trades {
		resp.Trades = append(resp.Trades, dto.ToTradeResponse(&trades[i]))
	}
	return resp, nil
}

func (s *TradeServiceImpl) GetTrade(db *gorm.DB, userID, tradeID string) (*dto.TradeResponse, error) {
	trade, err := s.tradeRepo.FindByID(db, userID, tradeID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrTradeNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	resp := dto.ToTradeResponse(trade)
	return &resp, nil
}

func (s *TradeServiceImpl) DeleteTrade(db *gorm.DB, userID, tradeID string) error {
	if err := s.tradeRepo.Delete(db, userID, tradeID); err != nil {
		if apperrors.Is(err, repositories.ErrTradeNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *TradeServiceImpl) ListBatches(db *gorm.DB, userID string, limit, offset int) ([]dto.ImportBatchResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	batches, err := s.tradeRepo.FindBatchesByUser(db, userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.ImportBatchResponse, 0, len(batches))
	for i := range batches {
		result = append(result, dto.ToImportBatchResponse(&batches[i]))
	}
	return result, nil
}

func (s *TradeServiceImpl) DeleteBatch(db *gorm.DB, userID, batchID string) (int64, error) {
	deleted, err := s.tradeRepo.DeleteBatch(db, userID, batchID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrBatchNotFound) {
			return 0, apperrors.ErrNotFound(err)
		}
		return 0, apperrors.InternalError(err)
	}
	return deleted, nil
}

func (s *TradeServiceImpl) Analytics(db *gorm.DB, userID string, filter repositories.TradeFilter) (*dto.AnalyticsResponse, error) {
	agg, err := s.tradeRepo.Aggregates(db, userID, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildAnalytics(agg), nil
}

func (s *TradeServiceImpl) Dashboard(db *gorm.DB, userID string, filter repositories.TradeFilter) (*dto.DashboardResponse, error) {
	agg, err := s.tradeRepo.Aggregates(db, userID, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	daily, err := s.tradeRepo.DailyPnL(db, userID, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	symbols, err := s.tradeRepo.SymbolStats(db, userID, filter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	recentFilter := filter
	recentFilter.Limit = recentTradesLimit
	recentFilter.Offset = 0
	recent, err := s.tradeRepo.FindByUser(db, userID, recentFilter)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.DashboardResponse{
		Stats:    *buildAnalytics(agg),
		DailyPnL: daily,
		Symbols:  symbols,
		Recent:   make([]dto.TradeResponse, 0, len(recent)),
	}
	for i := range recent {
		resp.Recent = append(resp.Recent, dto.ToTradeResponse(&recent[i]))
	}
	return resp, nil
}

// buildAnalytics derives the ratio metrics from the raw aggregates. Win rate
// counts flat trades as non-winners; profit factor with no losses reports
// gross profit so a perfect record doesn't show as infinity.
func buildAnalytics(agg *repositories.TradeAggregates) *dto.AnalyticsResponse {
	resp := &dto.AnalyticsResponse{
		TotalTrades:  agg.TotalTrades,
		WinningCount: agg.WinningCount,
		LosingCount:  agg.LosingCount,
		TotalPnL:     agg.TotalPnL,
		GrossProfit:  agg.GrossProfit,
		GrossLoss:    agg.GrossLoss,
		TotalFees:    agg.TotalFees,
		LargestWin:   agg.LargestWin,
		LargestLoss:  agg.LargestLoss,
		AvgDuration:  agg.AvgDuration,
	}

	if agg.TotalTrades > 0 {
		resp.WinRate = float64(agg.WinningCount) / float64(agg.TotalTrades)
	}
	if agg.WinningCount > 0 {
		resp.AvgWin = agg.GrossProfit / float64(agg.WinningCount)
	}
	if agg.LosingCount > 0 {
		resp.AvgLoss = agg.GrossLoss / float64(agg.LosingCount)
	}
	if agg.GrossLoss < 0 {
		resp.ProfitFactor = agg.GrossProfit / -agg.GrossLoss
	} else {
		resp.ProfitFactor = agg.GrossProfit
	}
	return resp
}
