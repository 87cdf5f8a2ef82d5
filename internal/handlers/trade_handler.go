package handlers

import (
	"net/http"

	"wagyu_backend/internal/middleware"
	"wagyu_backend/internal/models"
	"wagyu_backend/internal/repositories"
	"wagyu_backend/internal/services"
	"wagyu_backend/pkg/apperrors"
	"wagyu_backend/ws"

	"github.com/gin-gonic/gin"
)

// CSV uploads are capped well above any realistic trading history export.
const maxImportSize = 10 << 20

type TradeHandler struct {
	*BaseHandler
	tradeService        services.TradeService
	subscriptionService services.SubscriptionService
	wsManager           *ws.WebSocketManager
}

func NewTradeHandler(base *BaseHandler, tradeService services.TradeService, subscriptionService services.SubscriptionService, wsManager *ws.WebSocketManager) *TradeHandler {
	return &TradeHandler{
		BaseHandler:         base,
		tradeService:        tradeService,
		subscriptionService: subscriptionService,
		wsManager:           wsManager,
	}
}

func (h *TradeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	trades := rg.Group("/trades")
	trades.Use(middleware.AuthMiddleware())
	{
		trades.POST("/import", h.ImportCSV)
		trades.GET("", h.ListTrades)
		trades.GET("/:id", h.GetTrade)
		trades.DELETE("/:id", h.DeleteTrade)
		trades.GET("/batches", h.ListBatches)
		trades.DELETE("/batches/:id", h.DeleteBatch)
	}

	analytics := rg.Group("/analytics")
	analytics.Use(middleware.AuthMiddleware())
	{
		analytics.GET("", h.Analytics)
		analytics.GET("/dashboard", h.Dashboard)
	}
}

// requireAccess gates journal features by subscription level. The journal
// needs full access; the dashboard accepts dashboard_only too.
func (h *TradeHandler) requireAccess(c *gin.Context, userID string, minimum models.AccessLevel) bool {
	db := h.GetDB(c)

	level, err := h.subscriptionService.AccessLevel(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return false
	}

	switch minimum {
	case models.AccessLevelFull:
		if level != models.AccessLevelFull {
			if level == models.AccessLevelDashboardOnly {
				apperrors.HandleError(c, apperrors.ErrDashboardOnlyAccess)
			} else {
				apperrors.HandleError(c, apperrors.ErrSubscriptionRequired)
			}
			return false
		}
	case models.AccessLevelDashboardOnly:
		if level == models.AccessLevelNone {
			apperrors.HandleError(c, apperrors.ErrSubscriptionRequired)
			return false
		}
	}
	return true
}

func (h *TradeHandler) ImportCSV(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelFull) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing file upload (field 'file')"))
		return
	}
	defer file.Close()

	broker := c.PostForm("broker")
	if broker == "" {
		apperrors.HandleError(c, apperrors.NewBadRequestError("Missing broker field"))
		return
	}
	timezone := c.PostForm("timezone")

	db := h.GetDB(c)

	result, err := h.tradeService.ImportCSV(db, userID, broker, header.Filename, file, timezone)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// Open dashboard tabs refresh on this notification.
	if h.wsManager != nil {
		h.wsManager.SendToUser(userID, ws.OutgoingMessage{
			Type:    "import_completed",
			Payload: result,
		})
	}

	c.JSON(http.StatusCreated, result)
}

func (h *TradeHandler) tradeFilter(c *gin.Context) (repositories.TradeFilter, bool) {
	from, to, err := ParseQueryDateRange(c)
	if err != nil {
		apperrors.HandleError(c, err)
		return repositories.TradeFilter{}, false
	}

	limit, offset := ParsePagination(c)
	return repositories.TradeFilter{
		Symbol: c.Query("symbol"),
		Side:   models.TradeSide(c.Query("side")),
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	}, true
}

func (h *TradeHandler) ListTrades(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelFull) {
		return
	}

	filter, ok := h.tradeFilter(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	trades, err := h.tradeService.ListTrades(db, userID, filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, trades)
}

func (h *TradeHandler) GetTrade(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelFull) {
		return
	}

	db := h.GetDB(c)

	trade, err := h.tradeService.GetTrade(db, userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, trade)
}

func (h *TradeHandler) DeleteTrade(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelFull) {
		return
	}

	db := h.GetDB(c)

	if err := h.tradeService.DeleteTrade(db, userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Trade deleted"})
}

func (h *TradeHandler) ListBatches(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelFull) {
		return
	}

	limit, offset := ParsePagination(c)
	db := h.GetDB(c)

	batches, err := h.tradeService.ListBatches(db, userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"batches": batches})
}

func (h *TradeHandler) DeleteBatch(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelFull) {
		return
	}

	db := h.GetDB(c)

	deleted, err := h.tradeService.DeleteBatch(db, userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted_trades": deleted})
}

func (h *TradeHandler) Analytics(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelFull) {
		return
	}

	filter, ok := h.tradeFilter(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	analytics, err := h.tradeService.Analytics(db, userID, filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

func (h *TradeHandler) Dashboard(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	if !h.requireAccess(c, userID, models.AccessLevelDashboardOnly) {
		return
	}

	filter, ok := h.tradeFilter(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	dashboard, err := h.tradeService.Dashboard(db, userID, filter)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
