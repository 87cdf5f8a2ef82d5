package handlers

import (
	"net/http"

	"wagyu_backend/internal/middleware"
	"wagyu_backend/internal/services"
	"wagyu_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AffiliateHandler struct {
	*BaseHandler
	affiliateService services.AffiliateService
}

func NewAffiliateHandler(base *BaseHandler, affiliateService services.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{
		BaseHandler:      base,
		affiliateService: affiliateService,
	}
}

func (h *AffiliateHandler) RegisterRoutes(rg *gin.RouterGroup) {
	affiliate := rg.Group("/affiliate")
	affiliate.Use(middleware.AuthMiddleware())
	{
		affiliate.POST("/apply", h.Apply)
		affiliate.GET("/applications", h.MyApplications)
		affiliate.GET("/dashboard", h.Dashboard)
		affiliate.GET("/referrals", h.MyReferrals)
		affiliate.GET("/commissions", h.MyCommissions)
	}

	admin := rg.Group("/admin/affiliate")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/applications", h.ListApplications)
		admin.POST("/applications/:id/review", h.Review)
		admin.POST("/payouts/:userId", h.MarkPaid)
	}
}

func (h *AffiliateHandler) Apply(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ApplyAffiliateRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	app, err := h.affiliateService.Apply(db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

func (h *AffiliateHandler) MyApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	apps, err := h.affiliateService.MyApplications(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *AffiliateHandler) Dashboard(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	dashboard, err := h.affiliateService.Dashboard(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *AffiliateHandler) MyReferrals(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	db := h.GetDB(c)

	referrals, err := h.affiliateService.MyReferrals(db, userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"referrals": referrals})
}

func (h *AffiliateHandler) MyCommissions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit, offset := ParsePagination(c)
	db := h.GetDB(c)

	commissions, err := h.affiliateService.MyCommissions(db, userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"commissions": commissions})
}

func (h *AffiliateHandler) ListApplications(c *gin.Context) {
	limit, offset := ParsePagination(c)
	db := h.GetDB(c)

	apps, err := h.affiliateService.ListApplications(db, c.Query("status"), limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

func (h *AffiliateHandler) Review(c *gin.Context) {
	adminID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ReviewApplicationRequest
	if !h.BindAndValidateJSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	app, err := h.affiliateService.Review(db, adminID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

func (h *AffiliateHandler) MarkPaid(c *gin.Context) {
	db := h.GetDB(c)

	settled, err := h.affiliateService.MarkPaid(db, c.Param("userId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settled_commissions": settled})
}
