package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/whopgrid/service-catalog/internal/application"
	"github.com/whopgrid/service-catalog/internal/auth"
	"github.com/whopgrid/service-catalog/internal/middleware"
	"github.com/whopgrid/service-catalog/internal/response"
)

// AdminHandler exposes catalog management: whop, promo, review and
// settings mutation. All routes require an admin token.
type AdminHandler struct {
	whopService     *application.WhopService
	promoService    *application.PromoService
	reviewService   *application.ReviewService
	settingsService *application.SettingsService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	whopService *application.WhopService,
	promoService *application.PromoService,
	reviewService *application.ReviewService,
	settingsService *application.SettingsService,
) *AdminHandler {
	return &AdminHandler{
		whopService:     whopService,
		promoService:    promoService,
		reviewService:   reviewService,
		settingsService: settingsService,
	}
}

// RegisterRoutes registers the admin catalog routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/whops", h.ListWhops)
		admin.POST("/whops", h.CreateWhop)
		admin.PUT("/whops/:id", h.UpdateWhop)
		admin.DELETE("/whops/:id", h.DeleteWhop)

		admin.POST("/promos", h.CreatePromo)
		admin.PUT("/promos/:id", h.UpdatePromo)
		admin.DELETE("/promos/:id", h.DeletePromo)

		admin.GET("/reviews", h.ListReviews)
		admin.POST("/reviews/:id/verify", h.VerifyReview)
		admin.DELETE("/reviews/:id", h.DeleteReview)

		admin.PUT("/settings", h.UpdateSettings)
	}
}

// ListWhops handles GET /api/v1/admin/whops with pagination, including
// unpublished entries.
func (h *AdminHandler) ListWhops(c *gin.Context) {
	page, limit := pagination(c)
	result, total, err := h.whopService.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result, total, page, limit)
}

// CreateWhop handles POST /api/v1/admin/whops.
func (h *AdminHandler) CreateWhop(c *gin.Context) {
	var req application.CreateWhopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.whopService.CreateWhop(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdateWhop handles PUT /api/v1/admin/whops/:id.
func (h *AdminHandler) UpdateWhop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req application.UpdateWhopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.whopService.UpdateWhop(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteWhop handles DELETE /api/v1/admin/whops/:id. Deletion cascades
// to the whop's promos, reviews and tracking events.
func (h *AdminHandler) DeleteWhop(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.whopService.DeleteWhop(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CreatePromo handles POST /api/v1/admin/promos.
func (h *AdminHandler) CreatePromo(c *gin.Context) {
	var req application.CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.promoService.CreatePromo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// UpdatePromo handles PUT /api/v1/admin/promos/:id.
func (h *AdminHandler) UpdatePromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req application.UpdatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.promoService.UpdatePromo(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeletePromo handles DELETE /api/v1/admin/promos/:id.
func (h *AdminHandler) DeletePromo(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.promoService.DeletePromo(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListReviews handles GET /api/v1/admin/reviews with pagination,
// including unverified entries.
func (h *AdminHandler) ListReviews(c *gin.Context) {
	page, limit := pagination(c)
	result, total, err := h.reviewService.ListAll(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, result, total, page, limit)
}

// VerifyReview handles POST /api/v1/admin/reviews/:id/verify. Verification
// is one way and recomputes the whop's displayed rating.
func (h *AdminHandler) VerifyReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	result, err := h.reviewService.VerifyReview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DeleteReview handles DELETE /api/v1/admin/reviews/:id.
func (h *AdminHandler) DeleteReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UpdateSettings handles PUT /api/v1/admin/settings.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req application.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
