package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/whopgrid/service-catalog/internal/application"
	"github.com/whopgrid/service-catalog/internal/response"
)

// CatalogHandler serves the public catalog: published whops, their verified
// reviews, and the site settings.
type CatalogHandler struct {
	whopService     *application.WhopService
	promoService    *application.PromoService
	reviewService   *application.ReviewService
	settingsService *application.SettingsService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(
	whopService *application.WhopService,
	promoService *application.PromoService,
	reviewService *application.ReviewService,
	settingsService *application.SettingsService,
) *CatalogHandler {
	return &CatalogHandler{
		whopService:     whopService,
		promoService:    promoService,
		reviewService:   reviewService,
		settingsService: settingsService,
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	whops := r.Group("/whops")
	{
		whops.GET("", h.ListWhops)
		whops.GET("/:slug", h.GetWhop)
		whops.GET("/:slug/promos", h.ListPromos)
		whops.GET("/:slug/reviews", h.ListReviews)
		whops.POST("/:slug/reviews", h.CreateReview)
	}
	r.GET("/settings", h.GetSettings)
}

// ListWhops handles GET /api/v1/whops.
func (h *CatalogHandler) ListWhops(c *gin.Context) {
	result, err := h.whopService.ListPublished(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetWhop handles GET /api/v1/whops/:slug.
func (h *CatalogHandler) GetWhop(c *gin.Context) {
	result, err := h.whopService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListPromos handles GET /api/v1/whops/:slug/promos.
func (h *CatalogHandler) ListPromos(c *gin.Context) {
	w, err := h.whopService.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.promoService.ListByWhop(c.Request.Context(), w.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListReviews handles GET /api/v1/whops/:slug/reviews. Only verified
// reviews are publicly visible.
func (h *CatalogHandler) ListReviews(c *gin.Context) {
	result, err := h.reviewService.ListForWhop(c.Request.Context(), c.Param("slug"), true)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CreateReview handles POST /api/v1/whops/:slug/reviews.
func (h *CatalogHandler) CreateReview(c *gin.Context) {
	var req application.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.reviewService.CreateReview(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetSettings handles GET /api/v1/settings.
func (h *CatalogHandler) GetSettings(c *gin.Context) {
	result, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
