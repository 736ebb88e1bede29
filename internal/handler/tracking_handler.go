package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/whopgrid/service-catalog/internal/application"
	"github.com/whopgrid/service-catalog/internal/response"
)

// TrackingHandler serves the engagement ledger write path and the derived
// analytics reads.
type TrackingHandler struct {
	trackingService *application.TrackingService
	statsService    *application.StatsService
	rateLimiter     gin.HandlerFunc
}

// NewTrackingHandler creates a new TrackingHandler. rateLimiter guards the
// write endpoint only; reads are unthrottled.
func NewTrackingHandler(
	trackingService *application.TrackingService,
	statsService *application.StatsService,
	rateLimiter gin.HandlerFunc,
) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
		statsService:    statsService,
		rateLimiter:     rateLimiter,
	}
}

// RegisterRoutes registers the tracking and statistics routes.
func (h *TrackingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/tracking", h.rateLimiter, h.RecordTracking)
	r.GET("/tracking", h.GetUsageStats)
	r.GET("/promo-stats", h.GetPromoStats)
	r.GET("/statistics", h.GetSiteStatistics)
}

// RecordTracking handles POST /api/v1/tracking.
func (h *TrackingHandler) RecordTracking(c *gin.Context) {
	var req application.RecordTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.trackingService.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"tracking": result})
}

// GetUsageStats handles GET /api/v1/tracking?promoCodeId=<uuid>.
func (h *TrackingHandler) GetUsageStats(c *gin.Context) {
	promoCodeID, err := uuid.Parse(c.Query("promoCodeId"))
	if err != nil {
		response.BadRequest(c, "promoCodeId must be a valid UUID")
		return
	}

	result, err := h.statsService.UsageStats(c.Request.Context(), promoCodeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"usageCount": result.TodayCount,
		"totalCount": result.TotalCount,
		"lastUsed":   result.LastUsedAt,
	})
}

// GetPromoStats handles GET /api/v1/promo-stats with either a promoCodeId
// or a whopId query parameter.
func (h *TrackingHandler) GetPromoStats(c *gin.Context) {
	if raw := c.Query("promoCodeId"); raw != "" {
		promoCodeID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "promoCodeId must be a valid UUID")
			return
		}
		result, err := h.statsService.UsageStats(c.Request.Context(), promoCodeID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	if raw := c.Query("whopId"); raw != "" {
		whopID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "whopId must be a valid UUID")
			return
		}
		result, err := h.statsService.ClickStats(c.Request.Context(), whopID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
		return
	}

	response.BadRequest(c, "either promoCodeId or whopId is required")
}

// GetSiteStatistics handles GET /api/v1/statistics. The dashboard must
// always render, so this endpoint never returns an error status.
func (h *TrackingHandler) GetSiteStatistics(c *gin.Context) {
	response.Success(c, h.statsService.SiteStatistics(c.Request.Context()))
}
