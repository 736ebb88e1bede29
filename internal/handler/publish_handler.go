package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/whopgrid/service-catalog/internal/application"
	"github.com/whopgrid/service-catalog/internal/auth"
	"github.com/whopgrid/service-catalog/internal/domain"
	"github.com/whopgrid/service-catalog/internal/middleware"
	"github.com/whopgrid/service-catalog/internal/response"
)

// PublishBatchRequest selects a publication action. Count overrides the
// configured batch size when positive.
type PublishBatchRequest struct {
	Action string `json:"action" binding:"required"`
	Count  int    `json:"count"`
}

// PublishHandler exposes the batch publication rollout to operators.
type PublishHandler struct {
	publicationService *application.PublicationService
	defaultBatchSize   int
}

// NewPublishHandler creates a new PublishHandler.
func NewPublishHandler(publicationService *application.PublicationService, defaultBatchSize int) *PublishHandler {
	return &PublishHandler{
		publicationService: publicationService,
		defaultBatchSize:   defaultBatchSize,
	}
}

// RegisterRoutes registers the admin publication routes.
func (h *PublishHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/publish-batch", h.PublishBatch)
	}
}

// PublishBatch handles POST /api/v1/admin/publish-batch. One endpoint
// drives the whole rollout lifecycle so the trigger stays a single cron
// entry.
func (h *PublishHandler) PublishBatch(c *gin.Context) {
	var req PublishBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	batchSize := h.defaultBatchSize
	if req.Count > 0 {
		batchSize = req.Count
	}

	ctx := c.Request.Context()
	switch req.Action {
	case "publish":
		result, err := h.publicationService.Publish(ctx, batchSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
	case "unpublish":
		result, err := h.publicationService.Unpublish(ctx, batchSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
	case "status":
		result, err := h.publicationService.Status(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
	case "reset":
		result, err := h.publicationService.Reset(ctx, batchSize)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, result)
	default:
		response.Error(c, domain.NewValidationError("action must be one of publish, unpublish, status, reset"))
	}
}
