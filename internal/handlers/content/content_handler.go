// internal/handlers/content/content_handler.go
package content

import (
	"context"
	"net/http"

	"contenthub-service/internal/domain/content"
	"contenthub-service/internal/middleware"
	"contenthub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Service interface {
	CreateContent(ctx context.Context, actorID int64, req *content.CreateContentRequest) (*content.Content, error)
	GetContent(ctx context.Context, id int64) (*content.Content, error)
	ListContent(ctx context.Context) ([]*content.Content, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]*content.Content, error)
	UpdateContent(ctx context.Context, actorID, id int64, req *content.UpdateContentRequest) (*content.Content, error)
	DeleteContent(ctx context.Context, actorID, id int64) error
}

type ContentHandler struct {
	contentService Service
	logger         *zap.Logger
}

func NewContentHandler(contentService Service, logger *zap.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// ========== Public Endpoints ==========

func (h *ContentHandler) ListContent(c *gin.Context) {
	items, err := h.contentService.ListContent(c.Request.Context())
	h.writeList(c, items, err)
}

// ListByAuthor serves /authors/:id/content/.
func (h *ContentHandler) ListByAuthor(c *gin.Context) {
	authorID, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	items, err := h.contentService.ListByAuthor(c.Request.Context(), authorID)
	h.writeList(c, items, err)
}

func (h *ContentHandler) GetContent(c *gin.Context) {
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	item, err := h.contentService.GetContent(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

// ========== Authenticated Endpoints ==========

func (h *ContentHandler) CreateContent(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req content.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	item, err := h.contentService.CreateContent(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, item)
}

func (h *ContentHandler) UpdateContent(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	var req content.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	item, err := h.contentService.UpdateContent(c.Request.Context(), userID, id, &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, item)
}

func (h *ContentHandler) DeleteContent(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.DeleteContent(c.Request.Context(), userID, id); err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.NoContent(c)
}

func (h *ContentHandler) writeList(c *gin.Context, items []*content.Content, err error) {
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}
	if items == nil {
		items = []*content.Content{}
	}
	response.JSON(c, http.StatusOK, items)
}
