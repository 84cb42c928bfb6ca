// internal/handlers/author/author_handler.go
package author

import (
	"context"
	"net/http"

	"contenthub-service/internal/domain/author"
	"contenthub-service/internal/middleware"
	"contenthub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Service interface {
	CreateAuthor(ctx context.Context, actorID int64, req *author.CreateAuthorRequest) (*author.Author, error)
	GetAuthor(ctx context.Context, id int64) (*author.Author, error)
	ListAuthors(ctx context.Context) ([]*author.Author, error)
	UpdateAuthor(ctx context.Context, actorID, id int64, req *author.UpdateAuthorRequest) (*author.Author, error)
	DeleteAuthor(ctx context.Context, actorID, id int64) error
}

type AuthorHandler struct {
	authorService Service
	logger        *zap.Logger
}

func NewAuthorHandler(authorService Service, logger *zap.Logger) *AuthorHandler {
	return &AuthorHandler{
		authorService: authorService,
		logger:        logger,
	}
}

// ========== Public Endpoints ==========

func (h *AuthorHandler) ListAuthors(c *gin.Context) {
	authors, err := h.authorService.ListAuthors(c.Request.Context())
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	if authors == nil {
		authors = []*author.Author{}
	}
	response.JSON(c, http.StatusOK, authors)
}

func (h *AuthorHandler) GetAuthor(c *gin.Context) {
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	a, err := h.authorService.GetAuthor(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, a)
}

// ========== Authenticated Endpoints ==========

func (h *AuthorHandler) CreateAuthor(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req author.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	a, err := h.authorService.CreateAuthor(c.Request.Context(), userID, &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusCreated, a)
}

func (h *AuthorHandler) UpdateAuthor(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	var req author.UpdateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Malformed request body.")
		return
	}

	a, err := h.authorService.UpdateAuthor(c.Request.Context(), userID, id, &req)
	if err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.JSON(c, http.StatusOK, a)
}

func (h *AuthorHandler) DeleteAuthor(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	id, ok := middleware.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.authorService.DeleteAuthor(c.Request.Context(), userID, id); err != nil {
		response.FromError(c, h.logger, err)
		return
	}

	response.NoContent(c)
}
