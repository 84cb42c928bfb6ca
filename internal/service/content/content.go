// internal/service/content/content.go
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"contenthub-service/internal/domain/author"
	"contenthub-service/internal/domain/content"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/validation"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, c *content.Content) error
	FindByID(ctx context.Context, id int64) (*content.Content, error)
	List(ctx context.Context) ([]*content.Content, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]*content.Content, error)
	Update(ctx context.Context, c *content.Content) error
	Delete(ctx context.Context, id int64) error
}

type AuthorFinder interface {
	FindByID(ctx context.Context, id int64) (*author.Author, error)
}

type ContentService struct {
	contentRepo Repository
	authors     AuthorFinder
	logger      *zap.Logger
}

func NewContentService(contentRepo Repository, authors AuthorFinder, logger *zap.Logger) *ContentService {
	return &ContentService{
		contentRepo: contentRepo,
		authors:     authors,
		logger:      logger,
	}
}

// CreateContent adds a content item to one of the caller's author profiles.
func (s *ContentService) CreateContent(ctx context.Context, actorID int64, req *content.CreateContentRequest) (*content.Content, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.URL = strings.TrimSpace(req.URL)

	result := validation.Struct(req)
	var owner *author.Author
	if req.AuthorID > 0 {
		a, err := s.authors.FindByID(ctx, req.AuthorID)
		switch {
		case errors.Is(err, xerrors.ErrNotFound):
			result.Add("author_id", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", req.AuthorID))
		case err != nil:
			return nil, err
		default:
			owner = a
		}
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	if owner.UserID != actorID {
		return nil, xerrors.ErrForbidden
	}

	c := &content.Content{
		Name:        req.Name,
		Description: req.Description,
		AuthorID:    req.AuthorID,
		URL:         req.URL,
	}
	if err := s.contentRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("content created",
		zap.Int64("content_id", c.ID),
		zap.Int64("author_id", c.AuthorID),
	)
	return c, nil
}

func (s *ContentService) GetContent(ctx context.Context, id int64) (*content.Content, error) {
	c, err := s.contentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NotFound("Content not found.")
		}
		return nil, err
	}
	return c, nil
}

func (s *ContentService) ListContent(ctx context.Context) ([]*content.Content, error) {
	return s.contentRepo.List(ctx)
}

// ListByAuthor returns the author's content; NotFound for an unknown author.
func (s *ContentService) ListByAuthor(ctx context.Context, authorID int64) ([]*content.Content, error) {
	if _, err := s.authors.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NotFound("Author not found.")
		}
		return nil, err
	}
	return s.contentRepo.ListByAuthor(ctx, authorID)
}

// UpdateContent merges the non-nil fields of req and re-validates the result.
func (s *ContentService) UpdateContent(ctx context.Context, actorID, id int64, req *content.UpdateContentRequest) (*content.Content, error) {
	c, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.URL != nil {
		c.URL = strings.TrimSpace(*req.URL)
	}

	merged := &content.CreateContentRequest{
		Name:        c.Name,
		Description: c.Description,
		AuthorID:    c.AuthorID,
		URL:         c.URL,
	}
	if err := validation.Struct(merged).Err(); err != nil {
		return nil, err
	}

	if err := s.contentRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ContentService) DeleteContent(ctx context.Context, actorID, id int64) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.contentRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("content deleted", zap.Int64("content_id", id))
	return nil
}

func (s *ContentService) owned(ctx context.Context, actorID, id int64) (*content.Content, error) {
	c, err := s.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}

	a, err := s.authors.FindByID(ctx, c.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load author: %w", err)
	}
	if a.UserID != actorID {
		return nil, xerrors.ErrForbidden
	}
	return c, nil
}
