// internal/service/author/author.go
package author

import (
	"context"
	"errors"
	"fmt"

	"contenthub-service/internal/domain/author"
	"contenthub-service/internal/domain/user"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/validation"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, a *author.Author) error
	FindByID(ctx context.Context, id int64) (*author.Author, error)
	List(ctx context.Context) ([]*author.Author, error)
	Update(ctx context.Context, a *author.Author) error
	Delete(ctx context.Context, id int64) error
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

type AuthorService struct {
	authorRepo Repository
	users      UserFinder
	logger     *zap.Logger
}

func NewAuthorService(authorRepo Repository, users UserFinder, logger *zap.Logger) *AuthorService {
	return &AuthorService{
		authorRepo: authorRepo,
		users:      users,
		logger:     logger,
	}
}

// CreateAuthor creates the author profile of actorID. An omitted user_id
// defaults to the caller.
func (s *AuthorService) CreateAuthor(ctx context.Context, actorID int64, req *author.CreateAuthorRequest) (*author.Author, error) {
	if req.UserID == 0 {
		req.UserID = actorID
	}
	if req.UserID != actorID {
		return nil, xerrors.WithDetail(xerrors.ErrForbidden, "You can only create your own author profile.")
	}

	result := validation.Struct(req)
	u, err := s.users.FindByID(ctx, req.UserID)
	switch {
	case errors.Is(err, xerrors.ErrNotFound):
		result.Add("user_id", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", req.UserID))
	case err != nil:
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	a := &author.Author{
		UserID:         u.ID,
		Username:       u.Username,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	}
	if err := s.authorRepo.Create(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("author created",
		zap.Int64("author_id", a.ID),
		zap.Int64("user_id", a.UserID),
	)
	return a, nil
}

func (s *AuthorService) GetAuthor(ctx context.Context, id int64) (*author.Author, error) {
	a, err := s.authorRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.NotFound("Author not found.")
		}
		return nil, err
	}
	return a, nil
}

func (s *AuthorService) ListAuthors(ctx context.Context) ([]*author.Author, error) {
	return s.authorRepo.List(ctx)
}

// UpdateAuthor merges the non-nil fields of req into the profile. An empty
// profile_picture clears it. The merged profile is validated as a whole.
func (s *AuthorService) UpdateAuthor(ctx context.Context, actorID, id int64, req *author.UpdateAuthorRequest) (*author.Author, error) {
	current, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	merged := *current
	if req.Bio != nil {
		merged.Bio = req.Bio
	}
	if req.ProfilePicture != nil {
		if *req.ProfilePicture == "" {
			merged.ProfilePicture = nil
		} else {
			merged.ProfilePicture = req.ProfilePicture
		}
	}

	if err := validation.Struct(&author.UpdateAuthorRequest{
		Bio:            merged.Bio,
		ProfilePicture: merged.ProfilePicture,
	}).Err(); err != nil {
		return nil, err
	}

	if err := s.authorRepo.Update(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (s *AuthorService) DeleteAuthor(ctx context.Context, actorID, id int64) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	if err := s.authorRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("author deleted", zap.Int64("author_id", id))
	return nil
}

func (s *AuthorService) owned(ctx context.Context, actorID, id int64) (*author.Author, error) {
	a, err := s.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != actorID {
		return nil, xerrors.ErrForbidden
	}
	return a, nil
}
