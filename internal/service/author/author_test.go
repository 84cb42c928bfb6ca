package author

import (
	"context"
	"strings"
	"testing"

	"contenthub-service/internal/domain/author"
	"contenthub-service/internal/domain/user"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memAuthors struct {
	rows   map[int64]*author.Author
	nextID int64
}

func newMemAuthors() *memAuthors {
	return &memAuthors{rows: map[int64]*author.Author{}}
}

func (m *memAuthors) Create(_ context.Context, a *author.Author) error {
	for _, x := range m.rows {
		if x.UserID == a.UserID {
			return xerrors.Conflict("author with this user already exists.")
		}
	}
	m.nextID++
	a.ID = m.nextID
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

func (m *memAuthors) FindByID(_ context.Context, id int64) (*author.Author, error) {
	if a, ok := m.rows[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (m *memAuthors) List(context.Context) ([]*author.Author, error) {
	out := make([]*author.Author, 0, len(m.rows))
	for _, a := range m.rows {
		out = append(out, a)
	}
	return out, nil
}

func (m *memAuthors) Update(_ context.Context, a *author.Author) error {
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

func (m *memAuthors) Delete(_ context.Context, id int64) error {
	delete(m.rows, id)
	return nil
}

type users map[int64]*user.User

func (u users) FindByID(_ context.Context, id int64) (*user.User, error) {
	if x, ok := u[id]; ok {
		return x, nil
	}
	return nil, xerrors.ErrNotFound
}

func newService() (*AuthorService, *memAuthors) {
	repo := newMemAuthors()
	dir := users{
		1: {ID: 1, Username: "alice"},
		2: {ID: 2, Username: "bob"},
	}
	return NewAuthorService(repo, dir, zap.NewNop()), repo
}

func ptr(s string) *string { return &s }

func TestCreateAuthor(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	a, err := svc.CreateAuthor(ctx, 1, &author.CreateAuthorRequest{Bio: ptr("writes things")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.UserID)
	assert.Equal(t, "alice", a.Username)

	_, err = svc.CreateAuthor(ctx, 1, &author.CreateAuthorRequest{})
	assert.ErrorIs(t, err, xerrors.ErrConflict)

	_, err = svc.CreateAuthor(ctx, 1, &author.CreateAuthorRequest{UserID: 2})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestCreateAuthor_Validation(t *testing.T) {
	svc, repo := newService()

	_, err := svc.CreateAuthor(context.Background(), 9, &author.CreateAuthorRequest{
		Bio:            ptr(strings.Repeat("x", 501)),
		ProfilePicture: ptr("not-a-url"),
	})
	ve, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Ensure this field has no more than 500 characters.", ve.Fields["bio"])
	assert.Equal(t, "Enter a valid URL.", ve.Fields["profile_picture"])
	assert.Equal(t, `Invalid pk "9" - object does not exist.`, ve.Fields["user_id"])
	assert.Empty(t, repo.rows)
}

func TestUpdateAndDeleteAuthor(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	a, err := svc.CreateAuthor(ctx, 1, &author.CreateAuthorRequest{
		Bio:            ptr("old"),
		ProfilePicture: ptr("https://img.example.com/a.png"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateAuthor(ctx, 1, a.ID, &author.UpdateAuthorRequest{ProfilePicture: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "old", *updated.Bio)
	assert.Nil(t, updated.ProfilePicture)

	_, err = svc.UpdateAuthor(ctx, 2, a.ID, &author.UpdateAuthorRequest{Bio: ptr("hijack")})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)

	assert.ErrorIs(t, svc.DeleteAuthor(ctx, 2, a.ID), xerrors.ErrForbidden)
	require.NoError(t, svc.DeleteAuthor(ctx, 1, a.ID))
	assert.Empty(t, repo.rows)

	_, err = svc.GetAuthor(ctx, a.ID)
	assert.EqualError(t, err, "Author not found.")
}

func TestUpdateAuthor_ProfilePicture(t *testing.T) {
	svc, repo := newService()
	ctx := context.Background()

	a, err := svc.CreateAuthor(ctx, 1, &author.CreateAuthorRequest{
		ProfilePicture: ptr("https://img.example.com/a.png"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateAuthor(ctx, 1, a.ID, &author.UpdateAuthorRequest{ProfilePicture: ptr("not a url")})
	ve, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Enter a valid URL.", ve.Fields["profile_picture"])
	assert.Equal(t, "https://img.example.com/a.png", *repo.rows[a.ID].ProfilePicture)

	updated, err := svc.UpdateAuthor(ctx, 1, a.ID, &author.UpdateAuthorRequest{ProfilePicture: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, updated.ProfilePicture)
	assert.Nil(t, repo.rows[a.ID].ProfilePicture)

	updated, err = svc.UpdateAuthor(ctx, 1, a.ID, &author.UpdateAuthorRequest{ProfilePicture: ptr("https://img.example.com/b.png")})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/b.png", *updated.ProfilePicture)
}
