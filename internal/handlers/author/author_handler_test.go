package author

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"contenthub-service/internal/domain/author"
	"contenthub-service/internal/middleware"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/jwt"
	"contenthub-service/internal/pkg/validation"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeAuthors struct {
	items map[int64]*author.Author
}

func (f *fakeAuthors) CreateAuthor(_ context.Context, actorID int64, req *author.CreateAuthorRequest) (*author.Author, error) {
	if req.ProfilePicture != nil && *req.ProfilePicture == "not-a-url" {
		res := validation.New()
		res.Add("profile_picture", "Enter a valid URL.")
		return nil, res.Err()
	}
	a := &author.Author{ID: int64(len(f.items) + 1), UserID: actorID, Bio: req.Bio}
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeAuthors) GetAuthor(_ context.Context, id int64) (*author.Author, error) {
	if a, ok := f.items[id]; ok {
		return a, nil
	}
	return nil, xerrors.NotFound("Not found.")
}

func (f *fakeAuthors) ListAuthors(context.Context) ([]*author.Author, error) {
	return nil, nil
}

func (f *fakeAuthors) UpdateAuthor(ctx context.Context, actorID, id int64, req *author.UpdateAuthorRequest) (*author.Author, error) {
	a, err := f.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != actorID {
		return nil, xerrors.ErrForbidden
	}
	a.Bio = req.Bio
	return a, nil
}

func (f *fakeAuthors) DeleteAuthor(ctx context.Context, actorID, id int64) error {
	if _, err := f.GetAuthor(ctx, id); err != nil {
		return err
	}
	delete(f.items, id)
	return nil
}

type tokens map[string]int64

func (t tokens) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	if id, ok := t[token]; ok {
		return &jwt.Claims{UserID: id}, nil
	}
	return nil, xerrors.ErrUnauthorized
}

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthorHandler(&fakeAuthors{items: map[int64]*author.Author{}}, zap.NewNop())
	auth := middleware.NewAuthMiddleware(tokens{"alice": 1, "bob": 2}, zap.NewNop())

	r := gin.New()
	r.GET("/authors/", h.ListAuthors)
	r.GET("/authors/:id/", h.GetAuthor)
	r.POST("/authors/", auth.Auth(), h.CreateAuthor)
	r.PUT("/authors/:id/", auth.Auth(), h.UpdateAuthor)
	r.DELETE("/authors/:id/", auth.Auth(), h.DeleteAuthor)
	return r
}

func send(r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthorLifecycle(t *testing.T) {
	r := setup()

	w := send(r, http.MethodGet, "/authors/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = send(r, http.MethodPost, "/authors/", `{"bio":"hi"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodPost, "/authors/", `{"bio":"hi"}`, "alice")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":1`)

	w = send(r, http.MethodPost, "/authors/", `{"profile_picture":"not-a-url"}`, "alice")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid input.","errors":{"profile_picture":"Enter a valid URL."}}`, w.Body.String())

	w = send(r, http.MethodPut, "/authors/1/", `{"bio":"updated"}`, "bob")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = send(r, http.MethodPut, "/authors/1/", `{"bio":"updated"}`, "alice")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"bio":"updated"`)

	w = send(r, http.MethodDelete, "/authors/1/", "", "alice")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = send(r, http.MethodGet, "/authors/1/", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())
}
