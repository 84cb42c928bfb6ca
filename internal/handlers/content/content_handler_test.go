package content

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"contenthub-service/internal/domain/content"
	"contenthub-service/internal/middleware"
	xerrors "contenthub-service/internal/pkg/errors"
	"contenthub-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeContent struct {
	items []*content.Content
}

func (f *fakeContent) CreateContent(_ context.Context, _ int64, req *content.CreateContentRequest) (*content.Content, error) {
	for _, it := range f.items {
		if it.URL == req.URL {
			return nil, xerrors.Conflict("content with this url already exists.")
		}
	}
	item := &content.Content{ID: int64(len(f.items) + 1), Name: req.Name, AuthorID: req.AuthorID, URL: req.URL}
	f.items = append(f.items, item)
	return item, nil
}

func (f *fakeContent) GetContent(_ context.Context, id int64) (*content.Content, error) {
	for _, it := range f.items {
		if it.ID == id {
			return it, nil
		}
	}
	return nil, xerrors.NotFound("Not found.")
}

func (f *fakeContent) ListContent(context.Context) ([]*content.Content, error) {
	return f.items, nil
}

func (f *fakeContent) ListByAuthor(_ context.Context, authorID int64) ([]*content.Content, error) {
	if authorID != 7 {
		return nil, xerrors.NotFound("Not found.")
	}
	var out []*content.Content
	for _, it := range f.items {
		if it.AuthorID == authorID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeContent) UpdateContent(ctx context.Context, _ int64, id int64, req *content.UpdateContentRequest) (*content.Content, error) {
	item, err := f.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	return item, nil
}

func (f *fakeContent) DeleteContent(ctx context.Context, _ int64, id int64) error {
	_, err := f.GetContent(ctx, id)
	return err
}

type tokenOne struct{}

func (tokenOne) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	if token != "t" {
		return nil, xerrors.ErrUnauthorized
	}
	return &jwt.Claims{UserID: 1}, nil
}

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewContentHandler(&fakeContent{}, zap.NewNop())
	auth := middleware.NewAuthMiddleware(tokenOne{}, zap.NewNop())

	r := gin.New()
	r.GET("/content/", h.ListContent)
	r.GET("/content/:id/", h.GetContent)
	r.GET("/authors/:id/content/", h.ListByAuthor)
	r.POST("/content/", auth.Auth(), h.CreateContent)
	r.PUT("/content/:id/", auth.Auth(), h.UpdateContent)
	r.DELETE("/content/:id/", auth.Auth(), h.DeleteContent)
	return r
}

func send(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		req.Header.Set("Authorization", "Bearer t")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestContentEndpoints(t *testing.T) {
	r := setup()
	body := `{"name":"Intro","author_id":7,"url":"https://example.com/intro"}`

	w := send(r, http.MethodPost, "/content/", body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":1`)

	w = send(r, http.MethodPost, "/content/", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"content with this url already exists."}`, w.Body.String())

	w = send(r, http.MethodGet, "/authors/7/content/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"url":"https://example.com/intro"`)

	w = send(r, http.MethodGet, "/authors/8/content/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(r, http.MethodPut, "/content/1/", `{"name":"Renamed"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Renamed"`)

	w = send(r, http.MethodPut, "/content/1/", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"detail":"Malformed request body."}`, w.Body.String())

	w = send(r, http.MethodDelete, "/content/1/", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = send(r, http.MethodDelete, "/content/9/", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
