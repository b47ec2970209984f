package categories_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/catalog"
	"github.com/odyssey-erp/backoffice/internal/catalog/categories"
)

// headerGate admits requests carrying X-Test-Auth and rejects the rest.
func headerGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Test-Auth") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newRouter(repo *memRepo) http.Handler {
	h := categories.NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), categories.NewService(repo, nil))
	r := chi.NewRouter()
	r.Route("/categories", func(r chi.Router) { h.MountRoutes(r, headerGate) })
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("X-Test-Auth", "1")
	}
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func TestHandlerWritesAreGated(t *testing.T) {
	repo := newMemRepo()
	h := newRouter(repo)
	body := map[string]any{"name": "Shoes", "image": "a.png", "status": true}

	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPost, "/categories", body, false).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodPut, "/categories/"+uuid.NewString(), body, false).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodDelete, "/categories/"+uuid.NewString(), nil, false).Code)
	assert.Empty(t, repo.items, "rejected writes leave no trace")

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/categories", nil, false).Code, "reads stay open")
}

func TestHandlerCRUD(t *testing.T) {
	repo := newMemRepo()
	h := newRouter(repo)

	res := do(t, h, http.MethodPost, "/categories", map[string]any{"name": "Shoes", "image": "a.png", "status": true}, true)
	require.Equal(t, http.StatusCreated, res.Code)
	var created categories.Category
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))

	dup := do(t, h, http.MethodPost, "/categories", map[string]any{"name": "Shoes", "image": "b.png", "status": true}, true)
	assert.Equal(t, http.StatusBadRequest, dup.Code)
	assert.Contains(t, dup.Body.String(), "Category name already exists")

	list := do(t, h, http.MethodGet, "/categories?search=sho", nil, false)
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, "1", list.Header().Get(catalog.TotalCountHeader))

	show := do(t, h, http.MethodGet, "/categories/"+created.ID, nil, false)
	assert.Equal(t, http.StatusOK, show.Code)

	upd := do(t, h, http.MethodPut, "/categories/"+created.ID, map[string]any{"name": "Boots", "image": "a.png", "status": false}, true)
	require.Equal(t, http.StatusOK, upd.Code)
	assert.Contains(t, upd.Body.String(), "Boots")

	repo.inUse[created.ID] = true
	blocked := do(t, h, http.MethodDelete, "/categories/"+created.ID, nil, true)
	assert.Equal(t, http.StatusBadRequest, blocked.Code)

	repo.inUse[created.ID] = false
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodDelete, "/categories/"+created.ID, nil, true).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/categories/"+created.ID, nil, true).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/categories/"+created.ID, nil, false).Code)
}
