package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/carhive/carhive/internal/rbac"
)

func newTestRouter(svc *Service, principal rbac.Principal) http.Handler {
	h := NewHandler(nil, svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal)))
		})
	})
	h.Routes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreateBrand(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	router := newTestRouter(svc, principalWith(1, rbac.PermCarsWrite))

	rec := doJSON(t, router, http.MethodPost, "/brands", `{"name":"Toyota"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var brand Brand
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brand))
	require.Equal(t, "Toyota", brand.Name)
	require.Equal(t, int64(1), brand.CreatedBy)
}

func TestHandlerCreateBrandValidation(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	router := newTestRouter(svc, principalWith(1, rbac.PermCarsWrite))

	rec := doJSON(t, router, http.MethodPost, "/brands", `{"name":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/brands", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerForbiddenWithoutPermission(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	router := newTestRouter(svc, principalWith(1, rbac.PermCarsRead))

	rec := doJSON(t, router, http.MethodPost, "/brands", `{"name":"Toyota"}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandlerInvalidID(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	router := newTestRouter(svc, principalWith(1, rbac.PermCarsRead))

	rec := doJSON(t, router, http.MethodGet, "/brands/abc", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerNestedLifecycle(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	admin := principalWith(1, rbac.PermCarsWrite, rbac.PermCarsRead, rbac.PermCarsDelete)
	router := newTestRouter(svc, admin)

	brand, err := svc.CreateBrand(context.Background(), admin, "Toyota")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/brands/1/models", `{"name":"Corolla"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var model Model
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &model))
	require.Equal(t, brand.ID, model.BrandID)

	rec = doJSON(t, router, http.MethodGet, "/brands/1/models/2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Same model through a sibling brand is invisible.
	_, err = svc.CreateBrand(context.Background(), admin, "Honda")
	require.NoError(t, err)
	rec = doJSON(t, router, http.MethodGet, "/brands/3/models/2", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPatch, "/brands/1/models/2", `{"name":"Corolla Cross"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/brands/1/models/2", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandlerListEnvelope(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)
	admin := principalWith(1, rbac.PermCarsWrite, rbac.PermCarsRead)
	router := newTestRouter(svc, admin)

	_, err := svc.CreateBrand(context.Background(), admin, "Toyota")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/brands?page=1&per_page=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Data []Brand `json:"data"`
		Meta struct {
			Page       int `json:"page"`
			TotalItems int `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	require.Equal(t, 1, page.Meta.TotalItems)
}
