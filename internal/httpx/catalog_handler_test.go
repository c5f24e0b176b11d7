package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ariefcatur/attic-lounges/internal/availability"
	"github.com/ariefcatur/attic-lounges/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products map[string]catalog.Product
}

func (f *fakeCatalog) List(context.Context) ([]catalog.Product, error) {
	out := []catalog.Product{}
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Create(_ context.Context, patch catalog.Patch) (catalog.Product, error) {
	p := catalog.Product{ID: "new", Stock: 1}
	patch.Apply(&p)
	if err := p.Validate(); err != nil {
		return catalog.Product{}, err
	}
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeCatalog) Update(ctx context.Context, id string, patch catalog.Patch) (catalog.Product, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return p, err
	}
	patch.Apply(&p)
	f.products[id] = p
	return p, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeCatalog) SetAvailability(ctx context.Context, id string, in availability.Intent) (catalog.Product, error) {
	p, err := f.Get(ctx, id)
	if err != nil {
		return p, err
	}
	p.ApplyIntent(in)
	f.products[id] = p
	return p, nil
}

func newCatalogServer(t *testing.T, f *fakeCatalog) *httptest.Server {
	t.Helper()
	r := NewRouter(RouterConfig{CORSOrigins: []string{"*"}})
	(&CatalogHandler{Catalog: f, Auth: &Authenticator{Secret: testSecret}}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func bearer(t *testing.T, role string) http.Header {
	t.Helper()
	tok, err := SignToken(testSecret, "u1", role, time.Hour)
	require.NoError(t, err)
	return http.Header{"Authorization": {"Bearer " + tok}}
}

func TestCatalogSoldAndAvailable(t *testing.T) {
	f := &fakeCatalog{products: map[string]catalog.Product{"p1": {ID: "p1", Name: "Vintage Watch", Stock: 1, Available: true}}}
	srv := newCatalogServer(t, f)

	res, out := do(t, http.MethodPut, srv.URL+"/api/products/p1/sold", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Product marked as sold", out["message"])
	assert.False(t, f.products["p1"].Available)

	res, _ = do(t, http.MethodPut, srv.URL+"/api/products/p1/available", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, f.products["p1"].Available)

	res, _ = do(t, http.MethodPut, srv.URL+"/api/products/missing/sold", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestCatalogOwnerRoutes(t *testing.T) {
	f := &fakeCatalog{products: map[string]catalog.Product{}}
	srv := newCatalogServer(t, f)
	body := `{"name":"Midi Skirt","price":120000}`

	res, _ := do(t, http.MethodPost, srv.URL+"/api/products", body, nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, _ = do(t, http.MethodPost, srv.URL+"/api/products", body, bearer(t, "buyer"))
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, out := do(t, http.MethodPost, srv.URL+"/api/products", body, bearer(t, RoleOwner))
	require.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "Midi Skirt", out["name"])

	res, _ = do(t, http.MethodPost, srv.URL+"/api/products", `{"name":"no price"}`, bearer(t, RoleOwner))
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res, out = do(t, http.MethodPut, srv.URL+"/api/products/new", `{"brand":"Zara"}`, bearer(t, RoleOwner))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Zara", out["brand"])

	res, _ = do(t, http.MethodDelete, srv.URL+"/api/products/new", "", bearer(t, RoleOwner))
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	res, _ = do(t, http.MethodGet, srv.URL+"/api/products/new", "", nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
