package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/repository"
	"github.com/kahvecikaan/product-catalog/internal/service"
)

const (
	badRequestBody = `{"message":"Bad request."}`
	notFoundBody   = `{"message":"Not found."}`
	internalBody   = `{"message":"An internal error occurred."}`
	successBody    = `{"message":"Operation successful."}`
)

func newTestRouter(store *repository.MemoryStore) http.Handler {
	log := hclog.NewNullLogger()
	ps := service.NewProductService(store.Products(), nil, log)
	cs := service.NewCurrencyService(store.Currencies(), log)
	return NewRouter(
		NewProductHandler(ps, cs, log),
		NewHealthHandler(store, log),
		nil,
		log,
		RouterOptions{DisableRecovery: true},
	)
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw
}

func decodeProduct(t *testing.T, rw *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &body))
	return body
}

func seedScenario(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Currencies().Add(ctx, domain.NewCurrency("GBP", "Pound sterling", "£")))

	gbp := "GBP"
	for _, p := range []struct{ name, price string }{
		{"Lavender heart", "9.25"},
		{"Personalised cufflinks", "45.0"},
		{"Kids T-shirt", "19.95"},
	} {
		product := &domain.Product{Name: p.name, Price: decimal.RequireFromString(p.price), CurrencyISO: &gbp}
		require.NoError(t, store.Products().Add(ctx, product))
	}
}

func TestListProductsScenario(t *testing.T) {
	store := repository.NewMemoryStore()
	seedScenario(t, store)
	h := newTestRouter(store)

	rw := serve(h, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "application/json", rw.Header().Get("Content-Type"))

	expected := `[
		{"id":1,"name":"Lavender heart","price":"9.25","currency_iso":"GBP"},
		{"id":2,"name":"Personalised cufflinks","price":"45.00","currency_iso":"GBP"},
		{"id":3,"name":"Kids T-shirt","price":"19.95","currency_iso":"GBP"}
	]`
	assert.JSONEq(t, expected, rw.Body.String())

	// columns are written in table order
	assert.True(t, strings.HasPrefix(rw.Body.String(), `[{"id":1,"name":"Lavender heart","price":"9.25","currency_iso":"GBP"}`))
}

func TestListProductsEmpty(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	rw := serve(h, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `[]`, rw.Body.String())
}

func TestListProductsOrderedByID(t *testing.T) {
	store := repository.NewMemoryStore()
	h := newTestRouter(store)

	for _, name := range []string{"c", "a", "b", "d"} {
		rw := serve(h, formRequest(http.MethodPost, "/v1/product", url.Values{"name": {name}, "price": {"1"}}))
		require.Equal(t, http.StatusOK, rw.Code)
	}
	serve(h, httptest.NewRequest(http.MethodDelete, "/v1/product/2", nil))

	rw := serve(h, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
	var products []map[string]any
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &products))

	ids := make([]float64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p["id"].(float64))
	}
	assert.Equal(t, []float64{1, 3, 4}, ids)
}

func TestCreateAndGetProduct(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	rw := serve(h, formRequest(http.MethodPost, "/v1/product", url.Values{"name": {"TestName"}, "price": {"9.93"}}))
	require.Equal(t, http.StatusOK, rw.Code)
	created := decodeProduct(t, rw)
	assert.Equal(t, "TestName", created["name"])
	assert.Equal(t, "9.93", created["price"])
	assert.Contains(t, created, "currency_iso")
	assert.Nil(t, created["currency_iso"])

	rw = serve(h, httptest.NewRequest(http.MethodGet, "/v1/product/1", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, created, decodeProduct(t, rw))
}

func TestCreateProductPriceFormatting(t *testing.T) {
	tests := []struct {
		price string
		want  string
	}{
		{"45", "45.00"},
		{"9.25", "9.25"},
		{"19.955", "19.96"},
		{"0.1", "0.10"},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			h := newTestRouter(repository.NewMemoryStore())

			rw := serve(h, formRequest(http.MethodPost, "/v1/product", url.Values{"name": {"n"}, "price": {tt.price}}))
			require.Equal(t, http.StatusOK, rw.Code)
			assert.Equal(t, tt.want, decodeProduct(t, rw)["price"])
		})
	}
}

func TestCreateProductBadRequest(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
	}{
		{"no fields", url.Values{}},
		{"missing price", url.Values{"name": {"TestName"}}},
		{"missing name", url.Values{"price": {"9.93"}}},
		{"empty name", url.Values{"name": {""}, "price": {"9.93"}}},
		{"empty price", url.Values{"name": {"TestName"}, "price": {""}}},
		{"unparseable price", url.Values{"name": {"TestName"}, "price": {"nine"}}},
		{"name too long", url.Values{"name": {strings.Repeat("x", 257)}, "price": {"1"}}},
		{"price exponent too large", url.Values{"name": {"TestName"}, "price": {"1e4000000"}}},
		{"price wider than the column", url.Values{"name": {"TestName"}, "price": {"123456789012"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(repository.NewMemoryStore())

			rw := serve(h, formRequest(http.MethodPost, "/v1/product", tt.values))
			assert.Equal(t, http.StatusBadRequest, rw.Code)
			assert.JSONEq(t, badRequestBody, rw.Body.String())

			rw = serve(h, httptest.NewRequest(http.MethodGet, "/v1/products", nil))
			assert.JSONEq(t, `[]`, rw.Body.String())
		})
	}
}

func TestCreatedPriceMatchesLaterGet(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	rw := serve(h, formRequest(http.MethodPost, "/v1/product", url.Values{"name": {"n"}, "price": {"0.00495"}}))
	require.Equal(t, http.StatusOK, rw.Code)
	created := decodeProduct(t, rw)
	assert.Equal(t, "0.01", created["price"])

	rw = serve(h, httptest.NewRequest(http.MethodGet, "/v1/product/1", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, created, decodeProduct(t, rw))

	rw = serve(h, formRequest(http.MethodPut, "/v1/product/1", url.Values{"price": {"2.00495"}}))
	require.Equal(t, http.StatusOK, rw.Code)
	updated := decodeProduct(t, rw)
	assert.Equal(t, "2.01", updated["price"])

	rw = serve(h, httptest.NewRequest(http.MethodGet, "/v1/product/1", nil))
	assert.Equal(t, updated, decodeProduct(t, rw))
}

func TestCreateProductRejectsOversizedJSONBody(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	body := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `","price":"1"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/product", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rw := serve(h, req)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.JSONEq(t, badRequestBody, rw.Body.String())
}

func TestCreateProductFromJSONBody(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/v1/product", strings.NewReader(`{"name":"Kids T-shirt","price":19.95}`))
	req.Header.Set("Content-Type", "application/json")
	rw := serve(h, req)
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "19.95", decodeProduct(t, rw)["price"])

	req = httptest.NewRequest(http.MethodPost, "/v1/product", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rw = serve(h, req)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.JSONEq(t, badRequestBody, rw.Body.String())
}

func TestCreateProductFromMultipartForm(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Personalised cufflinks"))
	require.NoError(t, mw.WriteField("price", "45"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/product", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rw := serve(h, req)
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, "45.00", decodeProduct(t, rw)["price"])
}

func TestGetProductNotFound(t *testing.T) {
	store := repository.NewMemoryStore()
	seedScenario(t, store)
	h := newTestRouter(store)

	for _, target := range []string{"/v1/product/0", "/v1/product/4", "/v1/product/400", "/v1/product/abc", "/v1/product/99999999999999999999999"} {
		rw := serve(h, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusNotFound, rw.Code, target)
		assert.JSONEq(t, notFoundBody, rw.Body.String(), target)
	}
}

func TestUpdateProduct(t *testing.T) {
	store := repository.NewMemoryStore()
	seedScenario(t, store)
	h := newTestRouter(store)

	rw := serve(h, formRequest(http.MethodPut, "/v1/product/1", url.Values{"name": {"Lavender hearts"}}))
	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"id":1,"name":"Lavender hearts","price":"9.25","currency_iso":"GBP"}`, rw.Body.String())

	rw = serve(h, formRequest(http.MethodPut, "/v1/product/1", url.Values{"price": {"10"}}))
	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"id":1,"name":"Lavender hearts","price":"10.00","currency_iso":"GBP"}`, rw.Body.String())

	rw = serve(h, httptest.NewRequest(http.MethodGet, "/v1/product/1", nil))
	assert.JSONEq(t, `{"id":1,"name":"Lavender hearts","price":"10.00","currency_iso":"GBP"}`, rw.Body.String())
}

func TestUpdateProductNotFound(t *testing.T) {
	store := repository.NewMemoryStore()
	seedScenario(t, store)
	h := newTestRouter(store)

	before := serve(h, httptest.NewRequest(http.MethodGet, "/v1/products", nil)).Body.String()

	// existence is checked before the fields
	for _, values := range []url.Values{{}, {"name": {"ghost"}}} {
		rw := serve(h, formRequest(http.MethodPut, "/v1/product/402", values))
		assert.Equal(t, http.StatusNotFound, rw.Code)
	}

	after := serve(h, httptest.NewRequest(http.MethodGet, "/v1/products", nil)).Body.String()
	assert.Equal(t, before, after)
}

func TestUpdateProductBadRequest(t *testing.T) {
	store := repository.NewMemoryStore()
	seedScenario(t, store)
	h := newTestRouter(store)

	for _, values := range []url.Values{{}, {"name": {""}, "price": {""}}, {"price": {"lots"}}} {
		rw := serve(h, formRequest(http.MethodPut, "/v1/product/3", values))
		assert.Equal(t, http.StatusBadRequest, rw.Code)
		assert.JSONEq(t, badRequestBody, rw.Body.String())
	}

	rw := serve(h, httptest.NewRequest(http.MethodGet, "/v1/product/3", nil))
	assert.JSONEq(t, `{"id":3,"name":"Kids T-shirt","price":"19.95","currency_iso":"GBP"}`, rw.Body.String())
}

func TestDeleteProductTwice(t *testing.T) {
	store := repository.NewMemoryStore()
	seedScenario(t, store)
	h := newTestRouter(store)

	rw := serve(h, httptest.NewRequest(http.MethodDelete, "/v1/product/2", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, successBody, rw.Body.String())

	rw = serve(h, httptest.NewRequest(http.MethodDelete, "/v1/product/2", nil))
	assert.Equal(t, http.StatusNotFound, rw.Code)

	rw = serve(h, httptest.NewRequest(http.MethodGet, "/v1/product/2", nil))
	assert.Equal(t, http.StatusNotFound, rw.Code)
}

func TestListCurrencies(t *testing.T) {
	store := repository.NewMemoryStore()
	seedScenario(t, store)
	h := newTestRouter(store)

	rw := serve(h, httptest.NewRequest(http.MethodGet, "/v1/currencies", nil))
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Equal(t, `[{"id":1,"iso_code":"GBP","description":"Pound sterling","symbol":"£"}]`+"\n", rw.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	rw := serve(h, httptest.NewRequest(http.MethodPatch, "/v1/product/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rw.Code)
}

// failingProducts fails every call with err.
type failingProducts struct {
	err error
}

func (f failingProducts) GetProducts(context.Context) ([]*domain.Product, error) { return nil, f.err }
func (f failingProducts) GetProductByID(context.Context, int) (*domain.Product, error) {
	return nil, f.err
}
func (f failingProducts) AddProduct(context.Context, domain.ProductInput) (*domain.Product, error) {
	return nil, f.err
}
func (f failingProducts) UpdateProduct(context.Context, int, domain.ProductInput) (*domain.Product, error) {
	return nil, f.err
}
func (f failingProducts) DeleteProduct(context.Context, int) error { return f.err }

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError, internalBody},
		{"constraint violation", domain.ErrConstraintViolation, http.StatusBadRequest, badRequestBody},
		{"wrapped constraint violation", errors.Join(errors.New("insert"), domain.ErrConstraintViolation), http.StatusBadRequest, badRequestBody},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest, badRequestBody},
		{"not found", domain.ErrProductNotFound, http.StatusNotFound, notFoundBody},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := hclog.NewNullLogger()
			store := repository.NewMemoryStore()
			h := NewRouter(
				NewProductHandler(failingProducts{tt.err}, service.NewCurrencyService(store.Currencies(), log), log),
				NewHealthHandler(store, log),
				nil, log, RouterOptions{},
			)

			for _, req := range []*http.Request{
				httptest.NewRequest(http.MethodGet, "/v1/products", nil),
				httptest.NewRequest(http.MethodGet, "/v1/product/1", nil),
				formRequest(http.MethodPost, "/v1/product", url.Values{"name": {"n"}, "price": {"1"}}),
				formRequest(http.MethodPut, "/v1/product/1", url.Values{"name": {"n"}}),
				httptest.NewRequest(http.MethodDelete, "/v1/product/1", nil),
			} {
				rw := serve(h, req)
				assert.Equal(t, tt.status, rw.Code, req.Method)
				assert.JSONEq(t, tt.body, rw.Body.String(), req.Method)
			}
		})
	}
}

type brokenStore struct{}

func (brokenStore) Ping(context.Context) error { return errors.New("down") }

func TestHealth(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	rw := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rw.Body.String())

	rw = httptest.NewRecorder()
	NewHealthHandler(brokenStore{}, hclog.NewNullLogger()).ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rw.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, rw.Body.String())
}

func TestDocs(t *testing.T) {
	h := newTestRouter(repository.NewMemoryStore())

	rw := serve(h, httptest.NewRequest(http.MethodGet, "/swagger.yaml", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), "/v1/product/{id}:")

	rw = serve(h, httptest.NewRequest(http.MethodGet, "/docs", nil))
	assert.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), "/swagger.yaml")
}
