package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	"github.com/kahvecikaan/product-catalog/internal/domain"
	"github.com/kahvecikaan/product-catalog/internal/service"
)

// Fixed response bodies
var (
	msgInternalError    = ErrorResponse{Message: "An internal error occurred."}
	msgBadRequest       = ErrorResponse{Message: "Bad request."}
	msgNotFound         = ErrorResponse{Message: "Not found."}
	msgMethodNotAllowed = ErrorResponse{Message: "Method not allowed."}
	msgOK               = ErrorResponse{Message: "Operation successful."}
)

type ProductHandler struct {
	productService  service.ProductService
	currencyService service.CurrencyService
	logger          hclog.Logger
}

func NewProductHandler(ps service.ProductService, cs service.CurrencyService, log hclog.Logger) *ProductHandler {
	return &ProductHandler{
		productService:  ps,
		currencyService: cs,
		logger:          log,
	}
}

// GetProducts handles GET /v1/products
//
// swagger:route GET /v1/products products listProducts
//
// Returns every product ordered by id.
//
// Responses:
//
//	200: productsResponse
//	500: errorResponse
func (h *ProductHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.GetProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.Records(products))
}

// GetProductByID handles GET /v1/product/{id}
//
// swagger:route GET /v1/product/{id} products getProductByID
//
// Returns a product by ID.
//
// Responses:
//
//	200: productResponse
//	404: errorResponse
//	500: errorResponse
func (h *ProductHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, msgNotFound)
		return
	}

	product, err := h.productService.GetProductByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product.Record())
}

// AddProduct handles POST /v1/product
//
// swagger:route POST /v1/product products addProduct
//
// Adds a new product with no currency.
//
// Responses:
//
//	200: productResponse
//	400: errorResponse
//	500: errorResponse
func (h *ProductHandler) AddProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := r.Context().Value(ContextKeyProduct).(domain.ProductInput)
	if !ok {
		writeJSON(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	product, err := h.productService.AddProduct(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product.Record())
}

// UpdateProduct handles PUT /v1/product/{id}
//
// swagger:route PUT /v1/product/{id} products updateProduct
//
// Updates the supplied fields of an existing product.
//
// Responses:
//
//	200: productResponse
//	400: errorResponse
//	404: errorResponse
//	500: errorResponse
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, msgNotFound)
		return
	}

	in, ok := r.Context().Value(ContextKeyProduct).(domain.ProductInput)
	if !ok {
		writeJSON(w, http.StatusBadRequest, msgBadRequest)
		return
	}

	product, err := h.productService.UpdateProduct(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, product.Record())
}

// DeleteProduct handles DELETE /v1/product/{id}
//
// swagger:route DELETE /v1/product/{id} products deleteProduct
//
// Deletes a product.
//
// Responses:
//
//	200: messageResponse
//	404: errorResponse
//	500: errorResponse
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, msgNotFound)
		return
	}

	if err := h.productService.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, msgOK)
}

// ListCurrencies handles GET /v1/currencies
//
// swagger:route GET /v1/currencies currencies listCurrencies
//
// Returns every currency ordered by id.
//
// Responses:
//
//	200: currenciesResponse
//	500: errorResponse
func (h *ProductHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencyService.ListCurrencies(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.Records(currencies))
}

// productID reads the {id} route variable. Ids that do not fit an int can
// never exist and are reported as missing.
func productID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return 0, false
	}
	return id, true
}

// writeError maps a service error onto its status code and fixed body.
func (h *ProductHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, msgNotFound)
	case errors.Is(err, domain.ErrNoFieldsSupplied),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrConstraintViolation):
		h.logger.Debug("Bad request", "url", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusBadRequest, msgBadRequest)
	default:
		h.logger.Error("Internal error", "method", r.Method, "url", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, msgInternalError)
	}
}

// writeJSON encodes v before touching the response so that a failed
// encoding still produces a clean 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(msgInternalError)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
	w.Write([]byte("\n"))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, msgNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
