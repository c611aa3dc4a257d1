// Package classification of Product API
//
// # Documentation for Product API
//
// Schemes: http
// BasePath: /
// Version: 1.0.0
//
// Consumes:
// - application/x-www-form-urlencoded
// - multipart/form-data
// - application/json
//
// Produces:
// - application/json
//
// swagger:meta
package http

import (
	_ "embed"
	"net/http"

	"github.com/go-openapi/runtime/middleware"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

//go:generate swagger generate spec -o ./swagger.yaml --scan-models

//go:embed swagger.yaml
var swaggerSpec []byte

func serveSwaggerSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(swaggerSpec)
}

func redocHandler() http.Handler {
	return middleware.Redoc(middleware.RedocOpts{
		SpecURL: "/swagger.yaml",
		Path:    "docs",
		Title:   "Product API",
	}, nil)
}

// NOTE: Types defined here are purely for documentation purposes
// These types are not used by any of the handlers

// Fixed message body
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in: body
	Body ErrorResponse
}

// Fixed success message
// swagger:response messageResponse
type messageResponseWrapper struct {
	// in: body
	Body ErrorResponse
}

// A list of products
// swagger:response productsResponse
type productsResponseWrapper struct {
	// All current products
	// in: body
	Body []domain.Product
}

// Data structure representing a single product
// swagger:response productResponse
type productResponseWrapper struct {
	// A single product
	// in: body
	Body domain.Product
}

// A list of currencies
// swagger:response currenciesResponse
type currenciesResponseWrapper struct {
	// in: body
	Body []domain.Currency
}

// Store health
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in: body
	Body HealthResponse
}

// swagger:parameters getProductByID deleteProduct updateProduct
type productIDParamsWrapper struct {
	// The ID of the product
	// in: path
	// required: true
	ID int `json:"id"`
}

// swagger:parameters addProduct updateProduct
type productFormParamsWrapper struct {
	// Name of the product, at most 256 characters
	// in: formData
	Name string `json:"name"`

	// Decimal price
	// in: formData
	Price string `json:"price"`
}

// ErrorResponse is the body of every message response
//
// swagger:model
type ErrorResponse struct {
	// The message
	//
	// required: true
	Message string `json:"message"`
}
