package http

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"

	websocketTransport "github.com/kahvecikaan/product-catalog/internal/transport/websocket"
)

// RouterOptions configures the handler chain around the routes.
type RouterOptions struct {
	// CORSOrigins lists the allowed origins; "*" allows any.
	CORSOrigins []string
	// RateLimit wraps every request when set.
	RateLimit func(http.Handler) http.Handler
	// DisableRecovery lets handler panics reach the caller.
	DisableRecovery bool
}

// NewRouter builds the API routes. wsh may be nil, in which case no event
// stream is exposed.
func NewRouter(
	ph *ProductHandler,
	hh *HealthHandler,
	wsh *websocketTransport.Handler,
	logger hclog.Logger,
	opts RouterOptions,
) http.Handler {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	mw := NewMiddleware(logger)
	router.Use(mw.RequestIDMiddleware)
	router.Use(mw.LoggingMiddleware)

	router.Handle("/healthz", hh).Methods(http.MethodGet)
	router.HandleFunc("/swagger.yaml", serveSwaggerSpec).Methods(http.MethodGet)
	router.Handle("/docs", redocHandler()).Methods(http.MethodGet)

	if wsh != nil {
		router.HandleFunc("/v1/events", wsh.HandleWebSocket).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/v1").Subrouter()
	api.Use(mw.ContentTypeMiddleware)

	api.HandleFunc("/products", ph.GetProducts).Methods(http.MethodGet)
	api.HandleFunc("/currencies", ph.ListCurrencies).Methods(http.MethodGet)
	api.HandleFunc("/product/{id:[0-9]+}", ph.GetProductByID).Methods(http.MethodGet)
	api.HandleFunc("/product/{id:[0-9]+}", ph.DeleteProduct).Methods(http.MethodDelete)

	// Routes reading form fields. A method subrouter here would turn a wrong
	// method on a known path into a 404.
	api.Handle("/product", mw.FormMiddleware(http.HandlerFunc(ph.AddProduct))).Methods(http.MethodPost)
	api.Handle("/product/{id:[0-9]+}", mw.FormMiddleware(http.HandlerFunc(ph.UpdateProduct))).Methods(http.MethodPut)

	var h http.Handler = router
	if !opts.DisableRecovery {
		h = handlers.RecoveryHandler(
			handlers.RecoveryLogger(logger.StandardLogger(&hclog.StandardLoggerOptions{ForceLevel: hclog.Error})),
			handlers.PrintRecoveryStack(true),
		)(h)
	}
	h = handlers.CompressHandler(h)
	if opts.RateLimit != nil {
		h = opts.RateLimit(h)
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Requested-With", HeaderRequestID}),
		handlers.ExposedHeaders([]string{HeaderRequestID}),
	)(h)
}
