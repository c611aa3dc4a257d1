package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/kahvecikaan/product-catalog/internal/domain"
)

type contextKey string

const (
	// ContextKeyProduct holds the domain.ProductInput parsed from a write request.
	ContextKeyProduct   contextKey = "product"
	contextKeyRequestID contextKey = "request_id"

	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-ID"

	maxFormMemory = 1 << 20
	// matches the cap net/http puts on url-encoded bodies
	maxBodyBytes = 10 << 20
)

// Middleware struct holds dependencies for middleware functions
type Middleware struct {
	Logger hclog.Logger
}

func NewMiddleware(logger hclog.Logger) *Middleware {
	return &Middleware{Logger: logger}
}

// RequestIDMiddleware reuses an incoming X-Request-ID or assigns a new one.
func (m *Middleware) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(HeaderRequestID, requestID)

		ctx := context.WithValue(r.Context(), contextKeyRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the id assigned by RequestIDMiddleware, or "unknown".
func RequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(contextKeyRequestID).(string)
	if !ok || requestID == "" {
		return "unknown"
	}
	return requestID
}

// ContentTypeMiddleware sets the Content-Type header to application/json
func (m *Middleware) ContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware logs the incoming requests and responses
func (m *Middleware) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := RequestID(r.Context())

		m.Logger.Debug("Incoming request",
			"method", r.Method,
			"url", r.URL.Path,
			"request_id", requestID,
		)

		wrapper := newResponseWrapper(w)
		next.ServeHTTP(wrapper, r)

		m.Logger.Info("Completed request",
			"method", r.Method,
			"url", r.URL.Path,
			"request_id", requestID,
			"status", wrapper.statusCode,
			"duration", time.Since(start),
		)
	})
}

// FormMiddleware reads the name and price fields of a write request and
// adds them to the context as a domain.ProductInput. Form-encoded, multipart
// and JSON bodies are accepted.
func (m *Middleware) FormMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		in, err := readProductInput(w, r)
		if err != nil {
			m.Logger.Debug("Unable to read product fields", "error", err, "request_id", RequestID(r.Context()))
			writeJSON(w, http.StatusBadRequest, msgBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyProduct, in)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type productBody struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

func readProductInput(w http.ResponseWriter, r *http.Request) (domain.ProductInput, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body productBody
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
			return domain.ProductInput{}, fmt.Errorf("decode body: %w", err)
		}
		return domain.ProductInput{Name: body.Name, Price: body.Price.String()}, nil
	}

	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return domain.ProductInput{}, fmt.Errorf("parse form: %w", err)
	}
	return domain.ProductInput{
		Name:  r.PostForm.Get("name"),
		Price: r.PostForm.Get("price"),
	}, nil
}

// NewRateLimitMiddleware limits requests per client IP. rate uses the
// limiter's formatted syntax, e.g. "100-M".
func NewRateLimitMiddleware(rate string, logger hclog.Logger) (func(http.Handler) http.Handler, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	mw := stdlib.NewMiddleware(
		limiter.New(memory.NewStore(), r),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("Rate limit reached", "remote_addr", r.RemoteAddr, "url", r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Message: "Too many requests."})
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("Rate limiter failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, msgInternalError)
		}),
	)
	return mw.Handler, nil
}

// responseWrapper captures the status code written by the next handler
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWrapper(w http.ResponseWriter) *responseWrapper {
	return &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWrapper) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Hijack lets the websocket upgrader take over the connection.
func (rw *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (rw *responseWrapper) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
