package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/inkwell-labs/blog-core/internal/auth"
	"github.com/inkwell-labs/blog-core/internal/blog"
	"github.com/inkwell-labs/blog-core/internal/user"
	"github.com/inkwell-labs/blog-core/pkg/utilities"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that tags each request with a
// snowflake request id and logs it at debug level.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := utilities.NewSnowflakeID()
			w.Header().Set("X-Request-Id", reqID)
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			// ensure status is set
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
// It is intentionally simple and conservative so it works with most setups.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection
			w.Header().Set("X-Frame-Options", "DENY")

			// Referrer policy
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")

			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}

			// HSTS only makes sense over TLS
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// Registration and login are public; everything else requires a Bearer token.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, tokens *auth.TokenService) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	userHandler := user.NewHandler(user.NewService(db, nil, nil), tokens, logger)
	blogHandler := blog.NewHandler(blog.NewService(db, nil), logger)

	protect := auth.RequireUser(tokens)

	mux.HandleFunc("POST /register/{$}", userHandler.Register)
	mux.HandleFunc("POST /login/{$}", userHandler.Login)

	mux.Handle("GET /blogs/{$}", protect(http.HandlerFunc(blogHandler.List)))
	mux.Handle("POST /blogs/{$}", protect(http.HandlerFunc(blogHandler.Create)))
	mux.Handle("GET /blogs/{id}/detail", protect(http.HandlerFunc(blogHandler.Get)))
	mux.Handle("PUT /blogs/{id}/{$}", protect(http.HandlerFunc(blogHandler.Update)))
	mux.Handle("PATCH /blogs/{id}/{$}", protect(http.HandlerFunc(blogHandler.Update)))
	mux.Handle("DELETE /blogs/{id}/{$}", protect(http.HandlerFunc(blogHandler.Delete)))

	mux.Handle("GET /users/me/{$}", protect(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PUT /users/update_profile/{$}", protect(http.HandlerFunc(userHandler.UpdateProfile)))

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
