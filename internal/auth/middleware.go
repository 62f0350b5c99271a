package auth

import (
	"net/http"
	"strings"

	"github.com/inkwell-labs/blog-core/internal/apperr"
	"github.com/inkwell-labs/blog-core/pkg/utilities"
)

// RequireUser returns a middleware that rejects requests without a valid
// Bearer token and stores the decoded principal in the request context.
func RequireUser(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				utilities.WriteError(w, apperr.New(apperr.KindUnauthorized, "authentication required"))
				return
			}
			p, err := tokens.Parse(strings.TrimSpace(header[len("bearer "):]))
			if err != nil {
				utilities.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
