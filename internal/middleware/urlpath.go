package middleware

import (
	"net/http"
	"path"

	"github.com/pymetra/registration/internal/ctxkeys"
)

// WithURLPath stores the cleaned request path so the admin nav can mark the
// active link. "/admin/" and "/admin" resolve to the same entry.
func WithURLPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithURLPath(r.Context(), p)))
	})
}
