package middleware

import (
	"net/http"

	"github.com/pymetra/registration/internal/ctxkeys"
	"github.com/pymetra/registration/internal/service"
)

// AdminSession adds the operator to the context when the session cookie is valid
func AdminSession(authService *service.AdminAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AdminCookieName)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			username, err := authService.VerifyJWT(cookie.Value)
			if err != nil {
				authService.ClearJWTCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := ctxkeys.WithAdmin(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin redirects guests to the login page
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Admin(r.Context()) == "" {
			http.Redirect(w, r, "/admin/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireGuest sends a signed-in operator to the dashboard
func RequireGuest(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Admin(r.Context()) != "" {
			http.Redirect(w, r, "/admin", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireBasicAuth protects the JSON admin API with HTTP Basic credentials
func RequireBasicAuth(authService *service.AdminAuthService) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok || authService.Login(username, password) != nil {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin", charset="UTF-8"`)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
				return
			}

			ctx := ctxkeys.WithAdmin(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}
