package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pymetra/registration/internal/ctxkeys"
)

const (
	csrfCookieName = "csrf_token"
	csrfFormField  = "csrf_token"
	csrfHeader     = "X-CSRF-Token"
	csrfTokenLen   = 32

	// only the admin panel uses cookies, the public API is token-free
	csrfScope = "/admin"
)

// CSRFProtection guards the admin panel with a double-submit token and, when the
// browser sends one, an Origin check against APP_URL.
func CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != csrfScope && !strings.HasPrefix(r.URL.Path, csrfScope+"/") {
			next.ServeHTTP(w, r)
			return
		}

		token := csrfCookieToken(w, r)
		ctx := ctxkeys.WithCSRFToken(r.Context(), token)

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if !sameOrigin(r) {
			rejectCSRF(w, r, "origin mismatch")
			return
		}

		submitted := r.Header.Get(csrfHeader)
		if submitted == "" {
			submitted = r.PostFormValue(csrfFormField)
		}
		if !validCSRFToken(token, submitted) {
			rejectCSRF(w, r, "token mismatch")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rejectCSRF(w http.ResponseWriter, r *http.Request, reason string) {
	slog.Warn("csrf validation failed",
		"reason", reason,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", getClientIP(r),
	)
	http.Error(w, "Invalid CSRF token", http.StatusForbidden)
}

// sameOrigin accepts requests without an Origin header and those whose origin matches APP_URL
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	cfg := ctxkeys.Config(r.Context())
	if cfg == nil || cfg.AppURL == "" {
		return true
	}
	want, err := url.Parse(cfg.AppURL)
	if err != nil {
		return false
	}
	got, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(got.Scheme, want.Scheme) && strings.EqualFold(got.Host, want.Host)
}

// csrfCookieToken returns the token from the cookie, issuing a new one when absent or malformed
func csrfCookieToken(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && len(cookie.Value) == base64.RawURLEncoding.EncodedLen(csrfTokenLen) {
		return cookie.Value
	}

	b := make([]byte, csrfTokenLen)
	if _, err := rand.Read(b); err != nil {
		panic("failed to generate csrf token: " + err.Error())
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	cfg := ctxkeys.Config(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     csrfScope,
		HttpOnly: true,
		Secure:   cfg != nil && cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400 * 7,
	})
	return token
}

func validCSRFToken(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(actual)) == 1
}
