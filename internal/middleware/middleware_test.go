package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pymetra/registration/internal/config"
	"github.com/pymetra/registration/internal/ctxkeys"
	"github.com/pymetra/registration/internal/service"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(ctxkeys.Admin(r.Context())))
})

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute, func() time.Time { return now })

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per ip")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "window slid")

	now = now.Add(2 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.hits)
}

func TestRateLimit_APIRespondsJSON(t *testing.T) {
	h := RateLimit(1, time.Minute)(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/register-agent", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestGetClientIP(t *testing.T) {
	t.Run("headers ignored without trusted proxies", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Real-IP", "10.0.0.2")
		req.Header.Set("X-Forwarded-For", "10.0.0.3")
		assert.Equal(t, "10.0.0.1", getClientIP(req))

		cfg := &config.Config{TrustedProxies: []string{"192.168.0.0/16"}}
		req = req.WithContext(ctxkeys.WithConfig(req.Context(), cfg))
		assert.Equal(t, "10.0.0.1", getClientIP(req))
	})

	t.Run("behind a trusted proxy", func(t *testing.T) {
		cfg := &config.Config{TrustedProxies: []string{"10.0.0.0/8", "172.16.0.9"}}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(ctxkeys.WithConfig(req.Context(), cfg))
		req.RemoteAddr = "10.0.0.1:5555"
		assert.Equal(t, "10.0.0.1", getClientIP(req))

		req.Header.Set("X-Real-IP", "203.0.113.2")
		assert.Equal(t, "203.0.113.2", getClientIP(req))

		// a spoofed leftmost entry is skipped in favour of what the proxy appended
		req.Header.Set("X-Forwarded-For", "1.2.3.4, 203.0.113.7, 172.16.0.9")
		assert.Equal(t, "203.0.113.7", getClientIP(req))
	})
}

func TestRateLimitIgnoresRotatedForwardedFor(t *testing.T) {
	h := RateLimit(1, time.Minute)(okHandler)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
		req.RemoteAddr = "198.51.100.4:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.1.1.%d", i))
		rec := httptest.NewRecorder()
		h(rec, req)
		assert.Equal(t, want, rec.Code)
	}
}

func TestCSRFProtection(t *testing.T) {
	h := CSRFProtection(okHandler)

	t.Run("api is exempt", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/register-agent", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("post without token is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/backfill", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("post with matching form token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		token := cookies[0].Value

		form := url.Values{csrfFormField: {token}}
		req := httptest.NewRequest(http.MethodPost, "/admin/logout", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(cookies[0])

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cookie is scoped to the admin panel", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "/admin", cookies[0].Path)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Empty(t, rec.Result().Cookies())
	})
}

func TestCSRFRejectsForeignOrigin(t *testing.T) {
	cfg := &config.Config{AppEnv: "production", AppURL: "https://reg.pymetra.com"}
	h := Chain(okHandler, Config(cfg), CSRFProtection)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)

	post := func(origin string) int {
		form := url.Values{csrfFormField: {cookies[0].Value}}
		req := httptest.NewRequest(http.MethodPost, "/admin/backfill", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Origin", origin)
		req.AddCookie(cookies[0])
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, post("https://evil.example"))
	assert.Equal(t, http.StatusOK, post("https://reg.pymetra.com"))
}

func newAdminAuth(t *testing.T) *service.AdminAuthService {
	t.Helper()
	hash, err := service.HashPassword("s3cret-pass")
	require.NoError(t, err)
	return service.NewAdminAuthService("admin", hash, "jwt-secret", time.Hour, false)
}

func TestRequireBasicAuth(t *testing.T) {
	auth := newAdminAuth(t)
	h := RequireBasicAuth(auth)(okHandler)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/admin/registrations", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/registrations", nil)
	req.SetBasicAuth("admin", "s3cret-pass")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())
}

func TestAdminSession(t *testing.T) {
	auth := newAdminAuth(t)
	h := AdminSession(auth)(RequireAdmin(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))

	token, _, err := auth.GenerateJWT("admin")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: service.AdminCookieName, Value: token})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: service.AdminCookieName, Value: "forged"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestSecurityHeadersUseNonce(t *testing.T) {
	h := Chain(okHandler, NonceMiddleware, SecurityHeaders)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "'nonce-")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestCORSAndRecovery(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := Chain(panicking, Recovery(), CORS([]string{"https://pymetra.com"}))

	req := httptest.NewRequest(http.MethodPost, "/api/register-agent", nil)
	req.Header.Set("Origin", "https://pymetra.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "https://pymetra.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggingRequestID(t *testing.T) {
	h := RequestLogging(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	generated := rec.Header().Get("X-Request-ID")
	assert.Len(t, generated, 36)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Request-ID", "0b6b7a5e-4a43-4c5e-9d3f-2f1f7c1b9e10")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "0b6b7a5e-4a43-4c5e-9d3f-2f1f7c1b9e10", rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-Request-ID", "<script>")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "<script>", rec.Header().Get("X-Request-ID"))
}

func TestWithURLPathCleansPath(t *testing.T) {
	var got string
	h := WithURLPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ctxkeys.URLPath(r.Context())
	}))

	for in, want := range map[string]string{
		"/admin/":            "/admin",
		"/admin":             "/admin",
		"/admin//export/csv": "/admin/export/csv",
		"/":                  "/",
	} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, in, nil))
		assert.Equal(t, want, got, in)
	}
}
