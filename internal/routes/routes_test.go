package routes

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pymetra/registration/internal/app"
	"github.com/pymetra/registration/internal/config"
	"github.com/pymetra/registration/internal/repository"
	"github.com/pymetra/registration/internal/service"
	"github.com/pymetra/registration/internal/service/remote"
	"github.com/pymetra/registration/internal/storage"
	"github.com/pymetra/registration/internal/testutil"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	cfg := &config.Config{
		AppName:            "Pymetra",
		AppEnv:             "development",
		AppURL:             "http://localhost:8001",
		MaxUploadSize:      5 << 20,
		RecipientEmail:     "ops@pymetra.test",
		CORSAllowedOrigins: []string{"https://form.pymetra.test"},
		RegisterRateLimit:  10,
		RegisterRateWindow: time.Minute,
	}

	database := testutil.NewDB(t)
	registrations := repository.NewRegistrationRepository(database)

	store, err := storage.NewLocalStorage(context.Background(), t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	creds := remote.NewOAuthCredentials("", "", "", repository.NewCredentialRepository(database))
	client := remote.NewClient(creds, remote.NewGoogleAPI, remote.ClientConfig{})

	email, err := service.NewEmailService("", "noreply@pymetra.test", cfg.RecipientEmail, cfg.AppName, true)
	require.NoError(t, err)
	registrationService, err := service.NewRegistrationService(registrations, store, client, email, cfg.MaxUploadSize, cfg.RecipientEmail, cfg.AppName)
	require.NoError(t, err)

	hash, err := service.HashPassword("s3cret-pass")
	require.NoError(t, err)

	return &app.App{
		Cfg:                 cfg,
		DB:                  database,
		Storage:             store,
		Credentials:         creds,
		Remote:              client,
		EmailService:        email,
		RegistrationService: registrationService,
		BackfillService:     service.NewBackfillService(registrations, store, client),
		ExportService:       service.NewExportService(registrations),
		AdminAuthService:    service.NewAdminAuthService("admin", hash, "test-secret", time.Hour, false),
	}
}

// session carries cookies between requests like a browser would
type session struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
}

func (s *session) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	for _, c := range s.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c
	}
	return rec
}

func newSession(t *testing.T, h http.Handler) *session {
	return &session{t: t, handler: h, cookies: map[string]*http.Cookie{}}
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAdminRequiresSession(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
}

func TestAdminLoginFlow(t *testing.T) {
	s := newSession(t, SetupRoutes(newTestApp(t)))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, s.cookies, "csrf_token")
	token := s.cookies["csrf_token"].Value
	assert.Contains(t, rec.Body.String(), token)

	// missing csrf token
	rec = s.do(postForm("/admin/login", url.Values{"username": {"admin"}, "password": {"s3cret-pass"}}))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(postForm("/admin/login", url.Values{
		"username":   {"admin"},
		"password":   {"s3cret-pass"},
		"csrf_token": {token},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, s.cookies, service.AdminCookieName)

	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registrations")
	assert.Contains(t, rec.Body.String(), "nonce=")

	// signed in operators skip the login page
	rec = s.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = s.do(postForm("/admin/logout", url.Values{"csrf_token": {token}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.NotContains(t, s.cookies, service.AdminCookieName)
}

func TestRegisterThroughMiddleware(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range map[string]string{
		"fullName":       "Ana Ruiz",
		"email":          "ana@x.com",
		"geographicArea": "Madrid",
		"mainSector":     "Retail",
	} {
		require.NoError(t, mw.WriteField(name, value))
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="cv"; filename="cv.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/register-agent", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Origin", "https://form.pymetra.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "https://form.pymetra.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/registrations/count", nil))
	assert.JSONEq(t, `{"total_registrations":1}`, rec.Body.String())
}

func TestAdminAPIRequiresBasicAuth(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/registrations", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/backfill", nil)
	req.SetBasicAuth("admin", "s3cret-pass")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code, "no google account connected")
}

func TestSecurityHeadersAndFallback(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "nonce-")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGoogleRoutesNeedConfiguration(t *testing.T) {
	h := SetupRoutes(newTestApp(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/google/login", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
