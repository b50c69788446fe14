package routes

import (
	"net/http"

	"github.com/pymetra/registration/internal/app"
	"github.com/pymetra/registration/internal/handler"
	"github.com/pymetra/registration/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	cfg := app.Cfg

	// Handlers
	registration := handler.NewRegistrationHandler(app.RegistrationService)
	status := handler.NewStatusHandler(app.DB, app.Remote, cfg.AppName, cfg.AppURL, cfg.GoogleConfigured())
	admin := handler.NewAdminHandler(
		app.AdminAuthService,
		app.RegistrationService,
		app.ExportService,
		app.BackfillService,
		app.Remote,
		cfg.GoogleConfigured(),
	)
	google := handler.NewGoogleHandler(app.Credentials)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC API
	// ============================================================================

	registerLimiter := middleware.RateLimit(cfg.RegisterRateLimit, cfg.RegisterRateWindow)

	mux.HandleFunc("POST /api/register-agent", registerLimiter(registration.Register))
	mux.HandleFunc("GET /api/registrations/count", registration.Count)
	mux.HandleFunc("GET /api/auth/status", status.AuthStatus)
	mux.HandleFunc("GET /api/health", status.Health)

	// ============================================================================
	// ADMIN API (HTTP Basic)
	// ============================================================================

	basicAuth := middleware.RequireBasicAuth(app.AdminAuthService)

	mux.HandleFunc("GET /api/admin/registrations", basicAuth(admin.ListRegistrations))
	mux.HandleFunc("POST /api/admin/backfill", basicAuth(admin.APIBackfill))

	// ============================================================================
	// ADMIN PANEL (/admin/*)
	// ============================================================================

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /admin/login", middleware.RequireGuest(admin.LoginPage))
	mux.HandleFunc("POST /admin/login", rateLimiter(middleware.RequireGuest(admin.Login)))
	mux.HandleFunc("POST /admin/logout", admin.Logout)

	// Pages
	mux.HandleFunc("GET /admin", middleware.RequireAdmin(admin.Dashboard))
	mux.HandleFunc("GET /admin/export/csv", middleware.RequireAdmin(admin.ExportCSV))
	mux.HandleFunc("GET /admin/export/sheets-data", middleware.RequireAdmin(admin.SheetsData))
	mux.HandleFunc("GET /admin/download-cv/{id}", middleware.RequireAdmin(admin.DownloadCV))

	// Actions
	mux.HandleFunc("POST /admin/registrations/{id}/status", middleware.RequireAdmin(admin.UpdateStatus))
	mux.HandleFunc("POST /admin/backfill", middleware.RequireAdmin(admin.Backfill))

	// Google account for remote replication
	if cfg.GoogleConfigured() {
		mux.HandleFunc("GET /admin/google/login", middleware.RequireAdmin(google.Login))
		mux.HandleFunc("GET /admin/google/callback", middleware.RequireAdmin(google.Callback))
		mux.HandleFunc("POST /admin/google/disconnect", middleware.RequireAdmin(google.Disconnect))
	}

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.Handle("/{path...}", handler.NotFoundHandler{})

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins), // the public form is served from another origin
		middleware.Config(cfg),
		middleware.NonceMiddleware, // must be before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection, // admin forms only, /api/ is exempt
		middleware.AdminSession(app.AdminAuthService),
		middleware.WithURLPath,
	)
}
