package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// File storage ("local" or "s3")
	StorageDriver   string
	StorageLocalDir string
	MaxUploadSize   int64

	// S3 (only used when STORAGE_DRIVER=s3)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, DO Spaces, R2, etc.)

	// Email
	EmailFrom      string
	ResendAPIKey   string
	RecipientEmail string // Operator address that receives every registration

	// Google (remote replication: Sheets, Drive, Gmail)
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURL   string
	GoogleSpreadsheetID string
	GoogleSheetRange    string
	GoogleDriveFolderID string

	// Admin panel
	AdminUsername      string
	AdminPasswordHash  string // bcrypt hash, see "regctl hash-password"
	AdminJWTSecret     string
	AdminSessionExpiry time.Duration
	CORSAllowedOrigins []string
	RegisterRateLimit  int
	RegisterRateWindow time.Duration
	TrustedProxies     []string // addresses or CIDRs whose X-Forwarded-For is believed

	// Observability (optional)
	SentryDSN string
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	appURL := envRequired("APP_URL") // Required: base URL for OAuth redirects and admin links

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "Pymetra"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  appURL,
		Port:    envString("PORT", "8001"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/registrations.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		// File storage
		StorageDriver:   envString("STORAGE_DRIVER", "local"),
		StorageLocalDir: envString("STORAGE_LOCAL_DIR", "uploads/cvs"),
		MaxUploadSize:   envInt64("MAX_UPLOAD_SIZE", 5<<20), // 5MB

		// S3
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:      envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey:   envString("RESEND_API_KEY", ""),
		RecipientEmail: envString("RECIPIENT_EMAIL", "joan@pymetra.com"),

		// Google
		GoogleClientID:      envString("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  envString("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:   envString("GOOGLE_REDIRECT_URL", appURL+"/admin/google/callback"),
		GoogleSpreadsheetID: envString("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetRange:    envString("GOOGLE_SHEET_RANGE", "A:G"),
		GoogleDriveFolderID: envString("GOOGLE_DRIVE_FOLDER_ID", ""),

		// Admin
		AdminUsername:      envString("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:  envString("ADMIN_PASSWORD_HASH", ""),
		AdminJWTSecret:     envRequired("ADMIN_JWT_SECRET"),
		AdminSessionExpiry: envDuration("ADMIN_SESSION_EXPIRY", 12*time.Hour),
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RegisterRateLimit:  envInt("REGISTER_RATE_LIMIT", 10),
		RegisterRateWindow: envDuration("REGISTER_RATE_WINDOW", 15*time.Minute),
		TrustedProxies:     envList("TRUSTED_PROXIES", nil),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows email to run in log mode and the admin panel to stay locked.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.AdminPasswordHash == "" {
		slog.Error("production deployment requires ADMIN_PASSWORD_HASH",
			"hint", "generate one with: regctl hash-password")
		os.Exit(1)
	}
	if cfg.StorageDriver == "s3" && (cfg.S3Bucket == "" || cfg.S3Region == "") {
		slog.Error("STORAGE_DRIVER=s3 requires S3_BUCKET and S3_REGION")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int64, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envList reads a comma separated list, dropping empty entries
func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GoogleConfigured reports whether the OAuth client for remote replication is set up.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Sanitized returns a copy of the config with only public/safe fields.
// All secrets, credentials, and sensitive data are excluded.
// Safe to expose in ctx, templates and client-facing contexts.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName: c.AppName,
		AppEnv:  c.AppEnv,
		AppURL:  c.AppURL,
		Port:    c.Port,

		MaxUploadSize: c.MaxUploadSize,
		EmailFrom:     c.EmailFrom,

		GoogleClientID:      c.GoogleClientID,
		GoogleSpreadsheetID: c.GoogleSpreadsheetID,
		GoogleDriveFolderID: c.GoogleDriveFolderID,

		S3Endpoint: c.S3Endpoint,

		TrustedProxies: c.TrustedProxies,
	}
}
