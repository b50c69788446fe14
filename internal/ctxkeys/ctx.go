package ctxkeys

import (
	"context"

	"github.com/pymetra/registration/internal/config"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	AdminKey     contextKey = "admin"
	URLPathKey   contextKey = "url_path"
	ConfigKey    contextKey = "config"
	CSRFTokenKey contextKey = "csrf_token"
)

// Admin returns the signed-in operator's username, empty for guests
func Admin(ctx context.Context) string {
	admin, _ := ctx.Value(AdminKey).(string)
	return admin
}

func WithAdmin(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, AdminKey, username)
}

func URLPath(ctx context.Context) string {
	path, _ := ctx.Value(URLPathKey).(string)
	return path
}

func WithURLPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, URLPathKey, path)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFTokenKey).(string)
	return token
}

func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CSRFTokenKey, token)
}
