package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pymetra/registration/internal/service"
)

// Pinger is satisfied by *sqlx.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

type StatusHandler struct {
	db               Pinger
	replicator       service.Replicator
	appName          string
	appURL           string
	googleConfigured bool
}

func NewStatusHandler(db Pinger, replicator service.Replicator, appName, appURL string, googleConfigured bool) *StatusHandler {
	return &StatusHandler{
		db:               db,
		replicator:       replicator,
		appName:          appName,
		appURL:           appURL,
		googleConfigured: googleConfigured,
	}
}

type authStatusResponse struct {
	Authenticated bool    `json:"authenticated"`
	Message       string  `json:"message"`
	LoginURL      *string `json:"login_url"`
}

// AuthStatus reports whether remote replication is currently possible
func (h *StatusHandler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	if h.replicator.Authenticated(r.Context()) {
		writeJSON(w, http.StatusOK, authStatusResponse{
			Authenticated: true,
			Message:       "Google replication is active",
		})
		return
	}

	resp := authStatusResponse{Message: "Google replication is not configured"}
	if h.googleConfigured {
		loginURL := h.appURL + "/admin/google/login"
		resp.Message = "Google account not connected, an administrator must sign in"
		resp.LoginURL = &loginURL
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health is the liveness probe
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"service":  h.appName,
			"database": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"service":  h.appName,
		"database": "ok",
	})
}
